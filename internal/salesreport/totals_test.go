package salesreport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTotalsSumsChannelRevenue(t *testing.T) {
	entry := FoodEntry{
		FoodName:         "Iced Coffee",
		OrderTypeSales:   sales("GrabFood", 1, 15000.0, "Take Away", 2, 16000.0, "Dine In", 0, 0.0),
		TotalFoodRevenue: 999,
	}
	got := DeriveTotals(entry)
	assert.Equal(t, 31000.0, got.TotalFoodRevenue)
	assert.Equal(t, 3, TotalQuantity(got))
	assert.Equal(t, 999.0, entry.TotalFoodRevenue, "input must be untouched")
}

func TestDeriveTotalsRecomputesAfterChange(t *testing.T) {
	entry := food("Tea", "Take Away", 1, 8000.0)
	require.Equal(t, 8000.0, entry.TotalFoodRevenue)

	entry.OrderTypeSales["Dine In"] = OrderTypeSalesDetail{Quantity: 1, Revenue: 9000}
	entry = DeriveTotals(entry)
	assert.Equal(t, 17000.0, entry.TotalFoodRevenue)
}

func TestDeriveTotalsAvoidsFloatDrift(t *testing.T) {
	entry := DeriveTotals(FoodEntry{OrderTypeSales: sales("a", 1, 0.1, "b", 1, 0.2)})
	assert.Equal(t, 0.3, entry.TotalFoodRevenue)
}

func TestDeriveTotalsEmptyChannels(t *testing.T) {
	got := DeriveTotals(FoodEntry{FoodName: "Water"})
	assert.Zero(t, got.TotalFoodRevenue)
	assert.Zero(t, TotalQuantity(got))
}

func TestDeriveTotalsDoesNotShareMap(t *testing.T) {
	entry := FoodEntry{OrderTypeSales: sales("Dine In", 1, 10.0)}
	got := DeriveTotals(entry)
	got.OrderTypeSales["Dine In"] = OrderTypeSalesDetail{Quantity: 5, Revenue: 50}
	assert.Equal(t, 10.0, entry.OrderTypeSales["Dine In"].Revenue)
}

func TestDeriveReportTotalsLeavesInputUntouched(t *testing.T) {
	report := sampleReport()
	got := DeriveReportTotals(report)

	cola, ok := got.FoodSalesByCategoryAndOrderType.Food("Beverages", "Cola")
	require.True(t, ok)
	assert.Equal(t, 20000.0, cola.TotalFoodRevenue)
	coffee, _ := got.FoodSalesByCategoryAndOrderType.Food("Beverages", "Iced Coffee")
	assert.Equal(t, 23000.0, coffee.TotalFoodRevenue)

	raw, _ := report.FoodSalesByCategoryAndOrderType.Food("Beverages", "Cola")
	assert.Zero(t, raw.TotalFoodRevenue)
	assert.Equal(t, report.FoodSalesByCategoryAndOrderType.Names(), got.FoodSalesByCategoryAndOrderType.Names())

	got.RevenueByOrderType[0].Revenue = 1
	assert.Equal(t, 50000.0, report.RevenueByOrderType[0].Revenue)
}

func TestDeriveTotalsPropagatesNonFiniteRevenue(t *testing.T) {
	var got FoodEntry
	require.NotPanics(t, func() {
		got = DeriveTotals(FoodEntry{FoodName: "Broken", OrderTypeSales: map[string]OrderTypeSalesDetail{
			"Dine In":  {Quantity: 1, Revenue: 5000},
			"GrabFood": {Quantity: 1, Revenue: math.NaN()},
		}})
	})
	assert.True(t, math.IsNaN(got.TotalFoodRevenue))

	got = DeriveTotals(FoodEntry{FoodName: "Overflow", OrderTypeSales: map[string]OrderTypeSalesDetail{
		"Dine In":   {Quantity: 1, Revenue: 5000},
		"Take Away": {Quantity: 1, Revenue: math.Inf(1)},
	}})
	assert.True(t, math.IsInf(got.TotalFoodRevenue, 1))
}
