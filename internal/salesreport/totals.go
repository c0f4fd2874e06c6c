package salesreport

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// DeriveTotals returns a copy of entry with TotalFoodRevenue recomputed from
// its channel sales. Channels are summed in key order so the result does not
// depend on map iteration. NaN or infinite revenues propagate into the total.
func DeriveTotals(entry FoodEntry) FoodEntry {
	out := entry.clone()
	channels := make([]string, 0, len(out.OrderTypeSales))
	finite := true
	for channel, detail := range out.OrderTypeSales {
		channels = append(channels, channel)
		if math.IsNaN(detail.Revenue) || math.IsInf(detail.Revenue, 0) {
			finite = false
		}
	}
	sort.Strings(channels)

	if !finite {
		var total float64
		for _, channel := range channels {
			total += out.OrderTypeSales[channel].Revenue
		}
		out.TotalFoodRevenue = total
		return out
	}

	total := decimal.Zero
	for _, channel := range channels {
		total = total.Add(decimal.NewFromFloat(out.OrderTypeSales[channel].Revenue))
	}
	out.TotalFoodRevenue = total.InexactFloat64()
	return out
}

// TotalQuantity sums the quantity sold across every channel of entry.
func TotalQuantity(entry FoodEntry) int {
	total := 0
	for _, detail := range entry.OrderTypeSales {
		total += detail.Quantity
	}
	return total
}

// DeriveReportTotals annotates every pivot row of report with its total
// revenue. The input report is left untouched.
func DeriveReportTotals(report Report) Report {
	out := report
	if report.RevenueByOrderType != nil {
		out.RevenueByOrderType = append([]RevenueByOrderType(nil), report.RevenueByOrderType...)
	}
	out.FoodSalesByCategoryAndOrderType = report.FoodSalesByCategoryAndOrderType.Map(func(c Category) []FoodEntry {
		foods := make([]FoodEntry, len(c.Foods))
		for i, f := range c.Foods {
			foods[i] = DeriveTotals(f)
		}
		return foods
	})
	return out
}
