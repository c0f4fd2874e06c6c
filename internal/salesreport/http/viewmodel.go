package salesreporthttp

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/salesboard/internal/salesreport"
)

// MoneyFormatter renders amounts for display using locale number grouping.
type MoneyFormatter struct {
	printer *message.Printer
	symbol  string
}

// NewMoneyFormatter builds a formatter for a BCP 47 locale, falling back to Indonesian.
func NewMoneyFormatter(locale, symbol string) MoneyFormatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.Indonesian
	}
	return MoneyFormatter{printer: message.NewPrinter(tag), symbol: strings.TrimSpace(symbol)}
}

// Format renders v with two decimals and the currency symbol.
func (f MoneyFormatter) Format(v float64) string {
	if f.printer == nil {
		f.printer = message.NewPrinter(language.Indonesian)
	}
	amount := f.printer.Sprintf("%.2f", v)
	if f.symbol == "" {
		return amount
	}
	return f.symbol + " " + amount
}

type sortVM struct {
	Column    string `json:"column,omitempty"`
	Direction string `json:"direction,omitempty"`
}

type columnVM struct {
	Key       string `json:"key"`
	Indicator string `json:"indicator"`
}

type summaryVM struct {
	TotalRevenue             float64 `json:"totalRevenue"`
	TotalRevenueDisplay      string  `json:"totalRevenueDisplay"`
	TotalOrders              int     `json:"totalOrders"`
	TotalItemsSold           int     `json:"totalItemsSold"`
	AverageOrderValue        float64 `json:"averageOrderValue"`
	AverageOrderValueDisplay string  `json:"averageOrderValueDisplay"`
}

type revenueRowVM struct {
	OrderType      string  `json:"orderType"`
	Revenue        float64 `json:"revenue"`
	RevenueDisplay string  `json:"revenueDisplay"`
}

type revenueTableVM struct {
	Sort    sortVM         `json:"sort"`
	Columns []columnVM     `json:"columns"`
	Rows    []revenueRowVM `json:"rows"`
}

type foodRowVM struct {
	FoodName                string                                      `json:"foodName"`
	OrderTypeSales          map[string]salesreport.OrderTypeSalesDetail `json:"orderTypeSales"`
	TotalQuantity           int                                         `json:"totalQuantity"`
	TotalFoodRevenue        float64                                     `json:"totalFoodRevenue"`
	TotalFoodRevenueDisplay string                                      `json:"totalFoodRevenueDisplay"`
}

type categoryVM struct {
	Name  string      `json:"name"`
	Foods []foodRowVM `json:"foods"`
}

type pivotTableVM struct {
	Sort       sortVM       `json:"sort"`
	Columns    []columnVM   `json:"columns"`
	OrderTypes []string     `json:"orderTypes"`
	Categories []categoryVM `json:"categories"`
}

// BoardResponse is the JSON shape of the board view.
type BoardResponse struct {
	Status             string         `json:"status"`
	Error              string         `json:"error,omitempty"`
	UpdatedAt          *time.Time     `json:"updatedAt,omitempty"`
	Summary            summaryVM      `json:"summary"`
	RevenueByOrderType revenueTableVM `json:"revenueByOrderType"`
	FoodSales          pivotTableVM   `json:"foodSales"`
}

func buildResponse(view salesreport.BoardView, money MoneyFormatter) BoardResponse {
	resp := BoardResponse{
		Status: string(view.Status),
		Error:  view.Error,
		Summary: summaryVM{
			TotalRevenue:             view.Summary.TotalRevenue,
			TotalRevenueDisplay:      money.Format(view.Summary.TotalRevenue),
			TotalOrders:              view.Summary.TotalOrders,
			TotalItemsSold:           view.Summary.TotalItemsSold,
			AverageOrderValue:        view.Summary.AverageOrderValue,
			AverageOrderValueDisplay: money.Format(view.Summary.AverageOrderValue),
		},
		RevenueByOrderType: revenueTableVM{
			Sort:    toSortVM(view.SummarySort),
			Columns: toColumns(salesreport.SummaryColumns(), view.SummarySort),
			Rows:    make([]revenueRowVM, 0, len(view.Revenue)),
		},
		FoodSales: pivotTableVM{
			Sort:       toSortVM(view.PivotSort),
			Columns:    toColumns(salesreport.PivotColumns(view.OrderTypes), view.PivotSort),
			OrderTypes: view.OrderTypes,
			Categories: make([]categoryVM, 0, view.Pivot.Len()),
		},
	}
	if resp.FoodSales.OrderTypes == nil {
		resp.FoodSales.OrderTypes = []string{}
	}
	if !view.UpdatedAt.IsZero() {
		ts := view.UpdatedAt.UTC()
		resp.UpdatedAt = &ts
	}
	for _, row := range view.Revenue {
		resp.RevenueByOrderType.Rows = append(resp.RevenueByOrderType.Rows, revenueRowVM{
			OrderType:      row.OrderType,
			Revenue:        row.Revenue,
			RevenueDisplay: money.Format(row.Revenue),
		})
	}
	for _, category := range view.Pivot.Categories() {
		cvm := categoryVM{Name: category.Name, Foods: make([]foodRowVM, 0, len(category.Foods))}
		for _, food := range category.Foods {
			sales := food.OrderTypeSales
			if sales == nil {
				sales = map[string]salesreport.OrderTypeSalesDetail{}
			}
			cvm.Foods = append(cvm.Foods, foodRowVM{
				FoodName:                food.FoodName,
				OrderTypeSales:          sales,
				TotalQuantity:           salesreport.TotalQuantity(food),
				TotalFoodRevenue:        food.TotalFoodRevenue,
				TotalFoodRevenueDisplay: money.Format(food.TotalFoodRevenue),
			})
		}
		resp.FoodSales.Categories = append(resp.FoodSales.Categories, cvm)
	}
	return resp
}

func toSortVM(state salesreport.SortState) sortVM {
	return sortVM{Column: state.Column, Direction: string(state.Direction)}
}

func toColumns(keys []string, state salesreport.SortState) []columnVM {
	cols := make([]columnVM, 0, len(keys))
	for _, key := range keys {
		cols = append(cols, columnVM{Key: key, Indicator: state.Indicator(key)})
	}
	return cols
}
