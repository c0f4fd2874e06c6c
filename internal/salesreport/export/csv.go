// Package export writes the sorted board view to downloadable files.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/odyssey-erp/salesboard/internal/salesreport"
)

// WriteSummaryCSV serialises the key metrics and the revenue by order type table.
func WriteSummaryCSV(w io.Writer, view salesreport.BoardView) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	records := [][]string{
		{"Metric", "Value"},
		{"Total Revenue", formatFloat(view.Summary.TotalRevenue)},
		{"Total Orders", strconv.Itoa(view.Summary.TotalOrders)},
		{"Items Sold", strconv.Itoa(view.Summary.TotalItemsSold)},
		{"Average Order Value", formatFloat(view.Summary.AverageOrderValue)},
		{},
		{"Order Type", "Revenue"},
	}
	for _, row := range view.Revenue {
		records = append(records, []string{row.OrderType, formatFloat(row.Revenue)})
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePivotCSV emits one line per food with quantity and revenue per order type.
func WritePivotCSV(w io.Writer, view salesreport.BoardView) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(PivotHeader(view.OrderTypes)); err != nil {
		return err
	}
	for _, category := range view.Pivot.Categories() {
		for _, food := range category.Foods {
			if err := writer.Write(pivotRecord(category.Name, food, view.OrderTypes)); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// PivotHeader returns the column titles of the pivot export.
func PivotHeader(orderTypes []string) []string {
	header := make([]string, 0, len(orderTypes)*2+4)
	header = append(header, "Category", "Food")
	for _, ot := range orderTypes {
		header = append(header, ot+" Qty", ot+" Revenue")
	}
	return append(header, "Total Qty", "Total Revenue")
}

func pivotRecord(category string, food salesreport.FoodEntry, orderTypes []string) []string {
	record := make([]string, 0, len(orderTypes)*2+4)
	record = append(record, category, food.FoodName)
	for _, ot := range orderTypes {
		record = append(record, strconv.Itoa(food.ChannelQuantity(ot)), formatFloat(food.ChannelRevenue(ot)))
	}
	return append(record,
		strconv.Itoa(salesreport.TotalQuantity(food)),
		formatFloat(food.TotalFoodRevenue),
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
