package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/salesboard/internal/salesreport"
)

const (
	SheetSummary = "Revenue by Order Type"
	SheetPivot   = "Sales by Category"
)

// WriteXLSX renders the summary and pivot tables as a two-sheet workbook.
func WriteXLSX(w io.Writer, view salesreport.BoardView) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetPivot); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	summaryRows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Revenue", view.Summary.TotalRevenue},
		{"Total Orders", view.Summary.TotalOrders},
		{"Items Sold", view.Summary.TotalItemsSold},
		{"Average Order Value", view.Summary.AverageOrderValue},
		{},
		{"Order Type", "Revenue"},
	}
	for _, row := range view.Revenue {
		summaryRows = append(summaryRows, []interface{}{row.OrderType, row.Revenue})
	}
	if err := writeRows(f, SheetSummary, summaryRows); err != nil {
		return err
	}
	if err := styleRow(f, SheetSummary, 1, 2, headerStyle); err != nil {
		return err
	}
	if err := styleRow(f, SheetSummary, 7, 2, headerStyle); err != nil {
		return err
	}

	header := PivotHeader(view.OrderTypes)
	pivotRows := [][]interface{}{toCells(header)}
	for _, category := range view.Pivot.Categories() {
		for _, food := range category.Foods {
			row := []interface{}{category.Name, food.FoodName}
			for _, ot := range view.OrderTypes {
				row = append(row, food.ChannelQuantity(ot), food.ChannelRevenue(ot))
			}
			row = append(row, salesreport.TotalQuantity(food), food.TotalFoodRevenue)
			pivotRows = append(pivotRows, row)
		}
	}
	if err := writeRows(f, SheetPivot, pivotRows); err != nil {
		return err
	}
	if err := styleRow(f, SheetPivot, 1, len(header), headerStyle); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write xlsx: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, width, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
