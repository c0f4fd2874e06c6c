package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/salesboard/internal/salesreport"
	"github.com/odyssey-erp/salesboard/jobs"
)

type stubRefresher struct {
	report salesreport.Report
	err    error
}

func (s stubRefresher) Refresh(ctx context.Context, board *salesreport.Board, filter salesreport.Filter) error {
	if s.err != nil {
		board.Fail(s.err)
		return s.err
	}
	board.Replace(salesreport.DeriveReportTotals(s.report))
	return nil
}

func snackReport() salesreport.Report {
	return salesreport.Report{
		Summary: salesreport.Summary{TotalRevenue: 42000, TotalOrders: 4, TotalItemsSold: 5},
		RevenueByOrderType: []salesreport.RevenueByOrderType{
			{OrderType: "Dine In", Revenue: 30000},
			{OrderType: "GrabFood", Revenue: 12000},
		},
		FoodSalesByCategoryAndOrderType: salesreport.NewPivot(salesreport.Category{
			Name: "Snacks",
			Foods: []salesreport.FoodEntry{
				{FoodName: "Fries", OrderTypeSales: map[string]salesreport.OrderTypeSalesDetail{"Dine In": {Quantity: 3, Revenue: 30000}}},
				{FoodName: "Nuggets", OrderTypeSales: map[string]salesreport.OrderTypeSalesDetail{"GrabFood": {Quantity: 2, Revenue: 12000}}},
			},
		}),
	}
}

func exportFilter() salesreport.Filter {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return salesreport.Filter{From: day, To: day}
}

func TestParseSortSpec(t *testing.T) {
	spec, err := ParseSortSpec("pivot:total:desc")
	require.NoError(t, err)
	require.Equal(t, SortSpec{Table: salesreport.TablePivot, Column: "total", Descending: true}, spec)

	spec, err = ParseSortSpec(" summary:revenue ")
	require.NoError(t, err)
	require.False(t, spec.Descending)
	require.Equal(t, salesreport.TableSummary, spec.Table)

	spec, err = ParseSortSpec("pivot:Delivery: GrabFood:desc")
	require.NoError(t, err)
	require.Equal(t, SortSpec{Table: salesreport.TablePivot, Column: "Delivery: GrabFood", Descending: true}, spec)

	spec, err = ParseSortSpec("pivot:Delivery: GrabFood")
	require.NoError(t, err)
	require.Equal(t, "Delivery: GrabFood", spec.Column)
	require.False(t, spec.Descending)

	for _, raw := range []string{"pivot", "pivot:", "chart:total", "pivot::desc", "a:b:c:d"} {
		_, err := ParseSortSpec(raw)
		require.Error(t, err, raw)
	}
}

func TestBuildTask(t *testing.T) {
	task, err := BuildTask(jobs.TaskReportWarmup)
	require.NoError(t, err)
	require.Equal(t, jobs.TaskReportWarmup, task.Type())

	task, err = BuildTask(jobs.TaskReportInvalidate)
	require.NoError(t, err)
	require.Equal(t, jobs.TaskReportInvalidate, task.Type())

	_, err = BuildTask("gl:integrity")
	require.Error(t, err)
}

func TestExportCSVAppliesSorts(t *testing.T) {
	cli := NewExportCLI(stubRefresher{report: snackReport()})
	out := new(bytes.Buffer)
	err := cli.Run(context.Background(), ExportOptions{
		Filter: exportFilter(),
		Format: FormatCSV,
		Sorts: []SortSpec{
			{Table: salesreport.TablePivot, Column: "total"},
			{Table: salesreport.TableSummary, Column: "revenue", Descending: false},
		},
	}, out)
	require.NoError(t, err)

	reader := csv.NewReader(out)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	var summaryOrder, foodOrder []string
	inPivot := false
	for _, rec := range records {
		switch {
		case rec[0] == "Category":
			inPivot = true
		case inPivot:
			foodOrder = append(foodOrder, rec[1])
		case rec[0] == "Dine In" || rec[0] == "GrabFood":
			summaryOrder = append(summaryOrder, rec[0])
		}
	}
	require.Equal(t, []string{"GrabFood", "Dine In"}, summaryOrder)
	require.Equal(t, []string{"Nuggets", "Fries"}, foodOrder)
}

func TestExportDescendingSort(t *testing.T) {
	cli := NewExportCLI(stubRefresher{report: snackReport()})
	out := new(bytes.Buffer)
	err := cli.Run(context.Background(), ExportOptions{
		Filter: exportFilter(),
		Sorts:  []SortSpec{{Table: salesreport.TablePivot, Column: "foodName", Descending: true}},
	}, out)
	require.NoError(t, err)
	body := out.String()
	require.Less(t, bytes.Index([]byte(body), []byte("Snacks,Nuggets")), bytes.Index([]byte(body), []byte("Snacks,Fries")))
}

func TestExportXLSX(t *testing.T) {
	cli := NewExportCLI(stubRefresher{report: snackReport()})
	out := new(bytes.Buffer)
	require.NoError(t, cli.Run(context.Background(), ExportOptions{Filter: exportFilter(), Format: FormatXLSX}, out))
	require.True(t, bytes.HasPrefix(out.Bytes(), []byte("PK")))
}

func TestExportErrors(t *testing.T) {
	ctx := context.Background()
	out := new(bytes.Buffer)

	err := NewExportCLI(stubRefresher{err: errors.New("pos down")}).Run(ctx, ExportOptions{Filter: exportFilter()}, out)
	require.EqualError(t, err, "pos down")

	cli := NewExportCLI(stubRefresher{report: snackReport()})
	err = cli.Run(ctx, ExportOptions{
		Filter: exportFilter(),
		Sorts:  []SortSpec{{Table: salesreport.TablePivot, Column: "ShopeeFood"}},
	}, out)
	require.ErrorContains(t, err, "not sortable")

	err = cli.Run(ctx, ExportOptions{Filter: exportFilter(), Format: "pdf"}, out)
	require.ErrorContains(t, err, "unsupported format")

	require.Error(t, NewExportCLI(nil).Run(ctx, ExportOptions{}, out))
}

func TestExportSortsByColonLabel(t *testing.T) {
	report := snackReport()
	report.RevenueByOrderType = append(report.RevenueByOrderType, salesreport.RevenueByOrderType{OrderType: "Delivery: GrabFood", Revenue: 1})
	report.FoodSalesByCategoryAndOrderType = salesreport.NewPivot(salesreport.Category{
		Name: "Snacks",
		Foods: []salesreport.FoodEntry{
			{FoodName: "Fries", OrderTypeSales: map[string]salesreport.OrderTypeSalesDetail{"Delivery: GrabFood": {Quantity: 1, Revenue: 9000}}},
			{FoodName: "Nuggets", OrderTypeSales: map[string]salesreport.OrderTypeSalesDetail{"Delivery: GrabFood": {Quantity: 1, Revenue: 4000}}},
		},
	})
	spec, err := ParseSortSpec("pivot:Delivery: GrabFood")
	require.NoError(t, err)

	out := new(bytes.Buffer)
	cli := NewExportCLI(stubRefresher{report: report})
	require.NoError(t, cli.Run(context.Background(), ExportOptions{Filter: exportFilter(), Sorts: []SortSpec{spec}}, out))
	require.Less(t, bytes.Index(out.Bytes(), []byte("Snacks,Nuggets")), bytes.Index(out.Bytes(), []byte("Snacks,Fries")))
}
