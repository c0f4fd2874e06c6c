package salesreport

import "time"

// Status describes the dataset lifecycle of a board.
type Status string

const (
	StatusEmpty   Status = "empty"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Board is the state behind one operator's sales report screen: the last
// fetched dataset plus one sort controller per table. A Board is not safe for
// concurrent use; Registry serialises access.
type Board struct {
	report     Report
	orderTypes []string
	generation uint64
	status     Status
	lastError  string
	updatedAt  time.Time

	summarySort SortController
	pivotSort   SortController
	projector   Projector
	now         func() time.Time
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{status: StatusEmpty, now: time.Now}
}

// BoardView is the render-ready projection of a board.
type BoardView struct {
	Status      Status
	Error       string
	UpdatedAt   time.Time
	Summary     Summary
	Revenue     []RevenueByOrderType
	Pivot       CategorizedPivot
	OrderTypes  []string
	SummarySort SortState
	PivotSort   SortState
}

// BeginFetch discards the current dataset while a new fetch is in flight.
// Sort state is kept and applied once the new data lands.
func (b *Board) BeginFetch() {
	b.clearData()
	b.status = StatusLoading
	b.lastError = ""
}

// Replace installs a freshly fetched report, deriving row totals.
func (b *Board) Replace(report Report) {
	b.report = DeriveReportTotals(report)
	b.orderTypes = b.report.OrderTypes()
	b.generation++
	b.status = StatusReady
	b.lastError = ""
	b.updatedAt = b.clock()
	b.projector.Invalidate()
}

// Fail clears the dataset after a failed fetch so no stale rows are shown.
func (b *Board) Fail(err error) {
	b.clearData()
	b.status = StatusFailed
	if err != nil {
		b.lastError = err.Error()
	}
}

// Reset clears the dataset and both sort states.
func (b *Board) Reset() {
	b.clearData()
	b.status = StatusEmpty
	b.lastError = ""
	b.summarySort.Reset()
	b.pivotSort.Reset()
}

// OnColumnActivate handles a header click on table. Unknown tables are ignored.
func (b *Board) OnColumnActivate(table Table, column string) SortState {
	switch table {
	case TableSummary:
		return b.summarySort.Activate(column)
	case TablePivot:
		return b.pivotSort.Activate(column)
	default:
		return SortState{}
	}
}

// SortState returns the current state of a table.
func (b *Board) SortState(table Table) SortState {
	if table == TableSummary {
		return b.summarySort.State()
	}
	return b.pivotSort.State()
}

// Columns lists the sortable columns of table for the current dataset.
func (b *Board) Columns(table Table) []string {
	switch table {
	case TableSummary:
		return SummaryColumns()
	case TablePivot:
		return PivotColumns(b.orderTypes)
	default:
		return nil
	}
}

// AcceptsColumn reports whether column may be presented on table. The active
// column is always accepted so a sort can be cycled off after new data drops
// its channel.
func (b *Board) AcceptsColumn(table Table, column string) bool {
	if column != "" && column == b.SortState(table).Column {
		return true
	}
	for _, c := range b.Columns(table) {
		if c == column {
			return true
		}
	}
	return false
}

// View returns the sorted projection of the current dataset.
func (b *Board) View() BoardView {
	summarySort := b.summarySort.State()
	pivotSort := b.pivotSort.State()
	return BoardView{
		Status:      b.status,
		Error:       b.lastError,
		UpdatedAt:   b.updatedAt,
		Summary:     b.report.Summary,
		Revenue:     b.projector.Summary(b.generation, b.report.RevenueByOrderType, summarySort),
		Pivot:       b.projector.Pivot(b.generation, b.report.FoodSalesByCategoryAndOrderType, pivotSort),
		OrderTypes:  append([]string(nil), b.orderTypes...),
		SummarySort: summarySort,
		PivotSort:   pivotSort,
	}
}

func (b *Board) clearData() {
	b.report = Report{}
	b.orderTypes = nil
	b.generation++
	b.projector.Invalidate()
}

func (b *Board) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}
