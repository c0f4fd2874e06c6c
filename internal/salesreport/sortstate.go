package salesreport

// Direction is the active sort direction. The zero value means unsorted.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
)

// Header indicator values for a column.
const (
	IndicatorAsc     = "asc"
	IndicatorDesc    = "desc"
	IndicatorNeutral = "neutral"
)

// SortState is the (column, direction) pair of one table. An empty column
// always carries DirectionNone.
type SortState struct {
	Column    string    `json:"column,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Active reports whether a sort is applied.
func (s SortState) Active() bool {
	return s.Column != "" && s.Direction != DirectionNone
}

// Activate returns the state after a click on col. Clicking the active column
// cycles asc -> desc -> none; clicking another column starts at asc.
func (s SortState) Activate(col string) SortState {
	if col == "" {
		return SortState{}
	}
	if col != s.Column {
		return SortState{Column: col, Direction: DirectionAsc}
	}
	switch s.Direction {
	case DirectionAsc:
		return SortState{Column: col, Direction: DirectionDesc}
	case DirectionDesc:
		return SortState{}
	default:
		return SortState{Column: col, Direction: DirectionAsc}
	}
}

// Indicator returns the header marker for col.
func (s SortState) Indicator(col string) string {
	if !s.Active() || s.Column != col {
		return IndicatorNeutral
	}
	if s.Direction == DirectionDesc {
		return IndicatorDesc
	}
	return IndicatorAsc
}

// Table identifies which board table a sort controller drives.
type Table string

const (
	TableSummary Table = "summary"
	TablePivot   Table = "pivot"
)

// Valid reports whether t names a known table.
func (t Table) Valid() bool {
	return t == TableSummary || t == TablePivot
}

// SortController owns the sort state of a single table.
type SortController struct {
	state SortState
}

// State returns the current sort state.
func (c *SortController) State() SortState {
	return c.state
}

// Activate applies a column click.
func (c *SortController) Activate(col string) SortState {
	c.state = c.state.Activate(col)
	return c.state
}

// Reset returns the controller to the neutral state.
func (c *SortController) Reset() {
	c.state = SortState{}
}

// SummaryColumns is the column space of the flat summary table.
func SummaryColumns() []string {
	return []string{ColumnOrderType, ColumnRevenue}
}

// PivotColumns is the column space of the pivot table for the given channels.
func PivotColumns(orderTypes []string) []string {
	cols := make([]string, 0, len(orderTypes)+2)
	cols = append(cols, ColumnFoodName)
	cols = append(cols, orderTypes...)
	return append(cols, ColumnTotal)
}
