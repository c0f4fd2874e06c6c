package salesreport

import "slices"

// ProjectPivot stable-sorts every category of pivot independently. Category
// order is kept, empty categories survive, and the input is never modified.
// A nil comparator keeps the server order.
func ProjectPivot(pivot CategorizedPivot, compare Comparator[FoodEntry]) CategorizedPivot {
	return pivot.Map(func(c Category) []FoodEntry {
		rows := make([]FoodEntry, len(c.Foods))
		for i, f := range c.Foods {
			rows[i] = f.clone()
		}
		if compare != nil {
			slices.SortStableFunc(rows, compare)
		}
		return rows
	})
}

// ProjectSummary stable-sorts a copy of the flat summary rows.
func ProjectSummary(rows []RevenueByOrderType, compare Comparator[RevenueByOrderType]) []RevenueByOrderType {
	out := make([]RevenueByOrderType, len(rows))
	copy(out, rows)
	if compare != nil {
		slices.SortStableFunc(out, compare)
	}
	return out
}

type memoKey struct {
	generation uint64
	state      SortState
}

// Projector memoises projections on (dataset generation, sort state).
type Projector struct {
	pivotKey     memoKey
	pivot        CategorizedPivot
	pivotValid   bool
	summaryKey   memoKey
	summary      []RevenueByOrderType
	summaryValid bool

	computations int
}

// Pivot returns the projected pivot for the dataset generation and state.
func (p *Projector) Pivot(generation uint64, src CategorizedPivot, state SortState) CategorizedPivot {
	key := memoKey{generation: generation, state: state}
	if p.pivotValid && p.pivotKey == key {
		return p.pivot
	}
	p.pivot = ProjectPivot(src, PivotComparator(state))
	p.pivotKey = key
	p.pivotValid = true
	p.computations++
	return p.pivot
}

// Summary returns the projected summary rows for the dataset generation and state.
func (p *Projector) Summary(generation uint64, src []RevenueByOrderType, state SortState) []RevenueByOrderType {
	key := memoKey{generation: generation, state: state}
	if p.summaryValid && p.summaryKey == key {
		return p.summary
	}
	p.summary = ProjectSummary(src, SummaryComparator(state))
	p.summaryKey = key
	p.summaryValid = true
	p.computations++
	return p.summary
}

// Invalidate drops memoised projections.
func (p *Projector) Invalidate() {
	*p = Projector{computations: p.computations}
}
