package salesreport

import (
	"cmp"
	"strings"
)

// KeyKind distinguishes fixed row fields from dynamic channel columns.
type KeyKind int

const (
	KeyField KeyKind = iota
	KeyOrderType
)

// SortKey names what a column sorts on.
type SortKey struct {
	Kind KeyKind
	Name string
}

// ByField sorts on a fixed row field.
func ByField(name string) SortKey { return SortKey{Kind: KeyField, Name: name} }

// ByOrderType sorts on the revenue of a channel.
func ByOrderType(label string) SortKey { return SortKey{Kind: KeyOrderType, Name: label} }

// ResolveKey maps a column identifier to its sort key. The reserved columns
// are fields; every other column is treated as an order type label.
func ResolveKey(column string) SortKey {
	switch column {
	case ColumnOrderType, ColumnFoodName, ColumnRevenue, ColumnTotal:
		return ByField(column)
	default:
		return ByOrderType(column)
	}
}

// Comparator orders two rows, returning a negative, zero or positive value.
type Comparator[T any] func(a, b T) int

type sortValue struct {
	text   string
	num    float64
	isText bool
}

func textValue(s string) sortValue { return sortValue{text: strings.ToLower(s), isText: true} }

func numValue(v float64) sortValue { return sortValue{num: v} }

func compareValues(a, b sortValue) int {
	if a.isText || b.isText {
		return strings.Compare(a.text, b.text)
	}
	return cmp.Compare(a.num, b.num)
}

func buildComparator[T any](state SortState, extractor func(SortKey) func(T) sortValue) Comparator[T] {
	if !state.Active() {
		return nil
	}
	extract := extractor(ResolveKey(state.Column))
	sign := 1
	if state.Direction == DirectionDesc {
		sign = -1
	}
	return func(a, b T) int {
		return sign * compareValues(extract(a), extract(b))
	}
}

// PivotComparator builds the comparator for pivot rows, or nil when state is neutral.
func PivotComparator(state SortState) Comparator[FoodEntry] {
	return buildComparator(state, pivotExtractor)
}

// SummaryComparator builds the comparator for summary rows, or nil when state is neutral.
func SummaryComparator(state SortState) Comparator[RevenueByOrderType] {
	return buildComparator(state, summaryExtractor)
}

func pivotExtractor(key SortKey) func(FoodEntry) sortValue {
	if key.Kind == KeyOrderType {
		channel := key.Name
		return func(e FoodEntry) sortValue { return numValue(e.ChannelRevenue(channel)) }
	}
	switch key.Name {
	case ColumnFoodName:
		return func(e FoodEntry) sortValue { return textValue(e.FoodName) }
	case ColumnRevenue, ColumnTotal:
		return func(e FoodEntry) sortValue { return numValue(e.TotalFoodRevenue) }
	default:
		// pivot rows carry no order type field; every row compares equal
		return func(FoodEntry) sortValue { return textValue("") }
	}
}

func summaryExtractor(key SortKey) func(RevenueByOrderType) sortValue {
	if key.Kind == KeyOrderType {
		return func(RevenueByOrderType) sortValue { return numValue(0) }
	}
	switch key.Name {
	case ColumnOrderType:
		return func(r RevenueByOrderType) sortValue { return textValue(r.OrderType) }
	case ColumnRevenue, ColumnTotal:
		return func(r RevenueByOrderType) sortValue { return numValue(r.Revenue) }
	default:
		return func(RevenueByOrderType) sortValue { return textValue("") }
	}
}
