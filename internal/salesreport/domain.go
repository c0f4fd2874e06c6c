package salesreport

import (
	"encoding/json"
	"sort"
)

// Column identifiers with fixed meaning. Any other pivot column is an order type label.
const (
	ColumnOrderType = "orderType"
	ColumnRevenue   = "revenue"
	ColumnFoodName  = "foodName"
	ColumnTotal     = "total"
)

// Summary carries the flat key metrics returned by the upstream API.
type Summary struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalOrders       int     `json:"totalOrders"`
	TotalItemsSold    int     `json:"totalItemsSold"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

// RevenueByOrderType is one row of the flat "revenue by order type" table.
type RevenueByOrderType struct {
	OrderType string  `json:"orderType"`
	Revenue   float64 `json:"revenue"`
}

// OrderTypeSalesDetail is the sales of one food item through one channel.
type OrderTypeSalesDetail struct {
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// FoodEntry is a pivot row. TotalFoodRevenue is derived from OrderTypeSales.
type FoodEntry struct {
	FoodName         string                          `json:"foodName"`
	OrderTypeSales   map[string]OrderTypeSalesDetail `json:"orderTypeSales"`
	TotalFoodRevenue float64                         `json:"totalFoodRevenue"`
}

// ChannelRevenue returns the revenue for a channel, zero when the food was not sold through it.
func (e FoodEntry) ChannelRevenue(channel string) float64 {
	return e.OrderTypeSales[channel].Revenue
}

// ChannelQuantity returns the quantity for a channel, zero when absent.
func (e FoodEntry) ChannelQuantity(channel string) int {
	return e.OrderTypeSales[channel].Quantity
}

func (e FoodEntry) clone() FoodEntry {
	out := e
	if e.OrderTypeSales != nil {
		out.OrderTypeSales = make(map[string]OrderTypeSalesDetail, len(e.OrderTypeSales))
		for k, v := range e.OrderTypeSales {
			out.OrderTypeSales[k] = v
		}
	}
	return out
}

// Report is the payload returned by the sales report endpoint.
type Report struct {
	Summary                         Summary              `json:"summary"`
	RevenueByOrderType              []RevenueByOrderType `json:"revenueByOrderType"`
	FoodSalesByCategoryAndOrderType CategorizedPivot     `json:"foodSalesByCategoryAndOrderType"`
}

// UnmarshalJSON tolerates null sections by leaving them empty.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw struct {
		Summary            *Summary             `json:"summary"`
		RevenueByOrderType []RevenueByOrderType `json:"revenueByOrderType"`
		Pivot              json.RawMessage      `json:"foodSalesByCategoryAndOrderType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Report{RevenueByOrderType: raw.RevenueByOrderType}
	if raw.Summary != nil {
		r.Summary = *raw.Summary
	}
	if len(raw.Pivot) > 0 {
		if err := r.FoodSalesByCategoryAndOrderType.UnmarshalJSON(raw.Pivot); err != nil {
			return err
		}
	}
	return nil
}

// Empty reports whether the report carries no rows in either table.
func (r Report) Empty() bool {
	return len(r.RevenueByOrderType) == 0 && r.FoodSalesByCategoryAndOrderType.Len() == 0
}

// OrderTypes lists the channel labels seen in the report. Labels from the
// summary table come first in their server order, followed by labels only
// present in the pivot, sorted.
func (r Report) OrderTypes() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(r.RevenueByOrderType))
	for _, row := range r.RevenueByOrderType {
		if _, ok := seen[row.OrderType]; ok {
			continue
		}
		seen[row.OrderType] = struct{}{}
		out = append(out, row.OrderType)
	}
	var extra []string
	for _, cat := range r.FoodSalesByCategoryAndOrderType.Categories() {
		for _, food := range cat.Foods {
			for channel := range food.OrderTypeSales {
				if _, ok := seen[channel]; ok {
					continue
				}
				seen[channel] = struct{}{}
				extra = append(extra, channel)
			}
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
