package salesreport

func sales(pairs ...any) map[string]OrderTypeSalesDetail {
	out := make(map[string]OrderTypeSalesDetail, len(pairs)/3)
	for i := 0; i+2 < len(pairs); i += 3 {
		out[pairs[i].(string)] = OrderTypeSalesDetail{Quantity: pairs[i+1].(int), Revenue: pairs[i+2].(float64)}
	}
	return out
}

func food(name string, pairs ...any) FoodEntry {
	return DeriveTotals(FoodEntry{FoodName: name, OrderTypeSales: sales(pairs...)})
}

func foodNames(entries []FoodEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.FoodName
	}
	return out
}

func sampleReport() Report {
	return Report{
		Summary: Summary{TotalRevenue: 91000, TotalOrders: 6, TotalItemsSold: 11, AverageOrderValue: 15166.67},
		RevenueByOrderType: []RevenueByOrderType{
			{OrderType: "Dine In", Revenue: 50000},
			{OrderType: "GrabFood", Revenue: 25000},
			{OrderType: "Take Away", Revenue: 16000},
		},
		FoodSalesByCategoryAndOrderType: NewPivot(
			Category{Name: "Beverages", Foods: []FoodEntry{
				{FoodName: "Cola", OrderTypeSales: sales("Dine In", 2, 20000.0)},
				{FoodName: "Tea", OrderTypeSales: sales("Take Away", 1, 8000.0)},
				{FoodName: "Iced Coffee", OrderTypeSales: sales("GrabFood", 1, 15000.0, "Take Away", 1, 8000.0)},
			}},
			Category{Name: "Mains", Foods: []FoodEntry{
				{FoodName: "nasi goreng", OrderTypeSales: sales("Dine In", 2, 30000.0, "GrabFood", 1, 10000.0)},
				{FoodName: "Mie Ayam", OrderTypeSales: sales("ShopeeFood", 0, 0.0)},
			}},
			Category{Name: "Desserts"},
		),
	}
}
