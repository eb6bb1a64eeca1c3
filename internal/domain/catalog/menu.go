package catalog

// DefaultMenu returns the house menu used to seed an empty catalog
func DefaultMenu(stock, minStockThreshold int) []ProductInput {
	items := []ProductInput{
		{
			ID:          "1",
			Name:        "Royal Golden Milk Tea",
			Price:       18000,
			Description: "Signature black tea blended with premium fresh milk and golden brown sugar.",
			ImageURL:    "/images/royal-milk-tea.png",
			Category:    CategorySignature,
			Taste:       TasteVector{Sweet: 8, Creamy: 9, Fruity: 0},
		},
		{
			ID:          "2",
			Name:        "Imperial Jasmine Honey",
			Price:       15000,
			Description: "Fragrant jasmine tea with organic honey and aloe vera toppings.",
			ImageURL:    "/images/jasmine-honey.png",
			Category:    CategoryClassic,
			Taste:       TasteVector{Sweet: 6, Creamy: 0, Fruity: 2},
		},
		{
			ID:          "3",
			Name:        "Sakura Berry Frappe",
			Price:       22000,
			Description: "Japanese sakura essence blended with strawberry and cream cheese foam.",
			ImageURL:    "/images/sakura-berry.png",
			Category:    CategoryFruit,
			Taste:       TasteVector{Sweet: 9, Creamy: 7, Fruity: 9},
		},
		{
			ID:          "4",
			Name:        "Kyoto Macha Latte",
			Price:       20000,
			Description: "Imported matcha from Kyoto with fresh milk, rich and earthy.",
			ImageURL:    "/images/matcha-latte.png",
			Category:    CategoryMilk,
			Taste:       TasteVector{Sweet: 5, Creamy: 8, Fruity: 0},
		},
		{
			ID:          "5",
			Name:        "Tropical Mango Breeze",
			Price:       18000,
			Description: "Refreshing mango tea with real mango chunks and mint leaves.",
			ImageURL:    "/images/mango-breeze.png",
			Category:    CategoryFruit,
			Taste:       TasteVector{Sweet: 7, Creamy: 1, Fruity: 10},
		},
		{
			ID:          "6",
			Name:        "Dark Roasted Oolong",
			Price:       14000,
			Description: "Pure roasted oolong tea, strong and energetic.",
			ImageURL:    "/images/oolong.png",
			Category:    CategoryClassic,
			Taste:       TasteVector{Sweet: 1, Creamy: 0, Fruity: 0},
		},
	}
	for i := range items {
		items[i].Stock = stock
		items[i].MinStockThreshold = minStockThreshold
	}
	return items
}
