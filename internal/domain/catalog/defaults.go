package catalog

// DefaultGarments is the inventory seeded into an empty store. IDs are
// assigned at seeding time.
func DefaultGarments() []Garment {
	return []Garment{
		{Name: "Modern T-Shirt", Price: 2999, Category: "Clothing", ImageRef: "https://example.com/modern-tshirt.jpg", Sizes: []string{"S", "M", "L", "XL"}},
		{Name: "Designer Jeans", Price: 7999, Category: "Clothing", ImageRef: "https://example.com/designer-jeans.jpg", Sizes: []string{"28", "30", "32", "34", "36"}},
		{Name: "Sleek Jacket", Price: 12999, Category: "Clothing", ImageRef: "https://example.com/sleek-jacket.jpg", Sizes: []string{"S", "M", "L", "XL"}},
		{Name: "Trendy Sneakers", Price: 8999, Category: "Footwear", ImageRef: "https://example.com/trendy-sneakers.jpg", Sizes: []string{"7", "8", "9", "10", "11"}},
		{Name: "Stylish Hat", Price: 3499, Category: "Accessories", ImageRef: "https://example.com/stylish-hat.jpg", Sizes: []string{"S", "M", "L"}},
	}
}
