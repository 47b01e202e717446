package extraction

import "testing"

func TestParseLineItems(t *testing.T) {
	tests := []struct {
		name string
		line string
		want LineItem
	}{
		{
			name: "plain name and price",
			line: "Phone Case 29.99",
			want: LineItem{Name: "Phone Case", Quantity: 1, Price: 29.99, Category: CategoryActivation},
		},
		{
			name: "embedded x quantity",
			line: "2 x Screen Protector 19.99",
			want: LineItem{Name: "Screen Protector", Quantity: 2, Price: 19.99, Category: CategoryAccessory},
		},
		{
			name: "embedded bare quantity",
			line: "3 Charging Cable 9.99",
			want: LineItem{Name: "Charging Cable", Quantity: 3, Price: 9.99, Category: CategoryAccessory},
		},
		{
			name: "separate quantity column",
			line: "USB Adapter 2 14.99",
			want: LineItem{Name: "USB Adapter", Quantity: 2, Price: 14.99, Category: CategoryAccessory},
		},
		{
			name: "dollar sign before price",
			line: "Wireless Earbuds $149.99",
			want: LineItem{Name: "Wireless Earbuds", Quantity: 1, Price: 149.99, Category: CategoryAccessory},
		},
		{
			name: "comma decimal separator",
			line: "Car Mount 24,99",
			want: LineItem{Name: "Car Mount", Quantity: 1, Price: 24.99, Category: CategoryAccessory},
		},
		{
			name: "phone with upgrade keyword",
			line: "iPhone 16 Pro Max Upgrade 899.99",
			want: LineItem{Name: "iPhone 16 Pro Max Upgrade", Quantity: 1, Price: 899.99, Category: CategoryUpgrade},
		},
		{
			name: "phone without upgrade keyword",
			line: "Samsung Galaxy S25 799.99",
			want: LineItem{Name: "Samsung Galaxy S25", Quantity: 1, Price: 799.99, Category: CategoryActivation},
		},
		{
			name: "service plan",
			line: "Unlimited Plan 55.00",
			want: LineItem{Name: "Unlimited Plan", Quantity: 1, Price: 55.00, Category: CategoryService},
		},
		{
			name: "device insurance",
			line: "Device Insurance 12.00",
			want: LineItem{Name: "Device Insurance", Quantity: 1, Price: 12.00, Category: CategoryProtection},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := ParseLineItems([]string{tt.line}, false)
			if len(items) != 1 {
				t.Fatalf("got %d items, want 1", len(items))
			}
			if items[0] != tt.want {
				t.Errorf("got %+v, want %+v", items[0], tt.want)
			}
		})
	}
}

func TestParseLineItemsSkips(t *testing.T) {
	lines := []string{
		"Total: $99.99",
		"Subtotal 89.99",
		"Tax 8.25",
		"Shipping 5.00",
		"Discount -10.00",
		"Grand Total 103.24",
		"abc",
		"",
		"Just a sentence with no price at the end",
	}
	if items := ParseLineItems(lines, false); len(items) != 0 {
		t.Errorf("expected no items, got %+v", items)
	}
}

func TestParseLineItemsSkipFirst(t *testing.T) {
	lines := []string{
		"Widget Catalog 10.00",
		"Phone Case 29.99",
	}
	items := ParseLineItems(lines, true)
	if len(items) != 1 || items[0].Name != "Phone Case" {
		t.Fatalf("got %+v, want only the second line", items)
	}

	items = ParseLineItems(lines, false)
	if len(items) != 2 {
		t.Fatalf("without skipFirst got %d items, want 2", len(items))
	}
}

func TestParseLineItemsInvariants(t *testing.T) {
	lines := []string{
		"Phone Case 29.99",
		"0 x Ghost Item 5.00",
		"2 x Screen Protector 19.99",
	}
	for _, it := range ParseLineItems(lines, false) {
		if it.Quantity < 1 {
			t.Errorf("item %q has quantity %d", it.Name, it.Quantity)
		}
		if it.Price < 0 {
			t.Errorf("item %q has price %v", it.Name, it.Price)
		}
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"iPhone 16", CategoryActivation},
		{"Pixel 9 Upgrade", CategoryUpgrade},
		{"Family Plan", CategoryService},
		{"Extended Warranty", CategoryProtection},
		{"Screen Protector", CategoryAccessory},
		{"Car Charger", CategoryAccessory},
	}
	for _, tt := range tests {
		if got := categorize(tt.name); got != tt.want {
			t.Errorf("categorize(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSumLineItems(t *testing.T) {
	items := []LineItem{
		{Name: "a", Quantity: 2, Price: 10.00},
		{Name: "b", Quantity: 1, Price: 5.50},
	}
	if got := sumLineItems(items); got != 25.50 {
		t.Errorf("sum = %v, want 25.50", got)
	}
}
