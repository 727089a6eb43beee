package orders

import "time"

func tracking(s string) *string { return &s }

// SampleOrders returns the fixed demonstration data set.
func SampleOrders() []Order {
	return []Order{
		{
			ID:           "1",
			CustomerName: "John Doe",
			OrderDate:    time.Date(2024, 10, 1, 9, 30, 0, 0, time.UTC),
			TotalAmount:  149.97,
			Status:       StatusDelivered,
			Items: []Item{
				{ProductID: "P-100", Name: "Wireless Mouse", Quantity: 1, UnitPrice: 29.99},
				{ProductID: "P-200", Name: "Mechanical Keyboard", Quantity: 1, UnitPrice: 119.98},
			},
			ShippingAddress: "123 Main St, Springfield",
			TrackingNumber:  tracking("TRK-1001"),
		},
		{
			ID:           "2",
			CustomerName: "Jane Smith",
			OrderDate:    time.Date(2024, 10, 5, 14, 15, 0, 0, time.UTC),
			TotalAmount:  59.5,
			Status:       StatusShipped,
			Items: []Item{
				{ProductID: "P-300", Name: "USB-C Cable", Quantity: 2, UnitPrice: 9.75},
				{ProductID: "P-400", Name: "Laptop Stand", Quantity: 1, UnitPrice: 40.0},
			},
			ShippingAddress: "456 Oak Ave, Shelbyville",
			TrackingNumber:  tracking("TRK-1002"),
		},
		{
			ID:           "3",
			CustomerName: "Alice Johnson",
			OrderDate:    time.Date(2024, 10, 9, 8, 0, 0, 0, time.UTC),
			TotalAmount:  249.0,
			Status:       StatusPending,
			Items: []Item{
				{ProductID: "P-500", Name: "27\" Monitor", Quantity: 1, UnitPrice: 249.0},
			},
			ShippingAddress: "789 Pine Rd, Capital City",
		},
	}
}
