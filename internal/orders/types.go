package orders

import "time"

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// Item is a single order line.
type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Order is a customer order as served by the API.
type Order struct {
	ID              string    `json:"id"`
	CustomerName    string    `json:"customer_name"`
	OrderDate       time.Time `json:"order_date"`
	TotalAmount     float64   `json:"total_amount"`
	Status          Status    `json:"status"`
	Items           []Item    `json:"items"`
	ShippingAddress string    `json:"shipping_address"`
	TrackingNumber  *string   `json:"tracking_number"`
}

// Clone returns a deep copy so callers cannot mutate stored orders.
func (o Order) Clone() Order {
	out := o
	if o.Items != nil {
		out.Items = make([]Item, len(o.Items))
		copy(out.Items, o.Items)
	}
	if o.TrackingNumber != nil {
		tn := *o.TrackingNumber
		out.TrackingNumber = &tn
	}
	return out
}
