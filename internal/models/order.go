package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
)

var OrderStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

const DefaultPaymentStatus = "Unpaid"

type OrderedItem struct {
	SareeID  int64 `json:"saree_id"`
	Quantity int64 `json:"quantity"`
}

// ProductDetail is the saree as it was when the order was placed.
type ProductDetail struct {
	Name       string     `json:"name"`
	FabricType FabricType `json:"fabric_type"`
	Color      string     `json:"color"`
	UnitPrice  int64      `json:"unit_price"`
	Quantity   int64      `json:"quantity"`
}

func (p ProductDetail) LineTotal() int64 {
	return p.UnitPrice * p.Quantity
}

type Order struct {
	ID             int64           `json:"id"`
	CustomerName   string          `json:"customer_name"`
	CustomerPhone  string          `json:"customer_phone"`
	Status         OrderStatus     `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
	OrderDate      time.Time       `json:"order_date"`
	Items          []OrderedItem   `json:"items"`
	ProductDetails []ProductDetail `json:"product_details"`
	TotalPrice     int64           `json:"total_price"`
}

// NewOrder is what the storefront submits to the backend.
type NewOrder struct {
	CustomerName   string
	CustomerPhone  string
	Items          []OrderedItem
	ProductDetails []ProductDetail
}

// Total sums the line totals of the snapshots.
func (o NewOrder) Total() int64 {
	var total int64
	for _, d := range o.ProductDetails {
		total += d.LineTotal()
	}
	return total
}
