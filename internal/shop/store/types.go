// Package store holds the order model of a web shop. Its orders are mapped
// onto the fulfilment model of package warehouse in tests and examples.
package store

import (
	"time"
)

// Product is an item available for sale. Prices are in cents.
type Product struct {
	ID         int64
	SKU        string
	Name       string
	PriceCents int64
	CreatedAt  time.Time
}

// Address is a postal address.
type Address struct {
	Street     string
	City       string
	PostalCode string
}

// Customer places orders.
type Customer struct {
	ID       int64
	Email    string
	FullName string
	Address  *Address
}

// Order is a purchase of a customer.
type Order struct {
	ID        int64
	Number    string
	Customer  *Customer
	Status    OrderStatus
	Items     []OrderItem
	OrderedAt time.Time
}

// Total sums the prices of the items.
func (o Order) Total() int64 {
	var total int64
	for _, item := range o.Items {
		total += int64(item.Quantity) * item.UnitPrice
	}

	return total
}

// OrderItem is a product line of an order. It snapshots the unit price at
// the time of purchase.
type OrderItem struct {
	SKU       string
	Name      string
	Quantity  int
	UnitPrice int64
}

// OrderStatus is the state of an order.
type OrderStatus string

const (
	StatusPending  OrderStatus = "PENDING"
	StatusPaid     OrderStatus = "PAID"
	StatusShipped  OrderStatus = "SHIPPED"
	StatusRefunded OrderStatus = "REFUNDED"
	StatusOnHold   OrderStatus = "ON_HOLD"
)
