// Package warehouse holds the fulfilment model orders of package store are
// mapped onto.
package warehouse

import (
	"strconv"
	"time"
)

// Status is the fulfilment state of an order.
type Status int

const (
	StatusPending Status = iota
	StatusPaid
	StatusShipped
	StatusReturned
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusPaid:
		return "Paid"
	case StatusShipped:
		return "Shipped"
	case StatusReturned:
		return "Returned"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Order is an order to pick and ship.
type Order struct {
	ID                  uint
	Number              string
	CustomerEmail       string
	CustomerAddressCity string
	Status              Status
	Lines               []Line
	Total               int64 // in cents
	PlacedAt            time.Time
}

// Line is a product line to pick.
type Line struct {
	SKU       string
	Quantity  int32
	UnitPrice int64
	Picked    bool
}
