package orders

import "errors"

// Status is an order's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusFulfilled Status = "fulfilled"
)

// Order is the tenant-scoped resource the authorization engine guards.
// Org and SoldBy are fixed at creation; only Status changes afterwards.
type Order struct {
	ID       string   `json:"id"`
	Org      string   `json:"org"`
	SoldBy   string   `json:"sold_by"`
	Customer string   `json:"customer"`
	Items    []string `json:"items"`
	Status   Status   `json:"status"`
}

// OrderWithActions is an order enriched with the actions the requesting
// subject may perform on it, driving client-visible affordances.
type OrderWithActions struct {
	Order
	Permissions []string `json:"permissions"`
}

var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidStatus = errors.New("order is not pending")
)
