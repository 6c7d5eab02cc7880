package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the fulfillment state of an order. Stored values are fixed.
type Status string

const (
	StatusAccepted   Status = "Accepted"
	StatusProcessing Status = "Processing"
	StatusInDelivery Status = "InDelivery"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusAccepted, StatusProcessing, StatusInDelivery, StatusCompleted, StatusCancelled}

// Valid reports whether s is one of the five defined statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends the lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Source tags the intake channel an order arrived through.
type Source string

const (
	SourceWeb      Source = "web"
	SourceExternal Source = "external-channel"
)

func (s Source) Valid() bool {
	return s == SourceWeb || s == SourceExternal
}

// Item is a frozen line of a persisted order.
type Item struct {
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
}

// Amount is price times quantity.
func (i Item) Amount() decimal.Decimal {
	return i.Price.Mul(i.Quantity)
}

// CustomerInfo holds contact details for delivery.
type CustomerInfo struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	ExternalUserID string `json:"externalUserId,omitempty"`
}

// Order is a persisted point-in-time purchase record. Only Status and
// UpdatedAt change after creation.
type Order struct {
	ID          string          `json:"id"`
	Items       []Item          `json:"items"`
	Customer    CustomerInfo    `json:"customer"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      Status          `json:"status"`
	Source      Source          `json:"source"`
	Comments    string          `json:"comments,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (o Order) clone() Order {
	items := make([]Item, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

// ListOptions filters and orders order listings.
type ListOptions struct {
	Ascending     bool
	Status        Status
	CreatedBefore time.Time
	Limit         int
}
