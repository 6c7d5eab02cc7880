package orders

import (
	"regexp"
	"strings"
	"time"

	"github.com/optbazar/optbazar/internal/cart"
)

// UnnamedCustomer is stored when a submission carries no customer name.
const UnnamedCustomer = "Не указано"

var phonePattern = regexp.MustCompile(`^[+]?[0-9\s\-()]{10,}$`)

// Validator decides whether a cart plus contact details can become an order.
type Validator struct {
	now func() time.Time
}

func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// Validate runs the submission checks in order and builds the order payload.
// It performs no I/O; the returned order has no ID yet.
func (v *Validator) Validate(c cart.Cart, customer CustomerInfo, comments string, source Source) (Order, error) {
	if c.IsEmpty() {
		return Order{}, ErrEmptyCart
	}
	customer.Phone = strings.TrimSpace(customer.Phone)
	if customer.Phone == "" || !phonePattern.MatchString(customer.Phone) {
		return Order{}, ErrPhoneFormat
	}
	customer.Address = strings.TrimSpace(customer.Address)
	if customer.Address == "" {
		return Order{}, ErrMissingAddress
	}
	if c.OverLimit() {
		return Order{}, ErrWeightLimit
	}
	if err := c.CheckLines(); err != nil {
		return Order{}, err
	}
	if !source.Valid() {
		return Order{}, ErrInvalidSource
	}

	customer.Name = strings.TrimSpace(customer.Name)
	if customer.Name == "" {
		customer.Name = UnnamedCustomer
	}
	customer.ExternalUserID = strings.TrimSpace(customer.ExternalUserID)

	lines := c.Lines()
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Unit:      l.Unit,
		})
	}

	now := v.now().UTC().Truncate(time.Millisecond)
	return Order{
		Items:       items,
		Customer:    customer,
		TotalAmount: c.TotalAmount(),
		Status:      StatusAccepted,
		Source:      source,
		Comments:    strings.TrimSpace(comments),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
