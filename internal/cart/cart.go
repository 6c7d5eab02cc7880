// Package cart models the client-local shopping cart as an immutable value.
// Each mutation returns a new Cart; lines are snapshots of catalog products
// taken when they were added.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/optbazar/optbazar/internal/catalog"
	"github.com/optbazar/optbazar/internal/shared"
)

// MaxTotalQuantity caps the summed quantity of a cart regardless of unit.
var MaxTotalQuantity = decimal.NewFromInt(800)

var (
	// ErrLineNotFound is returned when a mutation targets a product absent from the cart.
	ErrLineNotFound = shared.NewValidationError("productId", "product is not in the cart")
	// ErrBelowMinimum rejects quantities smaller than the product increment.
	ErrBelowMinimum = shared.NewValidationError("quantity", "quantity is below the minimum order increment")
	// ErrInvalidQuantity rejects quantities that are not positive multiples of the increment.
	ErrInvalidQuantity = shared.NewValidationError("quantity", "quantity must be a positive multiple of the minimum order increment")
)

// Line is one product/quantity pairing with a snapshot of the product.
type Line struct {
	ProductID         string          `json:"productId"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	Category          string          `json:"category,omitempty"`
	ImageURL          string          `json:"image,omitempty"`
	Price             decimal.Decimal `json:"price"`
	MinOrderIncrement decimal.Decimal `json:"minOrder"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// Snapshot captures the product fields a line carries.
func Snapshot(p catalog.Product, qty decimal.Decimal) Line {
	return Line{
		ProductID:         p.ID,
		Name:              p.Name,
		Unit:              p.Unit,
		Category:          string(p.Category),
		ImageURL:          p.ImageURL,
		Price:             p.Price,
		MinOrderIncrement: p.MinOrderIncrement,
		Quantity:          qty,
	}
}

// Amount is price times quantity.
func (l Line) Amount() decimal.Decimal {
	return l.Price.Mul(l.Quantity)
}

// ValidQuantity reports whether qty is an accepted quantity for the line.
func (l Line) ValidQuantity(qty decimal.Decimal) bool {
	return validQuantity(qty, l.MinOrderIncrement)
}

func validQuantity(qty, increment decimal.Decimal) bool {
	if !increment.IsPositive() || qty.LessThan(increment) {
		return false
	}
	return qty.Mod(increment).IsZero()
}

// Cart is an ordered set of lines keyed by product id.
type Cart struct {
	lines []Line
}

// New builds a cart from lines. Lines sharing a product id are merged.
func New(lines ...Line) Cart {
	c := Cart{}
	for _, l := range lines {
		if i := c.index(l.ProductID); i >= 0 {
			c.lines[i].Quantity = c.lines[i].Quantity.Add(l.Quantity)
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}

// Lines returns a copy of the cart lines in insertion order.
func (c Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c Cart) Len() int { return len(c.lines) }

func (c Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Line returns the line for productID.
func (c Cart) Line(productID string) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddLine adds qty of product, accumulating onto an existing line. The
// increment rule is not enforced here; see CheckLines.
func (c Cart) AddLine(p catalog.Product, qty decimal.Decimal) (Cart, error) {
	if !qty.IsPositive() {
		return c, ErrInvalidQuantity
	}
	next := c.Lines()
	if i := c.index(p.ID); i >= 0 {
		next[i].Quantity = next[i].Quantity.Add(qty)
		return Cart{lines: next}, nil
	}
	return Cart{lines: append(next, Snapshot(p, qty))}, nil
}

// SetLineQuantity replaces a line quantity. Zero removes the line. On error
// the receiver is returned unchanged.
func (c Cart) SetLineQuantity(productID string, qty decimal.Decimal) (Cart, error) {
	if qty.IsZero() {
		return c.RemoveLine(productID), nil
	}
	if qty.IsNegative() {
		return c, ErrInvalidQuantity
	}
	i := c.index(productID)
	if i < 0 {
		return c, ErrLineNotFound
	}
	line := c.lines[i]
	if qty.LessThan(line.MinOrderIncrement) {
		return c, ErrBelowMinimum
	}
	if !line.ValidQuantity(qty) {
		return c, ErrInvalidQuantity
	}
	next := c.Lines()
	next[i].Quantity = qty
	return Cart{lines: next}, nil
}

// Increase adds one increment to the line.
func (c Cart) Increase(productID string) (Cart, error) {
	line, ok := c.Line(productID)
	if !ok {
		return c, ErrLineNotFound
	}
	return c.SetLineQuantity(productID, line.Quantity.Add(line.MinOrderIncrement))
}

// Decrease removes one increment from the line but never drops below a
// single increment.
func (c Cart) Decrease(productID string) (Cart, error) {
	line, ok := c.Line(productID)
	if !ok {
		return c, ErrLineNotFound
	}
	qty := line.Quantity.Sub(line.MinOrderIncrement)
	if qty.LessThan(line.MinOrderIncrement) {
		return c, nil
	}
	return c.SetLineQuantity(productID, qty)
}

// RemoveLine drops the line for productID if present.
func (c Cart) RemoveLine(productID string) Cart {
	next := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		if l.ProductID != productID {
			next = append(next, l)
		}
	}
	return Cart{lines: next}
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart {
	return Cart{}
}

// TotalAmount is the sum of price times quantity over all lines.
func (c Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Amount())
	}
	return total
}

// TotalQuantity sums raw quantities across lines, mixing units.
func (c Cart) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Quantity)
	}
	return total
}

// OverLimit reports whether TotalQuantity exceeds MaxTotalQuantity.
func (c Cart) OverLimit() bool {
	return c.TotalQuantity().GreaterThan(MaxTotalQuantity)
}

// CheckLines verifies every quantity is a positive multiple of its increment.
func (c Cart) CheckLines() error {
	for _, l := range c.lines {
		if !l.ValidQuantity(l.Quantity) {
			return ErrInvalidQuantity
		}
	}
	return nil
}
