package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optbazar/optbazar/internal/shared"
)

// DefaultUnit is applied when a product is saved without a unit label.
const DefaultUnit = "кг"

// Category groups products on the storefront. Unknown values are accepted.
type Category string

const (
	CategoryVegetables Category = "vegetables"
	CategoryFruits     Category = "fruits"
	CategorySpices     Category = "spices"
)

// Known reports whether c is one of the storefront categories.
func (c Category) Known() bool {
	switch c {
	case CategoryVegetables, CategoryFruits, CategorySpices:
		return true
	}
	return false
}

// Product is a catalog entry sold in multiples of MinOrderIncrement.
type Product struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Category          Category        `json:"category"`
	Price             decimal.Decimal `json:"price"`
	MinOrderIncrement decimal.Decimal `json:"minOrder"`
	Unit              string          `json:"unit"`
	Description       string          `json:"description"`
	ShelfLife         string          `json:"shelfLife"`
	Allergens         string          `json:"allergens"`
	ImageURL          string          `json:"image"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Input carries the editable product fields.
type Input struct {
	Name              string          `json:"name" validate:"required,max=200"`
	Category          Category        `json:"category" validate:"max=64"`
	Price             decimal.Decimal `json:"price"`
	MinOrderIncrement decimal.Decimal `json:"minOrder"`
	Unit              string          `json:"unit" validate:"max=32"`
	Description       string          `json:"description"`
	ShelfLife         string          `json:"shelfLife"`
	Allergens         string          `json:"allergens"`
	ImageURL          string          `json:"image" validate:"omitempty,max=2048"`
}

// Normalize trims text fields and fills the default unit.
func (in Input) Normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = Category(strings.ToLower(strings.TrimSpace(string(in.Category))))
	in.Unit = strings.TrimSpace(in.Unit)
	if in.Unit == "" {
		in.Unit = DefaultUnit
	}
	in.Description = strings.TrimSpace(in.Description)
	in.ShelfLife = strings.TrimSpace(in.ShelfLife)
	in.Allergens = strings.TrimSpace(in.Allergens)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

// Validate enforces the product invariants.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return shared.NewValidationError("name", "name is required")
	}
	if in.Price.IsNegative() {
		return shared.NewValidationError("price", "price must be zero or greater")
	}
	if !in.MinOrderIncrement.IsPositive() {
		return shared.NewValidationError("minOrder", "minimum order increment must be greater than zero")
	}
	return nil
}

func (in Input) apply(p Product) Product {
	p.Name = in.Name
	p.Category = in.Category
	p.Price = in.Price
	p.MinOrderIncrement = in.MinOrderIncrement
	p.Unit = in.Unit
	p.Description = in.Description
	p.ShelfLife = in.ShelfLife
	p.Allergens = in.Allergens
	p.ImageURL = in.ImageURL
	return p
}

// Filter narrows List results.
type Filter struct {
	Category Category
	Search   string
}
