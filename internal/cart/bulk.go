package cart

import (
	"bufio"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/optbazar/optbazar/internal/catalog"
)

// Bulk parse failure reasons.
const (
	ReasonInvalidFormat   = "invalid format"
	ReasonUnknownProduct  = "unknown product"
	ReasonInvalidQuantity = "invalid quantity"
)

// BulkFailure describes an input row that could not be turned into a line.
type BulkFailure struct {
	Row    int    `json:"row"`
	Input  string `json:"input"`
	Reason string `json:"reason"`
}

// BulkResult is the outcome of ParseBulk.
type BulkResult struct {
	Lines    []Line        `json:"lines"`
	Failures []BulkFailure `json:"failures"`
}

// Cart folds the parsed lines into a cart.
func (r BulkResult) Cart() Cart {
	return New(r.Lines...)
}

// ParseBulk reads one "name:quantity [unit]" entry per row and resolves each
// name against products. Blank rows are skipped.
func ParseBulk(text string, products []catalog.Product) BulkResult {
	res := BulkResult{Lines: []Line{}, Failures: []BulkFailure{}}
	scanner := bufio.NewScanner(strings.NewReader(text))
	row := 0
	for scanner.Scan() {
		row++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		fail := func(reason string) {
			res.Failures = append(res.Failures, BulkFailure{Row: row, Input: raw, Reason: reason})
		}

		name, rest, ok := strings.Cut(raw, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			fail(ReasonInvalidFormat)
			continue
		}
		product, found := matchProduct(name, products)
		if !found {
			fail(ReasonUnknownProduct)
			continue
		}
		qty, ok := parseQuantity(rest)
		if !ok || !validQuantity(qty, product.MinOrderIncrement) {
			fail(ReasonInvalidQuantity)
			continue
		}
		res.Lines = append(res.Lines, Snapshot(product, qty))
	}
	return res
}

func matchProduct(name string, products []catalog.Product) (catalog.Product, bool) {
	needle := strings.ToLower(name)
	for _, p := range products {
		if strings.ToLower(p.Name) == needle {
			return p, true
		}
	}
	for _, p := range products {
		hay := strings.ToLower(p.Name)
		if strings.HasPrefix(hay, needle) || strings.HasPrefix(needle, hay) {
			return p, true
		}
	}
	return catalog.Product{}, false
}

// parseQuantity reads the leading number, accepting a comma decimal separator.
// Any trailing unit label is ignored.
func parseQuantity(s string) (decimal.Decimal, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return decimal.Decimal{}, false
	}
	qty, err := decimal.NewFromString(strings.ReplaceAll(fields[0], ",", "."))
	if err != nil || !qty.IsPositive() {
		return decimal.Decimal{}, false
	}
	return qty, true
}
