package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optbazar/optbazar/internal/catalog"
)

func TestParseBulk(t *testing.T) {
	products := []catalog.Product{cucumbers(), apples()}
	text := "Огурцы свежие:50\n\nяблоки:40 кг\nперец:10\nбез двоеточия\nЯблоки Гала:25\nОгурцы:1,5\n"

	res := ParseBulk(text, products)

	require.Len(t, res.Lines, 2)
	assert.Equal(t, "p-cucumber", res.Lines[0].ProductID)
	assert.True(t, res.Lines[0].Quantity.Equal(dec(50)))
	assert.Equal(t, "p-apple", res.Lines[1].ProductID)

	require.Len(t, res.Failures, 4)
	assert.Equal(t, BulkFailure{Row: 4, Input: "перец:10", Reason: ReasonUnknownProduct}, res.Failures[0])
	assert.Equal(t, ReasonInvalidFormat, res.Failures[1].Reason)
	assert.Equal(t, 5, res.Failures[1].Row)
	assert.Equal(t, ReasonInvalidQuantity, res.Failures[2].Reason)
	assert.Equal(t, ReasonInvalidQuantity, res.Failures[3].Reason)

	c := res.Cart()
	assert.True(t, c.TotalAmount().Equal(dec(7300)))
}

func TestParseBulkEmptyInput(t *testing.T) {
	res := ParseBulk("   \n", nil)
	assert.Empty(t, res.Lines)
	assert.Empty(t, res.Failures)
}
