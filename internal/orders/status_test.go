package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acceptedOrder(t *testing.T) Order {
	t.Helper()
	order, err := NewValidator().Validate(scenarioCart(t), validCustomer(), "", SourceWeb)
	require.NoError(t, err)
	order.ID = "order-1"
	return order
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStatus("Shipped")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = ParseStatus("accepted")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p)
	p, err = ParsePolicy("FREE")
	require.NoError(t, err)
	assert.Equal(t, PolicyFree, p)
	_, err = ParsePolicy("chaos")
	assert.Error(t, err)
}

// Free policy keeps only the enum closure: any status may follow any other.
func TestFreePolicyAllowsArbitraryReassignment(t *testing.T) {
	m := NewStatusMachine(PolicyFree)
	order := acceptedOrder(t)
	assert.Equal(t, StatusAccepted, order.Status)

	completed, err := m.Transition(order, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)

	processing, err := m.Transition(completed, StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, processing.Status)

	_, err = m.Transition(processing, Status("Lost"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStrictPolicyAdjacency(t *testing.T) {
	m := NewStatusMachine(PolicyStrict)
	allowed := map[Status]map[Status]bool{
		StatusAccepted:   {StatusProcessing: true, StatusCancelled: true},
		StatusProcessing: {StatusInDelivery: true, StatusCancelled: true},
		StatusInDelivery: {StatusCompleted: true, StatusCancelled: true},
		StatusCompleted:  {},
		StatusCancelled:  {},
	}
	for _, from := range Statuses {
		for _, to := range Statuses {
			want := from == to || allowed[from][to]
			assert.Equal(t, want, m.Allowed(from, to), "%s -> %s", from, to)
		}
	}

	order := acceptedOrder(t)
	_, err := m.Transition(order, StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionPreservesFrozenFields(t *testing.T) {
	m := NewStatusMachine(PolicyFree)
	order := acceptedOrder(t)
	m.now = func() time.Time { return order.CreatedAt.Add(time.Hour) }

	current := order
	for _, s := range []Status{StatusProcessing, StatusInDelivery, StatusCompleted, StatusCancelled, StatusAccepted} {
		next, err := m.Transition(current, s)
		require.NoError(t, err)
		assert.Equal(t, order.Items, next.Items)
		assert.True(t, order.TotalAmount.Equal(next.TotalAmount))
		assert.Equal(t, order.Customer, next.Customer)
		assert.Equal(t, order.CreatedAt, next.CreatedAt)
		current = next
	}
	assert.Equal(t, order.CreatedAt.Add(time.Hour), current.UpdatedAt)
}

func TestTransitionSameStatusIsNoop(t *testing.T) {
	order := acceptedOrder(t)
	next, err := NewStatusMachine(PolicyStrict).Transition(order, StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, order.UpdatedAt, next.UpdatedAt)
}

func TestTransitionDoesNotAliasItems(t *testing.T) {
	order := acceptedOrder(t)
	next, err := NewStatusMachine(PolicyStrict).Transition(order, StatusProcessing)
	require.NoError(t, err)
	next.Items[0].Name = "changed"
	assert.NotEqual(t, "changed", order.Items[0].Name)
}
