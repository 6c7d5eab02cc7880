package orders

import (
	"fmt"
	"strings"
	"time"
)

// Policy selects how strictly status changes are checked.
type Policy string

const (
	// PolicyFree allows any status to be assigned from any other.
	PolicyFree Policy = "free"
	// PolicyStrict follows the fulfillment graph and freezes terminal states.
	PolicyStrict Policy = "strict"
)

// ParsePolicy reads a policy name. Empty selects PolicyStrict.
func ParsePolicy(v string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(v))) {
	case "", PolicyStrict:
		return PolicyStrict, nil
	case PolicyFree:
		return PolicyFree, nil
	}
	return "", fmt.Errorf("orders: unknown status policy %q", v)
}

var strictTransitions = map[Status][]Status{
	StatusAccepted:   {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusInDelivery, StatusCancelled},
	StatusInDelivery: {StatusCompleted, StatusCancelled},
}

// ParseStatus converts raw input into a Status. Matching is exact apart from
// surrounding whitespace.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.TrimSpace(v))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// StatusMachine applies status changes under a Policy.
type StatusMachine struct {
	policy Policy
	now    func() time.Time
}

// NewStatusMachine builds a machine. Unknown policies fall back to strict.
func NewStatusMachine(policy Policy) *StatusMachine {
	if policy != PolicyFree {
		policy = PolicyStrict
	}
	return &StatusMachine{policy: policy, now: time.Now}
}

func (m *StatusMachine) Policy() Policy { return m.policy }

// Allowed reports whether from may move to to.
func (m *StatusMachine) Allowed(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	if from == to || m.policy == PolicyFree {
		return true
	}
	for _, next := range strictTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of o with the target status. Assigning the
// current status is a no-op that returns o untouched.
func (m *StatusMachine) Transition(o Order, target Status) (Order, error) {
	if !target.Valid() {
		return o, ErrInvalidStatus
	}
	if o.Status == target {
		return o, nil
	}
	if !m.Allowed(o.Status, target) {
		return o, fmt.Errorf("%s -> %s: %w", o.Status, target, ErrInvalidTransition)
	}
	next := o.clone()
	next.Status = target
	next.UpdatedAt = m.now().UTC().Truncate(time.Millisecond)
	return next, nil
}
