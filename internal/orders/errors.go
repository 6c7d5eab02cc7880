package orders

import (
	"fmt"

	"github.com/optbazar/optbazar/internal/cart"
	"github.com/optbazar/optbazar/internal/shared"
)

var (
	// ErrEmptyCart rejects submissions without lines.
	ErrEmptyCart = shared.NewValidationError("items", "cart is empty")
	// ErrPhoneFormat rejects a missing or malformed phone number.
	ErrPhoneFormat = shared.NewValidationError("phone", "phone number is missing or malformed")
	// ErrMissingAddress rejects a blank delivery address.
	ErrMissingAddress = shared.NewValidationError("address", "delivery address is required")
	// ErrWeightLimit rejects carts whose total quantity exceeds the ceiling.
	ErrWeightLimit = shared.NewValidationError("items", "total quantity exceeds the order limit")
	// ErrInvalidQuantity rejects lines that break the increment rule.
	ErrInvalidQuantity = cart.ErrInvalidQuantity
	// ErrInvalidStatus rejects values outside the status enum.
	ErrInvalidStatus = shared.NewValidationError("status", "unknown order status")
	// ErrInvalidSource rejects unknown intake channels.
	ErrInvalidSource = shared.NewValidationError("source", "unknown order source")
	// ErrMissingExternalUser rejects external submissions without a channel user id.
	ErrMissingExternalUser = shared.NewValidationError("externalUserId", "external channel user id is required")

	// ErrInvalidTransition is returned when the status policy forbids a move.
	ErrInvalidTransition = fmt.Errorf("orders: status transition not allowed: %w", shared.ErrConflict)
	// ErrDuplicateSubmission is returned when an idempotency key was already used.
	ErrDuplicateSubmission = fmt.Errorf("orders: duplicate submission: %w", shared.ErrConflict)
)
