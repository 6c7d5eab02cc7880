// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/optbazar/optbazar/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrConflict):
		FieldProblem(w, http.StatusConflict, "Conflict", err.Error(), shared.FieldOf(err))
	case errors.Is(err, shared.ErrValidation):
		FieldProblem(w, http.StatusBadRequest, "Validation Failed", err.Error(), shared.FieldOf(err))
	case errors.Is(err, shared.ErrAuth), errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
