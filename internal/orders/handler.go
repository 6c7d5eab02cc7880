package orders

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/optbazar/optbazar/internal/platform/httpx"
	"github.com/optbazar/optbazar/internal/shared"
)

// IdempotencyHeader carries the client supplied submission key.
const IdempotencyHeader = "Idempotency-Key"

// Handler exposes public order submission.
type Handler struct {
	logger *slog.Logger
	intake *Intake
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, intake *Intake) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, intake: intake}
}

// MountRoutes registers order routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.submit)
}

type submitRequest struct {
	Submission
	Source         Source `json:"source"`
	ExternalUserID string `json:"externalUserId"`
	SubmissionID   string `json:"submissionId"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "malformed JSON"))
		return
	}
	req.IdempotencyKey = r.Header.Get(IdempotencyHeader)

	var (
		order Order
		err   error
	)
	switch req.Source {
	case "", SourceWeb:
		order, err = h.intake.SubmitWeb(r.Context(), req.Submission)
	case SourceExternal:
		order, err = h.intake.SubmitExternal(r.Context(), ExternalSubmission{
			Submission:     req.Submission,
			ExternalUserID: req.ExternalUserID,
			SubmissionID:   req.SubmissionID,
		})
	default:
		err = ErrInvalidSource
	}
	if err != nil {
		if !errors.Is(err, shared.ErrValidation) && !errors.Is(err, shared.ErrConflict) {
			h.logger.Error("submit order", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}
