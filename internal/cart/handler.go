package cart

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/optbazar/optbazar/internal/catalog"
	"github.com/optbazar/optbazar/internal/platform/httpx"
	"github.com/optbazar/optbazar/internal/shared"
)

// ProductLister is the catalog read the bulk parser needs.
type ProductLister interface {
	List(ctx context.Context, filter catalog.Filter) ([]catalog.Product, error)
}

// Handler exposes stateless cart helpers. The cart itself lives on the client.
type Handler struct {
	logger    *slog.Logger
	products  ProductLister
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, products ProductLister) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, products: products, validator: httpx.NewValidator()}
}

// MountRoutes registers cart routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/quote", h.quote)
	r.Post("/bulk", h.bulk)
}

// Quote summarises a cart for display.
type Quote struct {
	Lines         []Line          `json:"lines"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
	MaxQuantity   decimal.Decimal `json:"maxQuantity"`
	OverLimit     bool            `json:"overLimit"`
	LinesValid    bool            `json:"linesValid"`
}

// QuoteOf computes the derived totals for c.
func QuoteOf(c Cart) Quote {
	return Quote{
		Lines:         c.Lines(),
		TotalAmount:   c.TotalAmount(),
		TotalQuantity: c.TotalQuantity(),
		MaxQuantity:   MaxTotalQuantity,
		OverLimit:     c.OverLimit(),
		LinesValid:    c.CheckLines() == nil,
	}
}

type quoteRequest struct {
	Lines []Line `json:"lines"`
}

type bulkRequest struct {
	Text string `json:"text" validate:"required,max=20000"`
}

type bulkResponse struct {
	BulkResult
	Quote Quote `json:"quote"`
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "malformed JSON"))
		return
	}
	httpx.JSON(w, http.StatusOK, QuoteOf(New(req.Lines...)))
}

func (h *Handler) bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "malformed JSON"))
		return
	}
	if err := httpx.ValidateStruct(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	products, err := h.products.List(r.Context(), catalog.Filter{})
	if err != nil {
		h.logger.Error("bulk list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	res := ParseBulk(req.Text, products)
	httpx.JSON(w, http.StatusOK, bulkResponse{BulkResult: res, Quote: QuoteOf(res.Cart())})
}
