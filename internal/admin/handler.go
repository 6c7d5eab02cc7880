package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/optbazar/optbazar/internal/catalog"
	"github.com/optbazar/optbazar/internal/orders"
	"github.com/optbazar/optbazar/internal/platform/httpx"
	"github.com/optbazar/optbazar/internal/shared"
)

// Handler serves /api/admin. Callers must mount it behind auth.Middleware.
type Handler struct {
	logger    *slog.Logger
	gateway   *Gateway
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, gateway *Gateway) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, gateway: gateway, validator: httpx.NewValidator()}
}

// MountRoutes registers admin routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.createProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}/status", h.changeStatus)
	})
}

type orderView struct {
	orders.Order
	StatusLabel string `json:"statusLabel"`
}

func (h *Handler) view(r *http.Request, o orders.Order) orderView {
	return orderView{Order: o, StatusLabel: orders.LabelForHeader(o.Status, r.Header.Get("Accept-Language"))}
}

func (h *Handler) decodeProduct(w http.ResponseWriter, r *http.Request) (catalog.Input, bool) {
	var in catalog.Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "malformed JSON"))
		return in, false
	}
	if err := httpx.ValidateStruct(h.validator, in); err != nil {
		httpx.RespondError(w, err)
		return in, false
	}
	return in, true
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product, err := h.gateway.CreateProduct(r.Context(), in)
	if err != nil {
		h.fail(w, "create product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product, err := h.gateway.UpdateProduct(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, "update product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.gateway.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := orders.ListOptions{Status: orders.Status(q.Get("status"))}
	switch strings.ToLower(q.Get("order")) {
	case "", "desc":
	case "asc":
		opts.Ascending = true
	default:
		httpx.RespondError(w, shared.NewValidationError("order", "must be asc or desc"))
		return
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			httpx.RespondError(w, shared.NewValidationError("limit", "must be between 1 and 500"))
			return
		}
		opts.Limit = limit
	}
	list, err := h.gateway.ListOrders(r.Context(), opts)
	if err != nil {
		h.fail(w, "list orders", err)
		return
	}
	views := make([]orderView, 0, len(list))
	for _, o := range list {
		views = append(views, h.view(r, o))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.gateway.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(r, order))
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "malformed JSON"))
		return
	}
	if err := httpx.ValidateStruct(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.gateway.ChangeOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, "change order status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(r, order))
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, shared.ErrValidation) && !errors.Is(err, shared.ErrNotFound) &&
		!errors.Is(err, shared.ErrConflict) && !errors.Is(err, shared.ErrAuth) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
