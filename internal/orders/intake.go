package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/optbazar/optbazar/internal/cart"
	"github.com/optbazar/optbazar/internal/catalog"
	"github.com/optbazar/optbazar/internal/shared"
)

// idempotencyModule namespaces submission keys in the idempotency store.
const idempotencyModule = "orders"

// CatalogReader resolves products referenced by submitted lines.
type CatalogReader interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

// Notifier is told about every persisted order.
type Notifier interface {
	NotifyOrderCreated(ctx context.Context, order Order) error
}

// IdempotencyGuard reserves submission keys.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key, module string) error
}

// Metrics receives order domain counters.
type Metrics interface {
	OrderSubmitted(source, outcome string)
	StatusChanged(from, to string)
}

// SubmittedItem is a client cart line in the same shape cart.Line encodes to.
// Snapshot fields the client omits are filled from the catalog.
type SubmittedItem struct {
	ProductID         string              `json:"productId"`
	Name              string              `json:"name"`
	Unit              string              `json:"unit"`
	Category          string              `json:"category,omitempty"`
	ImageURL          string              `json:"image,omitempty"`
	Price             decimal.NullDecimal `json:"price"`
	MinOrderIncrement decimal.NullDecimal `json:"minOrder"`
	Quantity          decimal.Decimal     `json:"quantity"`
}

// Submission is a checkout request from either intake channel.
type Submission struct {
	Items          []SubmittedItem `json:"items"`
	Customer       CustomerInfo    `json:"customer"`
	Comments       string          `json:"comments"`
	IdempotencyKey string          `json:"-"`
}

// ExternalSubmission arrives from the messaging-platform integration.
type ExternalSubmission struct {
	Submission
	ExternalUserID string `json:"externalUserId"`
	// SubmissionID is the producer's id for this checkout. Redeliveries
	// of the same checkout carry the same value.
	SubmissionID string `json:"submissionId"`
}

// Intake is the only write path for new orders.
type Intake struct {
	repo      Repository
	products  CatalogReader
	validator *Validator
	idem      IdempotencyGuard
	notifier  Notifier
	metrics   Metrics
	logger    *slog.Logger
	newID     func() string
}

// NewIntake wires the intake. idem, notifier and metrics are optional.
func NewIntake(repo Repository, products CatalogReader, idem IdempotencyGuard, notifier Notifier, metrics Metrics, logger *slog.Logger) *Intake {
	if logger == nil {
		logger = slog.Default()
	}
	return &Intake{
		repo:      repo,
		products:  products,
		validator: NewValidator(),
		idem:      idem,
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// SubmitWeb persists an order from the web checkout. Any external user id on
// the payload is discarded.
func (in *Intake) SubmitWeb(ctx context.Context, sub Submission) (Order, error) {
	sub.Customer.ExternalUserID = ""
	return in.submit(ctx, sub, SourceWeb)
}

// SubmitExternal persists an order from the messaging-platform channel.
func (in *Intake) SubmitExternal(ctx context.Context, sub ExternalSubmission) (Order, error) {
	id := strings.TrimSpace(sub.ExternalUserID)
	if id == "" {
		id = strings.TrimSpace(sub.Customer.ExternalUserID)
	}
	if id == "" {
		in.record(SourceExternal, "rejected")
		return Order{}, ErrMissingExternalUser
	}
	sub.Customer.ExternalUserID = id
	if strings.TrimSpace(sub.IdempotencyKey) == "" {
		sub.IdempotencyKey = sub.SubmissionID
	}
	return in.submit(ctx, sub.Submission, SourceExternal)
}

func (in *Intake) submit(ctx context.Context, sub Submission, source Source) (Order, error) {
	c, err := in.buildCart(ctx, sub.Items)
	if err != nil {
		in.record(source, "rejected")
		return Order{}, err
	}
	order, err := in.validator.Validate(c, sub.Customer, sub.Comments, source)
	if err != nil {
		in.record(source, "rejected")
		return Order{}, err
	}

	key := strings.TrimSpace(sub.IdempotencyKey)
	if key != "" && in.idem != nil {
		if err := in.idem.CheckAndInsert(ctx, key, idempotencyModule); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				in.record(source, "duplicate")
				return Order{}, ErrDuplicateSubmission
			}
			return Order{}, fmt.Errorf("orders: reserve idempotency key: %w", err)
		}
	}

	order.ID = in.newID()
	if err := in.repo.Create(ctx, order); err != nil {
		if key != "" && in.idem != nil {
			if derr := in.idem.Delete(ctx, key, idempotencyModule); derr != nil {
				in.logger.Warn("release idempotency key", slog.String("key", key), slog.Any("error", derr))
			}
		}
		in.record(source, "failed")
		return Order{}, fmt.Errorf("orders: persist order: %w", err)
	}
	in.record(source, "accepted")

	if in.notifier != nil {
		if err := in.notifier.NotifyOrderCreated(ctx, order); err != nil {
			in.logger.Warn("enqueue order notification", slog.String("order_id", order.ID), slog.Any("error", err))
		}
	}
	in.logger.Info("order accepted",
		slog.String("order_id", order.ID),
		slog.String("source", string(order.Source)),
		slog.String("total", order.TotalAmount.String()))
	return order, nil
}

func (in *Intake) buildCart(ctx context.Context, items []SubmittedItem) (cart.Cart, error) {
	lines := make([]cart.Line, 0, len(items))
	for i, item := range items {
		line, err := in.hydrate(ctx, i, item)
		if err != nil {
			return cart.Cart{}, err
		}
		lines = append(lines, line)
	}
	return cart.New(lines...), nil
}

func (in *Intake) hydrate(ctx context.Context, idx int, item SubmittedItem) (cart.Line, error) {
	field := fmt.Sprintf("items[%d]", idx)
	if !item.Quantity.IsPositive() {
		return cart.Line{}, shared.NewValidationError(field+".quantity", "quantity must be greater than zero")
	}
	line := cart.Line{
		ProductID: strings.TrimSpace(item.ProductID),
		Name:      strings.TrimSpace(item.Name),
		Unit:      strings.TrimSpace(item.Unit),
		Category:  strings.TrimSpace(item.Category),
		ImageURL:  strings.TrimSpace(item.ImageURL),
		Quantity:  item.Quantity,
	}
	if item.Price.Valid {
		line.Price = item.Price.Decimal
	}
	if item.MinOrderIncrement.Valid {
		line.MinOrderIncrement = item.MinOrderIncrement.Decimal
	}

	complete := line.Name != "" && item.Price.Valid && item.MinOrderIncrement.Valid
	if !complete {
		if line.ProductID == "" || in.products == nil {
			return cart.Line{}, shared.NewValidationError(field, "product snapshot is incomplete")
		}
		p, err := in.products.Get(ctx, line.ProductID)
		if errors.Is(err, shared.ErrNotFound) {
			return cart.Line{}, shared.NewValidationError(field+".productId", "product does not exist")
		}
		if err != nil {
			return cart.Line{}, fmt.Errorf("orders: load product %s: %w", line.ProductID, err)
		}
		if line.Name == "" {
			line.Name = p.Name
		}
		if line.Unit == "" {
			line.Unit = p.Unit
		}
		if !item.Price.Valid {
			line.Price = p.Price
		}
		if !item.MinOrderIncrement.Valid {
			line.MinOrderIncrement = p.MinOrderIncrement
		}
		if line.Category == "" {
			line.Category = string(p.Category)
		}
		if line.ImageURL == "" {
			line.ImageURL = p.ImageURL
		}
	}
	if line.Price.IsNegative() {
		return cart.Line{}, shared.NewValidationError(field+".price", "price must be zero or greater")
	}
	return line, nil
}

func (in *Intake) record(source Source, outcome string) {
	if in.metrics != nil {
		in.metrics.OrderSubmitted(string(source), outcome)
	}
}
