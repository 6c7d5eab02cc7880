// Package admin is the authenticated console surface: product edits and
// order status changes, each recorded in the audit log.
package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/optbazar/optbazar/internal/auth"
	"github.com/optbazar/optbazar/internal/catalog"
	"github.com/optbazar/optbazar/internal/orders"
	"github.com/optbazar/optbazar/internal/shared"
)

// CatalogService is the catalog surface the console may mutate.
type CatalogService interface {
	Create(ctx context.Context, input catalog.Input) (catalog.Product, error)
	Update(ctx context.Context, id string, input catalog.Input) (catalog.Product, error)
	Delete(ctx context.Context, id string) error
}

// OrderService is the order surface the console may use.
type OrderService interface {
	List(ctx context.Context, opts orders.ListOptions) ([]orders.Order, error)
	Get(ctx context.Context, id string) (orders.Order, error)
	ChangeStatus(ctx context.Context, id, target string) (orders.Order, error)
}

// Gateway gates console operations behind an authenticated principal.
type Gateway struct {
	catalog CatalogService
	orders  OrderService
	audit   shared.AuditRecorder
	logger  *slog.Logger
}

// NewGateway builds Gateway. audit may be nil.
func NewGateway(catalog CatalogService, orders OrderService, audit shared.AuditRecorder, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{catalog: catalog, orders: orders, audit: audit, logger: logger}
}

func principal(ctx context.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return auth.Principal{}, shared.ErrAuth
	}
	return p, nil
}

func (g *Gateway) CreateProduct(ctx context.Context, input catalog.Input) (catalog.Product, error) {
	p, err := principal(ctx)
	if err != nil {
		return catalog.Product{}, err
	}
	product, err := g.catalog.Create(ctx, input)
	if err != nil {
		return catalog.Product{}, err
	}
	g.record(ctx, p, "product.create", "product", product.ID, map[string]any{
		"name":  product.Name,
		"price": product.Price.String(),
	})
	return product, nil
}

func (g *Gateway) UpdateProduct(ctx context.Context, id string, input catalog.Input) (catalog.Product, error) {
	p, err := principal(ctx)
	if err != nil {
		return catalog.Product{}, err
	}
	product, err := g.catalog.Update(ctx, id, input)
	if err != nil {
		return catalog.Product{}, err
	}
	g.record(ctx, p, "product.update", "product", product.ID, map[string]any{
		"name":     product.Name,
		"price":    product.Price.String(),
		"minOrder": product.MinOrderIncrement.String(),
	})
	return product, nil
}

func (g *Gateway) DeleteProduct(ctx context.Context, id string) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := g.catalog.Delete(ctx, id); err != nil {
		return err
	}
	g.record(ctx, p, "product.delete", "product", id, nil)
	return nil
}

func (g *Gateway) ListOrders(ctx context.Context, opts orders.ListOptions) ([]orders.Order, error) {
	if _, err := principal(ctx); err != nil {
		return nil, err
	}
	return g.orders.List(ctx, opts)
}

func (g *Gateway) GetOrder(ctx context.Context, id string) (orders.Order, error) {
	if _, err := principal(ctx); err != nil {
		return orders.Order{}, err
	}
	return g.orders.Get(ctx, id)
}

// ChangeOrderStatus is the only way an order is modified after intake.
func (g *Gateway) ChangeOrderStatus(ctx context.Context, id, target string) (orders.Order, error) {
	p, err := principal(ctx)
	if err != nil {
		return orders.Order{}, err
	}
	order, err := g.orders.ChangeStatus(ctx, id, target)
	if err != nil {
		return orders.Order{}, err
	}
	g.record(ctx, p, "order.status", "order", order.ID, map[string]any{"status": string(order.Status)})
	return order, nil
}

func (g *Gateway) record(ctx context.Context, p auth.Principal, action, entity, id string, meta map[string]any) {
	if g.audit == nil {
		return
	}
	entry := shared.AuditLog{
		Actor:    p.Username,
		Action:   action,
		Entity:   entity,
		EntityID: id,
		Meta:     meta,
		At:       time.Now().UTC(),
	}
	if err := g.audit.Record(ctx, entry); err != nil {
		g.logger.Warn("audit record", slog.String("action", action), slog.String("entity_id", id), slog.Any("error", err))
	}
}
