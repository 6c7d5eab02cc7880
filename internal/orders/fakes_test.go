package orders

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/optbazar/optbazar/internal/catalog"
	"github.com/optbazar/optbazar/internal/shared"
)

type memoryRepository struct {
	mu        sync.Mutex
	orders    map[string]Order
	createErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{orders: map[string]Order{}}
}

func (m *memoryRepository) Create(ctx context.Context, o Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[o.ID] = o.clone()
	return nil
}

func (m *memoryRepository) Get(ctx context.Context, id string) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, shared.ErrNotFound
	}
	return o.clone(), nil
}

func (m *memoryRepository) List(ctx context.Context, opts ListOptions) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		if opts.Status != "" && o.Status != opts.Status {
			continue
		}
		if !opts.CreatedBefore.IsZero() && !o.CreatedAt.Before(opts.CreatedBefore) {
			continue
		}
		out = append(out, o.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if opts.Ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memoryRepository) UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	m.orders[id] = o
	return nil
}

type catalogStub map[string]catalog.Product

func (c catalogStub) Get(ctx context.Context, id string) (catalog.Product, error) {
	p, ok := c[id]
	if !ok {
		return catalog.Product{}, shared.ErrNotFound
	}
	return p, nil
}

type notifierStub struct {
	mu     sync.Mutex
	orders []Order
	err    error
}

func (n *notifierStub) NotifyOrderCreated(ctx context.Context, o Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o)
	return n.err
}

type metricsStub struct {
	mu          sync.Mutex
	submissions map[string]int
	transitions map[string]int
}

func newMetricsStub() *metricsStub {
	return &metricsStub{submissions: map[string]int{}, transitions: map[string]int{}}
}

func (m *metricsStub) OrderSubmitted(source, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[source+"/"+outcome]++
}

func (m *metricsStub) StatusChanged(from, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[from+"->"+to]++
}

var errStorageDown = errors.New("storage down")
