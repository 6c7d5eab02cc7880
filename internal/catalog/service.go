package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/optbazar/optbazar/internal/platform/cache"
	"github.com/optbazar/optbazar/internal/shared"
)

// Service coordinates catalog reads and writes.
type Service struct {
	repo   Repository
	cache  *listCache
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service. store may be nil to disable list caching.
func NewService(repo Repository, store *cache.Versioned, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		cache:  newListCache(store, logger),
		logger: logger,
		now:    time.Now,
	}
}

// List returns products matching filter, ordered by name.
func (s *Service) List(ctx context.Context, filter Filter) ([]Product, error) {
	return s.cache.list(ctx, filter, func(ctx context.Context) ([]Product, error) {
		return s.repo.List(ctx, filter)
	})
}

// Get returns a product or shared.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if !validID(id) {
		return Product{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create validates input and stores a new product.
func (s *Service) Create(ctx context.Context, input Input) (Product, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return Product{}, err
	}
	p := input.apply(Product{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	})
	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, err
	}
	s.cache.invalidate(ctx)
	return p, nil
}

// Update replaces the editable fields of an existing product. Concurrent
// updates are last-write-wins.
func (s *Service) Update(ctx context.Context, id string, input Input) (Product, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return Product{}, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p := input.apply(current)
	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	s.cache.invalidate(ctx)
	return p, nil
}

// Delete permanently removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return shared.ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.invalidate(ctx)
	return nil
}

// Seed inserts the sample assortment into an empty catalog.
func (s *Service) Seed(ctx context.Context) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("catalog: seed count: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, in := range sampleProducts() {
		p, err := s.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("catalog: seed %q: %w", in.Name, err)
		}
		s.logger.Info("catalog sample product created", slog.String("id", p.ID), slog.String("name", p.Name))
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
