package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/optbazar/optbazar/internal/shared"
)

// Service serves order reads and status changes.
type Service struct {
	repo    Repository
	machine *StatusMachine
	metrics Metrics
}

// NewService builds Service. metrics may be nil.
func NewService(repo Repository, machine *StatusMachine, metrics Metrics) *Service {
	if machine == nil {
		machine = NewStatusMachine(PolicyStrict)
	}
	return &Service{repo: repo, machine: machine, metrics: metrics}
}

// List returns orders, newest first unless opts.Ascending is set.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Order, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, opts)
}

// Get returns an order or shared.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Order{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// ChangeStatus moves an order to target under the configured policy. Only
// status and updated_at are written.
func (s *Service) ChangeStatus(ctx context.Context, id, target string) (Order, error) {
	status, err := ParseStatus(target)
	if err != nil {
		return Order{}, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	next, err := s.machine.Transition(current, status)
	if err != nil {
		return Order{}, err
	}
	if next.Status == current.Status {
		return current, nil
	}
	if err := s.repo.UpdateStatus(ctx, next.ID, next.Status, next.UpdatedAt); err != nil {
		return Order{}, err
	}
	if s.metrics != nil {
		s.metrics.StatusChanged(string(current.Status), string(next.Status))
	}
	return next, nil
}
