package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/optbazar/optbazar/internal/jobs"
	"github.com/optbazar/optbazar/internal/orders"
)

const staleScanLimit = 500

// OrderLister reads orders for the scan.
type OrderLister interface {
	List(ctx context.Context, opts orders.ListOptions) ([]orders.Order, error)
}

// StaleOrderScanJob reports accepted orders that have waited longer than the
// configured age.
type StaleOrderScanJob struct {
	Orders  OrderLister
	MaxAge  time.Duration
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewStaleOrderScanJob wires dependencies for the scan handler.
func NewStaleOrderScanJob(lister OrderLister, maxAge time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *StaleOrderScanJob {
	return &StaleOrderScanJob{
		Orders:  lister,
		MaxAge:  maxAge,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskStaleOrderScan tasks.
func (j *StaleOrderScanJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Orders == nil {
		return errors.New("stale order scan: handler not configured")
	}
	var payload StaleOrderScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	age := payload.OlderThan
	if age <= 0 {
		age = j.MaxAge
	}
	if age <= 0 {
		age = 24 * time.Hour
	}

	tracker := j.metrics().Track(TaskStaleOrderScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	stale, err := j.Scan(ctx, age)
	if err != nil {
		j.logger().Error("stale order scan", slog.Any("error", err))
		return err
	}
	j.metrics().SetStaleOrders(len(stale))
	for _, o := range stale {
		j.logger().Warn("order waiting for processing",
			slog.String("order_id", o.ID),
			slog.Time("created_at", o.CreatedAt),
			slog.String("phone", o.Customer.Phone),
		)
	}
	return nil
}

// Scan returns accepted orders created more than age ago, oldest first.
func (j *StaleOrderScanJob) Scan(ctx context.Context, age time.Duration) ([]orders.Order, error) {
	return j.Orders.List(ctx, orders.ListOptions{
		Ascending:     true,
		Status:        orders.StatusAccepted,
		CreatedBefore: j.now().Add(-age),
		Limit:         staleScanLimit,
	})
}

func (j *StaleOrderScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *StaleOrderScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *StaleOrderScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
