package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/optbazar/optbazar/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// EventPublisher forwards announcements to an external bus.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// OrderCreatedJob announces new orders to managers. Without a publisher the
// announcement is only logged.
type OrderCreatedJob struct {
	Publisher EventPublisher
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewOrderCreatedJob wires dependencies for the announcement handler.
func NewOrderCreatedJob(publisher EventPublisher, logger *slog.Logger, metrics *jobmetrics.Metrics) *OrderCreatedJob {
	return &OrderCreatedJob{Publisher: publisher, Logger: logger, Metrics: metrics}
}

// Handle processes TaskOrderCreated tasks.
func (j *OrderCreatedJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil {
		return errors.New("order created: handler not configured")
	}
	var payload OrderCreatedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.OrderID == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskOrderCreated)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("order_id", payload.OrderID), slog.String("source", payload.Source))
	logger.Info("new order",
		slog.String("customer", payload.CustomerName),
		slog.String("phone", payload.Phone),
		slog.String("total", payload.TotalAmount),
		slog.Int("items", payload.ItemCount),
	)
	if j.Publisher == nil {
		return nil
	}
	if err := j.Publisher.Publish(ctx, payload.OrderID, payload); err != nil {
		logger.Error("publish order event", slog.Any("error", err))
		return err
	}
	return nil
}

func (j *OrderCreatedJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *OrderCreatedJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
