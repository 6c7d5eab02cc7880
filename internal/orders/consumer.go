package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/optbazar/optbazar/internal/shared"
)

// MessageReader is the subset of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer feeds external-channel orders from Kafka into the intake.
type Consumer struct {
	reader   MessageReader
	intake   *Intake
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
}

// NewConsumer builds a Consumer over reader.
func NewConsumer(reader MessageReader, intake *Intake, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{reader: reader, intake: intake, logger: logger, attempts: 3, backoff: 2 * time.Second}
}

// Run consumes until ctx is cancelled. Rejected messages are logged and
// committed so they are not redelivered.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("kafka fetch", slog.Any("error", err))
			if !sleepCtx(ctx, c.backoff) {
				return nil
			}
			continue
		}
		c.handle(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("kafka commit", slog.Any("error", err), slog.Int64("offset", msg.Offset))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	log := c.logger.With(slog.String("topic", msg.Topic), slog.Int("partition", msg.Partition), slog.Int64("offset", msg.Offset))

	var sub ExternalSubmission
	if err := json.Unmarshal(msg.Value, &sub); err != nil {
		log.Warn("external order decode", slog.Any("error", err))
		return
	}
	sub.IdempotencyKey = submissionKey(msg, sub)

	for attempt := 1; ; attempt++ {
		order, err := c.intake.SubmitExternal(ctx, sub)
		switch {
		case err == nil:
			log.Info("external order accepted", slog.String("order_id", order.ID))
			return
		case errors.Is(err, shared.ErrValidation), errors.Is(err, ErrDuplicateSubmission):
			log.Warn("external order rejected", slog.String("field", shared.FieldOf(err)), slog.Any("error", err))
			return
		case attempt >= c.attempts:
			log.Error("external order dropped", slog.Int("attempts", attempt), slog.Any("error", err))
			return
		}
		log.Warn("external order retry", slog.Int("attempt", attempt), slog.Any("error", err))
		if !sleepCtx(ctx, c.backoff) {
			return
		}
	}
}

// submissionKey picks the idempotency key for a message. The partition key
// identifies the customer, not the checkout, so it is never used.
func submissionKey(msg kafka.Message, sub ExternalSubmission) string {
	if id := strings.TrimSpace(sub.SubmissionID); id != "" {
		return id
	}
	for _, h := range msg.Headers {
		if strings.EqualFold(h.Key, IdempotencyHeader) {
			return strings.TrimSpace(string(h.Value))
		}
	}
	return ""
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
