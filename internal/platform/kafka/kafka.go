package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Client holds the broker list parsed from KAFKA_BROKERS.
type Client struct {
	Brokers []string
}

// NewClient parses a comma separated broker list. An empty list disables Kafka.
func NewClient(brokersCSV string) *Client {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers}
}

func (c *Client) Enabled() bool {
	return c != nil && len(c.Brokers) > 0
}

func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// NewReader returns a consumer-group reader. Offsets are committed explicitly
// by the caller after each message is handled.
func (c *Client) NewReader(topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.Brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

func PublishJSON(ctx context.Context, writer *kafka.Writer, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()})
}

// Publisher writes JSON events to a single topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns a Publisher for topic.
func (c *Client) NewPublisher(topic string) *Publisher {
	return &Publisher{writer: c.NewWriter(topic)}
}

// Publish sends payload keyed by key.
func (p *Publisher) Publish(ctx context.Context, key string, payload any) error {
	return PublishJSON(ctx, p.writer, key, payload)
}

// Close flushes pending writes.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
