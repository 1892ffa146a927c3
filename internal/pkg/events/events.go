package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/xyz-asif/ebooks/internal/pkg/logger"
)

const (
	BookCreated = "book.created"
	BookUpdated = "book.updated"
	BookDeleted = "book.deleted"
)

// BookEvent is the payload written for every book lifecycle change.
type BookEvent struct {
	Type       string    `json:"type"`
	BookID     string    `json:"bookId"`
	OwnerID    string    `json:"ownerId"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Key is the message key, e.g. "book.created.<id>".
func (e BookEvent) Key() string {
	return fmt.Sprintf("%s.%s", e.Type, e.BookID)
}

type Publisher interface {
	Publish(ctx context.Context, event BookEvent) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: NewKafkaWriter(brokers, topic)}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event BookEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s: %w", event.Key(), err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only logs events; used when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event BookEvent) error {
	logger.L().Debug().
		Str("type", event.Type).
		Str("bookId", event.BookID).
		Str("ownerId", event.OwnerID).
		Msg("book event")
	return nil
}

func (LogPublisher) Close() error { return nil }

// PublishAsync publishes on a fresh goroutine and logs failures.
func PublishAsync(p Publisher, event BookEvent) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.Publish(ctx, event); err != nil {
			logger.Warn("failed to publish %s: %v", event.Key(), err)
		}
	}()
}
