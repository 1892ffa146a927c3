package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.msgs)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	err := p.Publish(context.Background(), BookEvent{Type: BookCreated, BookID: "b1", OwnerID: "u1", Title: "Dune"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	require.Equal(t, "book.created.b1", string(w.msgs[0].Key))

	var decoded BookEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	require.Equal(t, "Dune", decoded.Title)
	require.False(t, decoded.OccurredAt.IsZero())
}

func TestKafkaPublisher_WrapsWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := &KafkaPublisher{writer: w}

	err := p.Publish(context.Background(), BookEvent{Type: BookDeleted, BookID: "b1"})
	require.ErrorContains(t, err, "book.deleted.b1")
}

func TestPublishAsync(t *testing.T) {
	w := &fakeWriter{}
	PublishAsync(&KafkaPublisher{writer: w}, BookEvent{Type: BookUpdated, BookID: "b2"})

	require.Eventually(t, func() bool { return w.count() == 1 }, time.Second, 10*time.Millisecond)
	PublishAsync(nil, BookEvent{})
}
