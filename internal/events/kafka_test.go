package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	failures int
	calls    int
	got      []kafka.Message
}

func (f *fakeWriter) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeWriter) WriteMessages(msgs ...kafka.Message) (int, error) {
	f.calls++
	if f.calls <= f.failures {
		return 0, errors.New("leader not available")
	}
	f.got = append(f.got, msgs...)
	return len(msgs), nil
}

func TestKafkaPublisher_Envelope(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, 0)

	err := p.Publish(context.Background(), "p1", EventProductStatusChanged, StatusChanged{ProductID: "p1", From: "pending", To: "approved"})
	require.NoError(t, err)
	require.Len(t, w.got, 1)
	assert.Equal(t, "p1", string(w.got[0].Key))

	var msg struct {
		EventType string         `json:"event_type"`
		Data      map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.got[0].Value, &msg))
	assert.Equal(t, EventProductStatusChanged, msg.EventType)
	assert.Equal(t, "approved", msg.Data["to"])
}

func TestKafkaPublisher_RetriesThenSucceeds(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := newKafkaPublisher(w, 0)

	require.NoError(t, p.Publish(context.Background(), "p1", EventProductCreated, map[string]string{"id": "p1"}))
	assert.Equal(t, 3, w.calls)
}

func TestKafkaPublisher_GivesUp(t *testing.T) {
	w := &fakeWriter{failures: 10}
	p := newKafkaPublisher(w, 0)

	err := p.Publish(context.Background(), "p1", EventProductCreated, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, w.calls)
}

// stalledWriter never completes a write until released.
type stalledWriter struct {
	mu        sync.Mutex
	deadlines []time.Time
	release   chan struct{}
}

func (w *stalledWriter) SetWriteDeadline(t time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deadlines = append(w.deadlines, t)
	return nil
}

func (w *stalledWriter) WriteMessages(msgs ...kafka.Message) (int, error) {
	<-w.release
	return 0, errors.New("connection closed")
}

func newStalledWriter(t *testing.T) *stalledWriter {
	w := &stalledWriter{release: make(chan struct{})}
	t.Cleanup(func() { close(w.release) })
	return w
}

func TestKafkaPublisher_StalledBrokerHonoursContext(t *testing.T) {
	w := newStalledWriter(t)
	p := newKafkaPublisher(w, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	deadline, _ := ctx.Deadline()

	start := time.Now()
	err := p.Publish(ctx, "p1", EventProductStatusChanged, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.deadlines, 1, "no retry once the context is done")
	assert.Equal(t, deadline, w.deadlines[0])
}

func TestKafkaPublisher_StalledBrokerWithoutDeadline(t *testing.T) {
	w := newStalledWriter(t)
	p := newKafkaPublisher(w, 0)
	p.timeout = 100 * time.Millisecond

	start := time.Now()
	err := p.Publish(context.Background(), "p1", EventProductCreated, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
