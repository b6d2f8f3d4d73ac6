package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	q "github.com/iliyamo/restaurant-booking/internal/queue"
)

type flakyPublisher struct {
	mu        sync.Mutex
	failFirst int
	calls     int
	delivered []string
	done      chan struct{}
}

func (p *flakyPublisher) Publish(_ context.Context, ev q.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failFirst {
		return errors.New("broker unavailable")
	}
	p.delivered = append(p.delivered, ev.ID)
	if p.done != nil {
		p.done <- struct{}{}
	}
	return nil
}

func TestDispatcherRetriesUntilDelivered(t *testing.T) {
	pub := &flakyPublisher{failFirst: 2, done: make(chan struct{}, 1)}
	d := NewDispatcher(1, 4, 3, time.Millisecond, pub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Notify(q.BookingEvent{ID: "ev-1", Type: q.EventBookingCreated})
	select {
	case <-pub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, 3, pub.calls)
	assert.Equal(t, []string{"ev-1"}, pub.delivered)
}

func TestDispatcherGivesUpAfterRetries(t *testing.T) {
	pub := &flakyPublisher{failFirst: 100}
	d := NewDispatcher(1, 1, 2, 0, pub)
	var failed []string
	d.failures = func(ev q.BookingEvent, err error) { failed = append(failed, ev.ID) }

	d.deliver(context.Background(), q.BookingEvent{ID: "ev-2"})
	assert.Equal(t, []string{"ev-2"}, failed)
	assert.Equal(t, 3, pub.calls)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, 1, 0, 0, &flakyPublisher{})
	var dropped []string
	d.dropped = func(ev q.BookingEvent) { dropped = append(dropped, ev.ID) }

	done := make(chan struct{})
	go func() {
		// workers are not started, so the second event cannot fit
		d.Notify(q.BookingEvent{ID: "a"})
		d.Notify(q.BookingEvent{ID: "b"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked")
	}
	require.Equal(t, []string{"b"}, dropped)
	assert.Len(t, d.jobs, 1)
}

func TestDispatcherStopsWithContext(t *testing.T) {
	pub := &flakyPublisher{failFirst: 100}
	d := NewDispatcher(1, 1, 5, time.Hour, pub)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var failed bool
	d.failures = func(q.BookingEvent, error) { failed = true }
	d.deliver(ctx, q.BookingEvent{ID: "x"})
	assert.Equal(t, 1, pub.calls)
	assert.False(t, failed)
}
