package service

import (
	"context"
	"log"
	"time"

	q "github.com/iliyamo/restaurant-booking/internal/queue"
)

// Notifier receives booking events after the booking transaction has
// committed.  Implementations must not block the caller.
type Notifier interface {
	Notify(ev q.BookingEvent)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(q.BookingEvent) {}

// Dispatcher is a bounded worker pool that hands events to a Publisher.
// Notify never blocks: when the buffer is full the event is logged and
// dropped.  Failed publishes are retried with a linear backoff and then
// logged; they never reach the booking operation.
type Dispatcher struct {
	size     int
	jobs     chan q.BookingEvent
	pub      Publisher
	retries  int
	backoff  time.Duration
	timeout  time.Duration
	dropped  func(q.BookingEvent)
	failures func(q.BookingEvent, error)
}

// NewDispatcher creates a pool of size workers with a buffer of buffer
// events.
func NewDispatcher(size, buffer, retries int, backoff time.Duration, pub Publisher) *Dispatcher {
	if size < 1 {
		size = 1
	}
	if buffer < 1 {
		buffer = size
	}
	return &Dispatcher{
		size:    size,
		jobs:    make(chan q.BookingEvent, buffer),
		pub:     pub,
		retries: retries,
		backoff: backoff,
		timeout: 10 * time.Second,
		dropped: func(ev q.BookingEvent) {
			log.Printf("notifier: buffer full, dropping %s for booking %d", ev.Type, ev.BookingID)
		},
		failures: func(ev q.BookingEvent, err error) {
			log.Printf("notifier: giving up on %s for booking %d: %v", ev.Type, ev.BookingID, err)
		},
	}
}

// Start launches the worker goroutines.  They exit when ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.size; i++ {
		go d.worker(ctx, i)
	}
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	for {
		select {
		case ev := <-d.jobs:
			d.deliver(ctx, ev)
		case <-ctx.Done():
			log.Printf("notifier: worker %d shutting down", id)
			return
		}
	}
}

// Notify enqueues ev without blocking.
func (d *Dispatcher) Notify(ev q.BookingEvent) {
	select {
	case d.jobs <- ev:
	default:
		d.dropped(ev)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev q.BookingEvent) {
	var err error
	for attempt := 0; attempt <= d.retries; attempt++ {
		if attempt > 0 && !sleepFor(ctx, time.Duration(attempt)*d.backoff) {
			return
		}
		pctx, cancel := context.WithTimeout(ctx, d.timeout)
		err = d.pub.Publish(pctx, ev)
		cancel()
		if err == nil {
			return
		}
	}
	d.failures(ev, err)
}

func sleepFor(ctx context.Context, dur time.Duration) bool {
	if dur <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
