package service

import (
	"context"
	"fmt"
	"log"
	"time"

	q "github.com/iliyamo/restaurant-booking/internal/queue"
	"github.com/iliyamo/restaurant-booking/internal/repository"
)

// Reminder periodically emits a reminder event for every confirmed
// booking that starts tomorrow.  Event ids are derived from the booking
// and date, so repeated runs on the same day are dropped by the
// consumer's de-duplication.
type Reminder struct {
	store    repository.Store
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

// NewReminder builds a reminder job.
func NewReminder(store repository.Store, n Notifier, loc *time.Location) *Reminder {
	if loc == nil {
		loc = time.UTC
	}
	return &Reminder{store: store, notifier: n, loc: loc, now: time.Now}
}

// RunOnce emits reminders for tomorrow and returns how many were sent.
func (r *Reminder) RunOnce(ctx context.Context) (int, error) {
	now := r.now()
	date := now.In(r.loc).AddDate(0, 0, 1).Format("2006-01-02")
	list, err := r.store.ConfirmedBookingsOn(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("load bookings for %s: %w", date, err)
	}
	for i := range list {
		ev := q.NewBookingEvent(q.EventReminder, &list[i], now)
		ev.ID = fmt.Sprintf("reminder-%d-%s", list[i].ID, date)
		r.notifier.Notify(ev)
	}
	return len(list), nil
}

// Start runs RunOnce every interval until ctx is done.
func (r *Reminder) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if n, err := r.RunOnce(ctx); err != nil {
			log.Printf("reminder: %v", err)
		} else if n > 0 {
			log.Printf("reminder: queued %d reminders", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
