package service

import (
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/restaurant-booking/internal/model"
	q "github.com/iliyamo/restaurant-booking/internal/queue"
	"github.com/iliyamo/restaurant-booking/internal/repository"
)

const (
	customerID = 1
	otherID    = 3
	staffID    = 2
	tableID    = 7
)

var (
	customer = Actor{UserID: customerID, Role: model.RoleCustomer}
	other    = Actor{UserID: otherID, Role: model.RoleCustomer}
	staff    = Actor{UserID: staffID, Role: model.RoleStaff}
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []q.BookingEvent
}

func (r *recordingNotifier) Notify(ev q.BookingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingNotifier) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

// testClock is a settable clock shared by the service under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	store    *repository.MemoryStore
	svc      *BookingService
	clock    *testClock
	notifier *recordingNotifier
}

// bookingDay is the calendar day most tests book on; the clock starts
// nine days earlier.
var bookingDay = time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return bookingDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	store.PutTable(model.Table{ID: tableID, ZoneID: 1, Name: "T7", Capacity: 4, MinCapacity: 2, PricePerHour: 8000000, IsActive: true})
	store.PutTable(model.Table{ID: 8, ZoneID: 1, Name: "T8", Capacity: 6, MinCapacity: 1, PricePerHour: 5000000, IsActive: false})
	store.PutMenuItem(model.MenuItem{ID: 1, Name: "Soup", Price: 300000, IsAvailable: true})
	store.PutMenuItem(model.MenuItem{ID: 2, Name: "Steak", Price: 1500000, IsAvailable: true})
	store.PutMenuItem(model.MenuItem{ID: 3, Name: "Truffle", Price: 9900000, IsAvailable: false})
	store.PutUser(model.User{ID: customerID, FullName: "Ann Guest", Phone: "+100", Email: "ann@example.com", Role: model.RoleCustomer})
	store.PutUser(model.User{ID: staffID, FullName: "Sam Staff", Role: model.RoleStaff})
	store.PutUser(model.User{ID: otherID, FullName: "Bob Other", Role: model.RoleCustomer})

	clock := &testClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	n := &recordingNotifier{}
	svc := NewBookingService(store, WithClock(clock.Now), WithNotifier(n), WithLocation(time.UTC))
	return &fixture{store: store, svc: svc, clock: clock, notifier: n}
}

func window(start, end time.Time, guests int) CreateBookingInput {
	return CreateBookingInput{TableID: tableID, StartTime: start, EndTime: end, GuestsCount: guests}
}
