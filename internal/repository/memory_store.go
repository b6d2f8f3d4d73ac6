package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// MemoryStore is an in-process Store used for local runs
// (STORE_DRIVER=memory) and tests.  Transactions are serialised by a
// single mutex and rolled back by restoring a snapshot, which gives the
// same isolation the MySQL store gets from row locks.
type MemoryStore struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	settings    *model.RestaurantSettings
	tables      map[uint64]model.Table
	users       map[uint64]model.User
	menu        map[uint64]model.MenuItem
	bookings    map[uint64]model.Booking
	history     []model.BookingHistory
	nextBooking uint64
	nextHistory uint64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memState{
		tables:   map[uint64]model.Table{},
		users:    map[uint64]model.User{},
		menu:     map[uint64]model.MenuItem{},
		bookings: map[uint64]model.Booking{},
	}}
}

// PutTable adds or replaces a table.
func (m *MemoryStore) PutTable(t model.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.tables[t.ID] = t
}

// PutUser adds or replaces a user.
func (m *MemoryStore) PutUser(u model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.users[u.ID] = u
}

// PutMenuItem adds or replaces a menu item.
func (m *MemoryStore) PutMenuItem(it model.MenuItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.menu[it.ID] = it
}

// User returns a copy of the stored user.
func (m *MemoryStore) User(id uint64) (model.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.state.users[id]
	return u, ok
}

func (s memState) clone() memState {
	c := memState{
		tables:      make(map[uint64]model.Table, len(s.tables)),
		users:       make(map[uint64]model.User, len(s.users)),
		menu:        make(map[uint64]model.MenuItem, len(s.menu)),
		bookings:    make(map[uint64]model.Booking, len(s.bookings)),
		history:     append([]model.BookingHistory(nil), s.history...),
		nextBooking: s.nextBooking,
		nextHistory: s.nextHistory,
	}
	if s.settings != nil {
		v := *s.settings
		c.settings = &v
	}
	for k, v := range s.tables {
		c.tables[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.menu {
		c.menu[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = copyBooking(v)
	}
	return c
}

func copyBooking(b model.Booking) model.Booking {
	b.MenuItems = append([]model.BookingMenuItem(nil), b.MenuItems...)
	return b
}

func (m *MemoryStore) Settings(ctx context.Context) (model.RestaurantSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.settings == nil {
		return model.DefaultSettings(), nil
	}
	return *m.state.settings, nil
}

func (m *MemoryStore) SaveSettings(ctx context.Context, s model.RestaurantSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.settings != nil {
		return ErrSettingsExists
	}
	m.state.settings = &s
	return nil
}

func (m *MemoryStore) TableByID(ctx context.Context, id uint64) (*model.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.state.tables[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MemoryStore) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.booking(id)
}

func (s *memState) booking(id uint64) (*model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := copyBooking(b)
	return &c, nil
}

func (m *MemoryStore) HoldingBookings(ctx context.Context, tableID uint64, from, to time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.overlapping(tableID, from, to, 0), nil
}

func (s *memState) overlapping(tableID uint64, start, end time.Time, excludeID uint64) []model.Booking {
	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if b.TableID != tableID || b.ID == excludeID || !b.Status.HoldsTable() {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (m *MemoryStore) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Booking, 0)
	for _, b := range m.state.bookings {
		if f.UserID != 0 && b.UserID != f.UserID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Date != "" && b.Date != f.Date {
			continue
		}
		out = append(out, copyBooking(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) ConfirmedBookingsOn(ctx context.Context, date string) ([]model.Booking, error) {
	list, _ := m.ListBookings(ctx, model.BookingFilter{Status: model.StatusConfirmed, Date: date})
	sort.Slice(list, func(i, j int) bool { return list[i].StartTime.Before(list[j].StartTime) })
	return list, nil
}

func (m *MemoryStore) History(ctx context.Context, bookingID uint64) ([]model.BookingHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.BookingHistory, 0)
	for _, h := range m.state.history {
		if h.BookingID == bookingID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *MemoryStore) Statistics(ctx context.Context, today string) (model.BookingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := model.BookingStats{ByStatus: map[model.Status]int{}}
	for _, b := range m.state.bookings {
		st.Total++
		st.ByStatus[b.Status]++
		if b.Date == today {
			st.Today++
		}
		if b.Status == model.StatusCompleted {
			st.TotalRevenue += b.TotalAmount
		}
	}
	return st, nil
}

// InTx holds the store mutex for the duration of fn.  fn must not call
// back into the non-transactional MemoryStore methods.
func (m *MemoryStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := m.state.clone()
	if err := fn(&memTx{s: &m.state}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

type memTx struct {
	s *memState
}

func (t *memTx) LockTable(ctx context.Context, id uint64) (*model.Table, error) {
	tb, ok := t.s.tables[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &tb, nil
}

func (t *memTx) Overlapping(ctx context.Context, tableID uint64, start, end time.Time, excludeID uint64) ([]model.Booking, error) {
	return t.s.overlapping(tableID, start, end, excludeID), nil
}

func (t *memTx) BookingNumberExists(ctx context.Context, number string) (bool, error) {
	for _, b := range t.s.bookings {
		if b.BookingNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	u, ok := t.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (t *memTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	if exists, _ := t.BookingNumberExists(ctx, b.BookingNumber); exists {
		return ErrDuplicate
	}
	t.s.nextBooking++
	b.ID = t.s.nextBooking
	stored := *b
	stored.MenuItems = nil
	t.s.bookings[b.ID] = stored
	return nil
}

func (t *memTx) LockBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	return t.s.booking(id)
}

func (t *memTx) UpdateBookingStatus(ctx context.Context, b *model.Booking, from model.Status, version uint32) error {
	cur, ok := t.s.bookings[b.ID]
	if !ok || cur.Status != from || cur.Version != version {
		return ErrConflict
	}
	cur.Status = b.Status
	cur.ConfirmedAt = b.ConfirmedAt
	cur.CancelledAt = b.CancelledAt
	cur.CancellationReason = b.CancellationReason
	cur.UpdatedAt = b.UpdatedAt
	cur.Version = version + 1
	t.s.bookings[b.ID] = cur
	b.Version = cur.Version
	return nil
}

func (t *memTx) UpdateBookingTotal(ctx context.Context, b *model.Booking, version uint32) error {
	cur, ok := t.s.bookings[b.ID]
	if !ok || cur.Version != version {
		return ErrConflict
	}
	cur.TotalAmount = b.TotalAmount
	cur.UpdatedAt = b.UpdatedAt
	cur.Version = version + 1
	t.s.bookings[b.ID] = cur
	b.Version = cur.Version
	return nil
}

func (t *memTx) MenuItemByID(ctx context.Context, id uint64) (*model.MenuItem, error) {
	it, ok := t.s.menu[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (t *memTx) SaveBookingMenuItem(ctx context.Context, item model.BookingMenuItem) error {
	b, ok := t.s.bookings[item.BookingID]
	if !ok {
		return ErrNotFound
	}
	for i, cur := range b.MenuItems {
		if cur.MenuItemID == item.MenuItemID {
			b.MenuItems[i].Quantity = item.Quantity
			b.MenuItems[i].Notes = item.Notes
			t.s.bookings[b.ID] = b
			return nil
		}
	}
	b.MenuItems = append(b.MenuItems, item)
	sort.Slice(b.MenuItems, func(i, j int) bool { return b.MenuItems[i].MenuItemID < b.MenuItems[j].MenuItemID })
	t.s.bookings[b.ID] = b
	return nil
}

func (t *memTx) DeleteBookingMenuItem(ctx context.Context, bookingID, menuItemID uint64) error {
	b, ok := t.s.bookings[bookingID]
	if !ok {
		return ErrNotFound
	}
	for i, cur := range b.MenuItems {
		if cur.MenuItemID == menuItemID {
			b.MenuItems = append(b.MenuItems[:i:i], b.MenuItems[i+1:]...)
			t.s.bookings[bookingID] = b
			return nil
		}
	}
	return ErrNotFound
}

func (t *memTx) AppendHistory(ctx context.Context, h *model.BookingHistory) error {
	t.s.nextHistory++
	h.ID = t.s.nextHistory
	t.s.history = append(t.s.history, *h)
	return nil
}

func (t *memTx) IncrementVisits(ctx context.Context, userID uint64) error {
	u, ok := t.s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.TotalVisits++
	t.s.users[userID] = u
	return nil
}

func (t *memTx) DeleteBooking(ctx context.Context, id uint64) error {
	if _, ok := t.s.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(t.s.bookings, id)
	kept := t.s.history[:0:0]
	for _, h := range t.s.history {
		if h.BookingID != id {
			kept = append(kept, h)
		}
	}
	t.s.history = kept
	return nil
}
