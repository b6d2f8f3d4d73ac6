package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// MySQLStore implements Store on top of the MySQL repositories.
type MySQLStore struct {
	db       *sql.DB
	bookings *BookingRepo
	tables   *TableRepo
	users    *UserRepo
	history  *HistoryRepo
	settings *SettingsRepo
}

// NewMySQLStore wires the repositories to a shared connection pool.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{
		db:       db,
		bookings: NewBookingRepo(db),
		tables:   NewTableRepo(db),
		users:    NewUserRepo(db),
		history:  NewHistoryRepo(db),
		settings: NewSettingsRepo(db),
	}
}

func (s *MySQLStore) Settings(ctx context.Context) (model.RestaurantSettings, error) {
	return s.settings.Get(ctx)
}

func (s *MySQLStore) SaveSettings(ctx context.Context, rs model.RestaurantSettings) error {
	return s.settings.Create(ctx, rs)
}

func (s *MySQLStore) TableByID(ctx context.Context, id uint64) (*model.Table, error) {
	return s.tables.GetByID(ctx, id)
}

func (s *MySQLStore) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *MySQLStore) HoldingBookings(ctx context.Context, tableID uint64, from, to time.Time) ([]model.Booking, error) {
	return s.bookings.HoldingBetween(ctx, tableID, from, to)
}

func (s *MySQLStore) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	return s.bookings.List(ctx, f)
}

func (s *MySQLStore) ConfirmedBookingsOn(ctx context.Context, date string) ([]model.Booking, error) {
	return s.bookings.ConfirmedOn(ctx, date)
}

func (s *MySQLStore) History(ctx context.Context, bookingID uint64) ([]model.BookingHistory, error) {
	return s.history.ListByBooking(ctx, bookingID)
}

func (s *MySQLStore) Statistics(ctx context.Context, today string) (model.BookingStats, error) {
	return s.bookings.Statistics(ctx, today)
}

// InTx begins a transaction, runs fn and commits.  The committed flag
// guards the deferred rollback so that every early return releases the
// transaction.
func (s *MySQLStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&mysqlTx{tx: tx, s: s}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type mysqlTx struct {
	tx *sql.Tx
	s  *MySQLStore
}

func (t *mysqlTx) LockTable(ctx context.Context, id uint64) (*model.Table, error) {
	return t.s.tables.LockTx(ctx, t.tx, id)
}

func (t *mysqlTx) Overlapping(ctx context.Context, tableID uint64, start, end time.Time, excludeID uint64) ([]model.Booking, error) {
	return t.s.bookings.OverlappingTx(ctx, t.tx, tableID, start, end, excludeID)
}

func (t *mysqlTx) BookingNumberExists(ctx context.Context, number string) (bool, error) {
	return t.s.bookings.NumberExistsTx(ctx, t.tx, number)
}

func (t *mysqlTx) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	return t.s.users.GetByIDTx(ctx, t.tx, id)
}

func (t *mysqlTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	return t.s.bookings.CreateTx(ctx, t.tx, b)
}

func (t *mysqlTx) LockBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	return t.s.bookings.GetForUpdateTx(ctx, t.tx, id)
}

func (t *mysqlTx) UpdateBookingStatus(ctx context.Context, b *model.Booking, from model.Status, version uint32) error {
	return t.s.bookings.UpdateStatusTx(ctx, t.tx, b, from, version)
}

func (t *mysqlTx) UpdateBookingTotal(ctx context.Context, b *model.Booking, version uint32) error {
	return t.s.bookings.UpdateTotalTx(ctx, t.tx, b, version)
}

func (t *mysqlTx) MenuItemByID(ctx context.Context, id uint64) (*model.MenuItem, error) {
	return t.s.tables.MenuItemTx(ctx, t.tx, id)
}

func (t *mysqlTx) SaveBookingMenuItem(ctx context.Context, item model.BookingMenuItem) error {
	return t.s.bookings.SaveMenuItemTx(ctx, t.tx, item)
}

func (t *mysqlTx) DeleteBookingMenuItem(ctx context.Context, bookingID, menuItemID uint64) error {
	return t.s.bookings.DeleteMenuItemTx(ctx, t.tx, bookingID, menuItemID)
}

func (t *mysqlTx) AppendHistory(ctx context.Context, h *model.BookingHistory) error {
	return t.s.history.AppendTx(ctx, t.tx, h)
}

func (t *mysqlTx) IncrementVisits(ctx context.Context, userID uint64) error {
	return t.s.users.IncrementVisitsTx(ctx, t.tx, userID)
}

func (t *mysqlTx) DeleteBooking(ctx context.Context, id uint64) error {
	return t.s.bookings.DeleteTx(ctx, t.tx, id)
}
