package repository

import (
	"context"
	"time"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// Store is the persistence contract used by the booking service.  Reads
// outside InTx see committed data only.  InTx runs fn inside a single
// transaction: fn's error rolls everything back, nil commits.
type Store interface {
	Settings(ctx context.Context) (model.RestaurantSettings, error)
	SaveSettings(ctx context.Context, s model.RestaurantSettings) error
	TableByID(ctx context.Context, id uint64) (*model.Table, error)
	BookingByID(ctx context.Context, id uint64) (*model.Booking, error)
	// HoldingBookings returns bookings on the table in a holding status
	// whose window intersects [from, to).
	HoldingBookings(ctx context.Context, tableID uint64, from, to time.Time) ([]model.Booking, error)
	ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error)
	ConfirmedBookingsOn(ctx context.Context, date string) ([]model.Booking, error)
	History(ctx context.Context, bookingID uint64) ([]model.BookingHistory, error)
	Statistics(ctx context.Context, today string) (model.BookingStats, error)
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of operations available inside a transaction.  Lock*
// methods take row locks held until the transaction ends.
type Tx interface {
	LockTable(ctx context.Context, id uint64) (*model.Table, error)
	// Overlapping returns holding bookings on the table intersecting
	// [start, end), skipping excludeID when non-zero.
	Overlapping(ctx context.Context, tableID uint64, start, end time.Time, excludeID uint64) ([]model.Booking, error)
	BookingNumberExists(ctx context.Context, number string) (bool, error)
	UserByID(ctx context.Context, id uint64) (*model.User, error)
	InsertBooking(ctx context.Context, b *model.Booking) error
	LockBooking(ctx context.Context, id uint64) (*model.Booking, error)
	// UpdateBookingStatus writes b's status fields only if the stored row
	// still has status from and the given version; otherwise ErrConflict.
	// On success b.Version is incremented.
	UpdateBookingStatus(ctx context.Context, b *model.Booking, from model.Status, version uint32) error
	UpdateBookingTotal(ctx context.Context, b *model.Booking, version uint32) error
	MenuItemByID(ctx context.Context, id uint64) (*model.MenuItem, error)
	SaveBookingMenuItem(ctx context.Context, item model.BookingMenuItem) error
	DeleteBookingMenuItem(ctx context.Context, bookingID, menuItemID uint64) error
	AppendHistory(ctx context.Context, h *model.BookingHistory) error
	IncrementVisits(ctx context.Context, userID uint64) error
	// DeleteBooking removes the booking with its menu items and history.
	DeleteBooking(ctx context.Context, id uint64) error
}
