package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx so that read helpers
// can run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// BookingRepo provides persistence for bookings and their pre-ordered
// menu items.  All timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, booking_number, user_id, table_id, date, start_time, end_time,
       duration, guests_count, status, comment, special_requests,
       contact_name, contact_phone, contact_email,
       table_price_cents, deposit_cents, total_cents,
       confirmed_at, cancelled_at, cancellation_reason, version, created_at, updated_at`

// holdingIn renders "status IN (?, ?, ?)" for the holding statuses and
// returns the matching arguments.
func holdingIn() (string, []any) {
	marks := make([]string, len(model.HoldingStatuses))
	args := make([]any, len(model.HoldingStatuses))
	for i, s := range model.HoldingStatuses {
		marks[i] = "?"
		args[i] = string(s)
	}
	return "status IN (" + strings.Join(marks, ", ") + ")", args
}

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b                        model.Booking
		date                     time.Time
		status                   string
		comment, special, reason sql.NullString
		confirmedAt, cancelledAt sql.NullTime
		price, deposit, total    int64
	)
	err := s.Scan(
		&b.ID, &b.BookingNumber, &b.UserID, &b.TableID, &date, &b.StartTime, &b.EndTime,
		&b.Duration, &b.GuestsCount, &status, &comment, &special,
		&b.ContactName, &b.ContactPhone, &b.ContactEmail,
		&price, &deposit, &total,
		&confirmedAt, &cancelledAt, &reason, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Date = date.Format("2006-01-02")
	b.Status = model.Status(status)
	b.Comment = comment.String
	b.SpecialRequests = special.String
	b.CancellationReason = reason.String
	b.TablePrice, b.DepositAmount, b.TotalAmount = model.Money(price), model.Money(deposit), model.Money(total)
	if confirmedAt.Valid {
		t := confirmedAt.Time
		b.ConfirmedAt = &t
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	return &b, nil
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func getBooking(ctx context.Context, q querier, id uint64, lock bool) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	if lock {
		query += ` FOR UPDATE`
	}
	b, err := scanBooking(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if b.MenuItems, err = listMenuItems(ctx, q, id); err != nil {
		return nil, err
	}
	return b, nil
}

func listMenuItems(ctx context.Context, q querier, bookingID uint64) ([]model.BookingMenuItem, error) {
	const sel = `SELECT booking_id, menu_item_id, name, quantity, price_per_item_cents, notes
                 FROM booking_menu_items WHERE booking_id = ? ORDER BY menu_item_id`
	rows, err := q.QueryContext(ctx, sel, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.BookingMenuItem, 0)
	for rows.Next() {
		var it model.BookingMenuItem
		var price int64
		var notes sql.NullString
		if err := rows.Scan(&it.BookingID, &it.MenuItemID, &it.Name, &it.Quantity, &price, &notes); err != nil {
			return nil, err
		}
		it.PricePerItem = model.Money(price)
		it.Notes = notes.String
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetByID loads a booking with its menu items.  ErrNotFound when absent.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return getBooking(ctx, r.db, id, false)
}

// GetForUpdateTx loads a booking and locks its row until tx ends.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	return getBooking(ctx, tx, id, true)
}

// HoldingBetween returns holding bookings on a table that intersect
// [from, to).  Used to build the slot grid for a day.
func (r *BookingRepo) HoldingBetween(ctx context.Context, tableID uint64, from, to time.Time) ([]model.Booking, error) {
	return overlapping(ctx, r.db, tableID, from, to, 0)
}

// OverlappingTx is HoldingBetween inside tx, excluding one booking id.
// The caller is expected to hold the table lock so that the answer stays
// valid until commit.
func (r *BookingRepo) OverlappingTx(ctx context.Context, tx *sql.Tx, tableID uint64, start, end time.Time, excludeID uint64) ([]model.Booking, error) {
	return overlapping(ctx, tx, tableID, start, end, excludeID)
}

func overlapping(ctx context.Context, q querier, tableID uint64, start, end time.Time, excludeID uint64) ([]model.Booking, error) {
	in, args := holdingIn()
	query := `SELECT ` + bookingColumns + `
              FROM bookings
              WHERE table_id = ? AND ` + in + ` AND start_time < ? AND end_time > ? AND id <> ?
              ORDER BY start_time`
	all := append([]any{tableID}, args...)
	all = append(all, end.UTC(), start.UTC(), excludeID)
	rows, err := q.QueryContext(ctx, query, all...)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// NumberExistsTx reports whether a booking number is already taken.
func (r *BookingRepo) NumberExistsTx(ctx context.Context, tx *sql.Tx, number string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE booking_number = ?`, number).Scan(&n)
	return n > 0, err
}

// CreateTx inserts a booking and populates its ID.  A duplicate booking
// number surfaces as ErrDuplicate.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (booking_number, user_id, table_id, date, start_time, end_time,
                   duration, guests_count, status, comment, special_requests,
                   contact_name, contact_phone, contact_email,
                   table_price_cents, deposit_cents, total_cents, version, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.BookingNumber, b.UserID, b.TableID, b.Date, b.StartTime.UTC(), b.EndTime.UTC(),
		b.Duration, b.GuestsCount, string(b.Status), b.Comment, b.SpecialRequests,
		b.ContactName, b.ContactPhone, b.ContactEmail,
		b.TablePrice.Minor(), b.DepositAmount.Minor(), b.TotalAmount.Minor(), b.Version,
		b.CreatedAt.UTC(), b.UpdatedAt.UTC(),
	)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// UpdateStatusTx performs a conditional status update keyed on the
// expected status and version.  Zero affected rows means another writer
// got there first and ErrConflict is returned.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, b *model.Booking, from model.Status, version uint32) error {
	const q = `UPDATE bookings
               SET status = ?, confirmed_at = ?, cancelled_at = ?, cancellation_reason = ?,
                   version = version + 1, updated_at = ?
               WHERE id = ? AND status = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q,
		string(b.Status), nullTime(b.ConfirmedAt), nullTime(b.CancelledAt), nullString(b.CancellationReason),
		b.UpdatedAt.UTC(), b.ID, string(from), version,
	)
	if err != nil {
		return err
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	b.Version = version + 1
	return nil
}

// UpdateTotalTx stores a recomputed total under the same version check.
func (r *BookingRepo) UpdateTotalTx(ctx context.Context, tx *sql.Tx, b *model.Booking, version uint32) error {
	const q = `UPDATE bookings SET total_cents = ?, version = version + 1, updated_at = ?
               WHERE id = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q, b.TotalAmount.Minor(), b.UpdatedAt.UTC(), b.ID, version)
	if err != nil {
		return err
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	b.Version = version + 1
	return nil
}

// SaveMenuItemTx inserts a booking menu row or updates quantity and notes
// of the existing one.  The stored price is never rewritten.
func (r *BookingRepo) SaveMenuItemTx(ctx context.Context, tx *sql.Tx, it model.BookingMenuItem) error {
	const q = `INSERT INTO booking_menu_items (booking_id, menu_item_id, name, quantity, price_per_item_cents, notes)
               VALUES (?, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE quantity = VALUES(quantity), notes = VALUES(notes)`
	_, err := tx.ExecContext(ctx, q, it.BookingID, it.MenuItemID, it.Name, it.Quantity, it.PricePerItem.Minor(), it.Notes)
	return err
}

// DeleteMenuItemTx removes one pre-ordered item.  ErrNotFound when the
// item was not on the booking.
func (r *BookingRepo) DeleteMenuItemTx(ctx context.Context, tx *sql.Tx, bookingID, menuItemID uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM booking_menu_items WHERE booking_id = ? AND menu_item_id = ?`, bookingID, menuItemID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTx removes a booking together with its menu items and history.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_menu_items WHERE booking_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_history WHERE booking_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns bookings matching the filter, newest start first.
func (r *BookingRepo) List(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Date != "" {
		where = append(where, "date = ?")
		args = append(args, f.Date)
	}
	q := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY start_time DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// ConfirmedOn lists confirmed bookings on a calendar date.
func (r *BookingRepo) ConfirmedOn(ctx context.Context, date string) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE date = ? AND status = ? ORDER BY start_time`,
		date, string(model.StatusConfirmed))
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// Statistics aggregates counts per status and revenue of completed
// bookings.
func (r *BookingRepo) Statistics(ctx context.Context, today string) (model.BookingStats, error) {
	st := model.BookingStats{ByStatus: map[model.Status]int{}}
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN total_cents ELSE 0 END), 0)
                                         FROM bookings GROUP BY status`, string(model.StatusCompleted))
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		var revenue int64
		if err := rows.Scan(&status, &n, &revenue); err != nil {
			return st, err
		}
		st.ByStatus[model.Status(status)] = n
		st.Total += n
		st.TotalRevenue += model.Money(revenue)
	}
	if err := rows.Err(); err != nil {
		return st, err
	}
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE date = ?`, today).Scan(&st.Today)
	return st, err
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrConflict
	}
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
