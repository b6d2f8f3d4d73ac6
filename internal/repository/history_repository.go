package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// HistoryRepo appends and lists booking audit entries.  Rows are never
// updated.
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// AppendTx inserts one entry and populates its ID.
func (r *HistoryRepo) AppendTx(ctx context.Context, tx *sql.Tx, h *model.BookingHistory) error {
	const q = `INSERT INTO booking_history (booking_id, action, old_status, new_status, changed_by, comment, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	var changedBy any
	if h.ChangedBy != nil {
		changedBy = *h.ChangedBy
	}
	res, err := tx.ExecContext(ctx, q, h.BookingID, h.Action, nullString(string(h.OldStatus)), string(h.NewStatus),
		changedBy, h.Comment, h.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// ListByBooking returns entries oldest first.
func (r *HistoryRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.BookingHistory, error) {
	const q = `SELECT id, booking_id, action, old_status, new_status, changed_by, comment, created_at
               FROM booking_history WHERE booking_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BookingHistory, 0)
	for rows.Next() {
		var h model.BookingHistory
		var oldStatus, newStatus string
		var old sql.NullString
		var changedBy sql.NullInt64
		if err := rows.Scan(&h.ID, &h.BookingID, &h.Action, &old, &newStatus, &changedBy, &h.Comment, &h.CreatedAt); err != nil {
			return nil, err
		}
		oldStatus = old.String
		h.OldStatus, h.NewStatus = model.Status(oldStatus), model.Status(newStatus)
		if changedBy.Valid {
			id := uint64(changedBy.Int64)
			h.ChangedBy = &id
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
