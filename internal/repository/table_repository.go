package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// TableRepo reads restaurant tables and menu items.  Table and menu
// management is out of scope for this service; the rows are seeded by
// migrations or an admin tool.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, zone_id, name, capacity, min_capacity, price_per_hour_cents, deposit_cents, is_active`

func scanTable(s rowScanner) (*model.Table, error) {
	var t model.Table
	var price, deposit int64
	if err := s.Scan(&t.ID, &t.ZoneID, &t.Name, &t.Capacity, &t.MinCapacity, &price, &deposit, &t.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.PricePerHour, t.Deposit = model.Money(price), model.Money(deposit)
	return &t, nil
}

// GetByID fetches a table.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	return scanTable(r.db.QueryRowContext(ctx, `SELECT `+tableColumns+` FROM restaurant_tables WHERE id = ?`, id))
}

// LockTx fetches a table and locks its row for the rest of tx.  Booking
// creation serialises on this lock so that the overlap check and the
// insert cannot interleave with another creation for the same table.
func (r *TableRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Table, error) {
	return scanTable(tx.QueryRowContext(ctx, `SELECT `+tableColumns+` FROM restaurant_tables WHERE id = ? FOR UPDATE`, id))
}

// MenuItemTx fetches a menu item inside tx.
func (r *TableRepo) MenuItemTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.MenuItem, error) {
	var m model.MenuItem
	var price int64
	err := tx.QueryRowContext(ctx, `SELECT id, name, price_cents, is_available FROM menu_items WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &price, &m.IsAvailable)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.Price = model.Money(price)
	return &m, nil
}
