package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// UserRepo reads the user columns bookings depend on and maintains the
// visit counter.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// GetByIDTx fetches a user by id inside tx.
func (r *UserRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.User, error) {
	var u model.User
	var phone, email sql.NullString
	err := tx.QueryRowContext(ctx,
		"SELECT id,full_name,phone,email,role,total_visits,created_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.FullName, &phone, &email, &u.Role, &u.TotalVisits, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Phone, u.Email = phone.String, email.String
	return &u, nil
}

// IncrementVisitsTx adds one completed visit to the user.
func (r *UserRepo) IncrementVisitsTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, "UPDATE users SET total_visits = total_visits + 1 WHERE id=?", id)
	return err
}

// isDuplicate reports a MySQL duplicate-key error (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}
