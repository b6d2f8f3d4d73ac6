package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// SettingsRepo persists the single restaurant_settings row.  The table
// has a `singleton` primary key constrained to 1, so a second insert
// fails with a duplicate key.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get returns the stored settings.  When the row has not been created
// yet the defaults are returned.
func (r *SettingsRepo) Get(ctx context.Context) (model.RestaurantSettings, error) {
	const q = `SELECT name, opening_minute, closing_minute, booking_interval,
                      min_booking_duration, max_booking_duration, default_booking_duration,
                      booking_advance_days, cancellation_hours
               FROM restaurant_settings WHERE singleton = 1`
	var s model.RestaurantSettings
	var opening, closing int
	err := r.db.QueryRowContext(ctx, q).Scan(&s.Name, &opening, &closing, &s.BookingInterval,
		&s.MinBookingDuration, &s.MaxBookingDuration, &s.DefaultBookingDuration,
		&s.BookingAdvanceDays, &s.CancellationHours)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return s, err
	}
	s.OpeningTime, s.ClosingTime = model.ClockTime(opening), model.ClockTime(closing)
	return s, nil
}

// Create inserts the settings row.  ErrSettingsExists when one is
// already stored.
func (r *SettingsRepo) Create(ctx context.Context, s model.RestaurantSettings) error {
	const q = `INSERT INTO restaurant_settings (singleton, name, opening_minute, closing_minute, booking_interval,
                   min_booking_duration, max_booking_duration, default_booking_duration,
                   booking_advance_days, cancellation_hours)
               VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, s.Name, int(s.OpeningTime), int(s.ClosingTime), s.BookingInterval,
		s.MinBookingDuration, s.MaxBookingDuration, s.DefaultBookingDuration,
		s.BookingAdvanceDays, s.CancellationHours)
	if err != nil && isDuplicate(err) {
		return ErrSettingsExists
	}
	return err
}
