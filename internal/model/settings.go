package model

import (
	"errors"
	"fmt"
	"time"
)

// ClockTime is a time of day expressed in minutes after midnight.
type ClockTime int

// ParseClock parses "HH:MM" (24h).
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60) }

// MarshalText renders "HH:MM" for JSON and YAML.
func (c ClockTime) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText accepts "HH:MM".
func (c *ClockTime) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// On returns the instant at this time of day on the given calendar day in loc.
func (c ClockTime) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(time.Duration(c) * time.Minute)
}

// RestaurantSettings holds the booking rules of the restaurant.  Exactly
// one row exists in restaurant_settings; durations and the interval are
// in minutes.
type RestaurantSettings struct {
	Name                   string    `json:"name"`
	OpeningTime            ClockTime `json:"opening_time"`
	ClosingTime            ClockTime `json:"closing_time"`
	BookingInterval        int       `json:"booking_interval"`
	MinBookingDuration     int       `json:"min_booking_duration"`
	MaxBookingDuration     int       `json:"max_booking_duration"`
	DefaultBookingDuration int       `json:"default_booking_duration"`
	BookingAdvanceDays     int       `json:"booking_advance_days"`
	CancellationHours      int       `json:"cancellation_hours"`
}

// DefaultSettings is used when no settings row has been stored yet.
func DefaultSettings() RestaurantSettings {
	return RestaurantSettings{
		Name:                   "Restaurant",
		OpeningTime:            10 * 60,
		ClosingTime:            23 * 60,
		BookingInterval:        30,
		MinBookingDuration:     60,
		MaxBookingDuration:     240,
		DefaultBookingDuration: 120,
		BookingAdvanceDays:     30,
		CancellationHours:      2,
	}
}

// Validate checks internal consistency of the settings.
func (s RestaurantSettings) Validate() error {
	switch {
	case s.OpeningTime < 0 || s.OpeningTime >= 24*60 || s.ClosingTime < 0 || s.ClosingTime > 24*60:
		return errors.New("opening and closing time must be within the day")
	case s.BookingInterval <= 0:
		return errors.New("booking_interval must be positive")
	case s.MinBookingDuration <= 0 || s.MaxBookingDuration < s.MinBookingDuration:
		return errors.New("min/max booking duration are inconsistent")
	case s.DefaultBookingDuration < s.MinBookingDuration || s.DefaultBookingDuration > s.MaxBookingDuration:
		return errors.New("default_booking_duration must lie within min/max")
	case s.BookingAdvanceDays < 0 || s.CancellationHours < 0:
		return errors.New("booking_advance_days and cancellation_hours must not be negative")
	}
	return nil
}
