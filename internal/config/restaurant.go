package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// restaurantFile is the YAML layout of RESTAURANT_SETTINGS_FILE.  Omitted
// keys keep their default.
type restaurantFile struct {
	Name                   *string          `yaml:"name"`
	OpeningTime            *model.ClockTime `yaml:"opening_time"`
	ClosingTime            *model.ClockTime `yaml:"closing_time"`
	BookingInterval        *int             `yaml:"booking_interval"`
	MinBookingDuration     *int             `yaml:"min_booking_duration"`
	MaxBookingDuration     *int             `yaml:"max_booking_duration"`
	DefaultBookingDuration *int             `yaml:"default_booking_duration"`
	BookingAdvanceDays     *int             `yaml:"booking_advance_days"`
	CancellationHours      *int             `yaml:"cancellation_hours"`
}

// LoadRestaurantSettings reads the settings seed file.  The result is
// validated before it is returned.
func LoadRestaurantSettings(path string) (model.RestaurantSettings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.RestaurantSettings{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseRestaurantSettings(raw)
}

// ParseRestaurantSettings decodes YAML over DefaultSettings.
func ParseRestaurantSettings(raw []byte) (model.RestaurantSettings, error) {
	s := model.DefaultSettings()
	var f restaurantFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return s, fmt.Errorf("parse restaurant settings: %w", err)
	}
	if f.Name != nil {
		s.Name = *f.Name
	}
	if f.OpeningTime != nil {
		s.OpeningTime = *f.OpeningTime
	}
	if f.ClosingTime != nil {
		s.ClosingTime = *f.ClosingTime
	}
	setInt(&s.BookingInterval, f.BookingInterval)
	setInt(&s.MinBookingDuration, f.MinBookingDuration)
	setInt(&s.MaxBookingDuration, f.MaxBookingDuration)
	setInt(&s.DefaultBookingDuration, f.DefaultBookingDuration)
	setInt(&s.BookingAdvanceDays, f.BookingAdvanceDays)
	setInt(&s.CancellationHours, f.CancellationHours)
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("restaurant settings: %w", err)
	}
	return s, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
