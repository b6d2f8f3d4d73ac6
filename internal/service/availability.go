package service

import (
	"time"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// Slot is a bookable window on the restaurant's time grid.
type Slot struct {
	StartTime     string    `json:"start_time"` // HH:MM
	EndTime       string    `json:"end_time"`   // HH:MM
	StartDateTime time.Time `json:"start_datetime"`
	EndDateTime   time.Time `json:"end_datetime"`
}

// SlotQuery describes one availability lookup.
type SlotQuery struct {
	Date     time.Time // any instant on the requested calendar day
	Duration int       // minutes; zero selects the default duration
	Now      time.Time
	Location *time.Location
}

// ComputeAvailableSlots lists the windows of the requested length on the
// given day that do not overlap any of the table's holding bookings.
// Candidates start at opening time and advance by the booking interval;
// on the current day the first candidate is the first grid point not in
// the past.  The result is empty when the day has no room for the
// duration.
func ComputeAvailableSlots(table *model.Table, settings model.RestaurantSettings, q SlotQuery, bookings []model.Booking) ([]Slot, error) {
	if table == nil || !table.IsActive {
		return nil, &NotFoundError{Resource: "table"}
	}
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}
	duration := q.Duration
	if duration == 0 {
		duration = settings.DefaultBookingDuration
	}
	if duration < settings.MinBookingDuration || duration > settings.MaxBookingDuration {
		return nil, invalid("duration must be between %d and %d minutes", settings.MinBookingDuration, settings.MaxBookingDuration)
	}

	now := q.Now.In(loc)
	day := startOfDay(q.Date.In(loc), loc)
	today := startOfDay(now, loc)
	if day.Before(today) {
		return nil, invalid("date must not be in the past")
	}
	if day.After(today.AddDate(0, 0, settings.BookingAdvanceDays)) {
		return nil, invalid("date must be within %d days from today", settings.BookingAdvanceDays)
	}

	slots := make([]Slot, 0)
	if settings.ClosingTime <= settings.OpeningTime || settings.BookingInterval <= 0 {
		return slots, nil
	}
	opening := settings.OpeningTime.On(day, loc)
	closing := settings.ClosingTime.On(day, loc)
	step := time.Duration(settings.BookingInterval) * time.Minute
	length := time.Duration(duration) * time.Minute

	cur := opening
	if day.Equal(today) {
		for cur.Before(now) {
			cur = cur.Add(step)
		}
	}

	busy := make([]TimeWindow, 0, len(bookings))
	for _, b := range bookings {
		if b.TableID == table.ID && b.Status.HoldsTable() {
			busy = append(busy, TimeWindow{Start: b.StartTime, End: b.EndTime})
		}
	}

	for ; !cur.Add(length).After(closing); cur = cur.Add(step) {
		cand := TimeWindow{Start: cur, End: cur.Add(length)}
		free := true
		for _, w := range busy {
			if cand.Overlaps(w) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, Slot{
				StartTime:     cand.Start.Format("15:04"),
				EndTime:       cand.End.Format("15:04"),
				StartDateTime: cand.Start,
				EndDateTime:   cand.End,
			})
		}
	}
	return slots, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
