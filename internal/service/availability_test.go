package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

func activeTable() *model.Table {
	return &model.Table{ID: tableID, Capacity: 4, MinCapacity: 2, PricePerHour: 8000000, IsActive: true}
}

func slotStarts(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.StartTime
	}
	return out
}

func TestComputeSlotsFullDay(t *testing.T) {
	q := SlotQuery{Date: bookingDay, Duration: 120, Now: bookingDay.AddDate(0, 0, -1), Location: time.UTC}
	slots, err := ComputeAvailableSlots(activeTable(), model.DefaultSettings(), q, nil)
	require.NoError(t, err)
	require.Len(t, slots, 23)
	assert.Equal(t, "10:00", slots[0].StartTime)
	assert.Equal(t, "12:00", slots[0].EndTime)
	assert.Equal(t, "21:00", slots[22].StartTime)
	assert.Equal(t, "23:00", slots[22].EndTime)
}

func TestComputeSlotsSkipsBookedWindow(t *testing.T) {
	booked := []model.Booking{{TableID: tableID, Status: model.StatusPending, StartTime: at(14, 0), EndTime: at(16, 0)}}
	q := SlotQuery{Date: bookingDay, Duration: 120, Now: bookingDay.AddDate(0, 0, -1), Location: time.UTC}
	slots, err := ComputeAvailableSlots(activeTable(), model.DefaultSettings(), q, booked)
	require.NoError(t, err)

	starts := slotStarts(slots)
	assert.Len(t, starts, 16)
	for _, gone := range []string{"12:30", "13:00", "13:30", "14:00", "14:30", "15:00", "15:30"} {
		assert.NotContains(t, starts, gone)
	}
	assert.Contains(t, starts, "12:00")
	assert.Contains(t, starts, "16:00")
}

func TestComputeSlotsIgnoresReleasedBookings(t *testing.T) {
	booked := []model.Booking{
		{TableID: tableID, Status: model.StatusCancelled, StartTime: at(14, 0), EndTime: at(16, 0)},
		{TableID: tableID, Status: model.StatusNoShow, StartTime: at(10, 0), EndTime: at(12, 0)},
	}
	q := SlotQuery{Date: bookingDay, Duration: 120, Now: bookingDay.AddDate(0, 0, -1), Location: time.UTC}
	slots, err := ComputeAvailableSlots(activeTable(), model.DefaultSettings(), q, booked)
	require.NoError(t, err)
	assert.Len(t, slots, 23)
}

func TestComputeSlotsToday(t *testing.T) {
	now := at(15, 10)
	q := SlotQuery{Date: bookingDay, Duration: 60, Now: now, Location: time.UTC}
	slots, err := ComputeAvailableSlots(activeTable(), model.DefaultSettings(), q, nil)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, "15:30", slots[0].StartTime)
	assert.Equal(t, "22:00", slots[len(slots)-1].StartTime)
}

func TestComputeSlotsDefaultDuration(t *testing.T) {
	q := SlotQuery{Date: bookingDay, Now: bookingDay.AddDate(0, 0, -1), Location: time.UTC}
	slots, err := ComputeAvailableSlots(activeTable(), model.DefaultSettings(), q, nil)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, 120*time.Minute, slots[0].EndDateTime.Sub(slots[0].StartDateTime))
}

func TestComputeSlotsRejects(t *testing.T) {
	settings := model.DefaultSettings()
	yesterday := bookingDay.AddDate(0, 0, -1)

	_, err := ComputeAvailableSlots(activeTable(), settings, SlotQuery{Date: bookingDay, Duration: 30, Now: yesterday}, nil)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr), "duration below minimum")

	_, err = ComputeAvailableSlots(activeTable(), settings, SlotQuery{Date: bookingDay, Duration: 300, Now: yesterday}, nil)
	assert.True(t, errors.As(err, &verr), "duration above maximum")

	_, err = ComputeAvailableSlots(activeTable(), settings, SlotQuery{Date: yesterday, Duration: 120, Now: bookingDay}, nil)
	assert.True(t, errors.As(err, &verr), "past date")

	_, err = ComputeAvailableSlots(activeTable(), settings, SlotQuery{Date: bookingDay.AddDate(0, 0, 31), Duration: 120, Now: bookingDay}, nil)
	assert.True(t, errors.As(err, &verr), "beyond advance window")

	inactive := activeTable()
	inactive.IsActive = false
	_, err = ComputeAvailableSlots(inactive, settings, SlotQuery{Date: bookingDay, Duration: 120, Now: yesterday}, nil)
	var nerr *NotFoundError
	assert.True(t, errors.As(err, &nerr))
}

func TestComputeSlotsEmptyWhenClosed(t *testing.T) {
	settings := model.DefaultSettings()
	settings.OpeningTime = 22 * 60
	settings.ClosingTime = 2 * 60
	q := SlotQuery{Date: bookingDay, Duration: 120, Now: bookingDay.AddDate(0, 0, -1)}
	slots, err := ComputeAvailableSlots(activeTable(), settings, q, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)

	settings = model.DefaultSettings()
	q.Now = at(22, 0)
	slots, err = ComputeAvailableSlots(activeTable(), settings, q, nil)
	require.NoError(t, err)
	assert.Empty(t, slots, "no room left today")
}
