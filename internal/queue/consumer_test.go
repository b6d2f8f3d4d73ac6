package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

type memorySeen struct {
	keys map[string]bool
	err  error
}

func (m *memorySeen) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	if m.err != nil {
		return redis.NewBoolResult(false, m.err)
	}
	if m.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	m.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func sampleEvent(t *testing.T, typ string) []byte {
	t.Helper()
	start := time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)
	b := &model.Booking{
		ID: 11, BookingNumber: "12345678", UserID: 1, TableID: 7, Status: model.StatusConfirmed,
		StartTime: start, EndTime: start.Add(2 * time.Hour), GuestsCount: 2,
		ContactName: "Ann", ContactEmail: "ann@example.com", ContactPhone: "+100",
		TotalAmount: 8000000, DepositAmount: 4000000,
	}
	ev := NewBookingEvent(typ, b, start.Add(-time.Hour))
	ev.OldStatus = model.StatusPending
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	return body
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
}

func TestHandleMessageAppendsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "notifications.log")
	c := &Consumer{LogPath: path}

	require.NoError(t, c.handleMessage(context.Background(), sampleEvent(t, EventStatusChanged)))
	require.NoError(t, c.handleMessage(context.Background(), sampleEvent(t, EventBookingCreated)))

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Status changed pending -> confirmed")
	assert.Contains(t, lines[0], "booking=#12345678")
	assert.Contains(t, lines[0], "total=80000.00")
	assert.Contains(t, lines[1], "Booking created")
	assert.Contains(t, lines[1], `to="Ann" <ann@example.com> +100`)
}

func TestHandleMessageDropsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.log")
	c := &Consumer{LogPath: path, Seen: &memorySeen{keys: map[string]bool{}}, SeenTTL: time.Hour}
	body := sampleEvent(t, EventReminder)

	require.NoError(t, c.handleMessage(context.Background(), body))
	require.NoError(t, c.handleMessage(context.Background(), body))
	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Reminder")
}

func TestHandleMessageRecordsWhenDedupeFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.log")
	c := &Consumer{LogPath: path, Seen: &memorySeen{err: errors.New("redis down")}}
	body := sampleEvent(t, EventBookingCreated)

	require.NoError(t, c.handleMessage(context.Background(), body))
	require.NoError(t, c.handleMessage(context.Background(), body))
	assert.Len(t, readLines(t, path), 2)
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	c := &Consumer{LogPath: filepath.Join(t.TempDir(), "n.log")}
	assert.Error(t, c.handleMessage(context.Background(), []byte("{not json")))
}

func TestNewBookingEventIDsAreUnique(t *testing.T) {
	b := &model.Booking{ID: 1}
	a := NewBookingEvent(EventBookingCreated, b, time.Now())
	z := NewBookingEvent(EventBookingCreated, b, time.Now())
	assert.NotEqual(t, a.ID, z.ID)
	assert.NotEmpty(t, a.ID)
}
