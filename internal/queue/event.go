// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// NotificationsQueue is the durable queue carrying booking events.
const NotificationsQueue = "booking.notifications"

// Event types.
const (
	EventBookingCreated = "booking.created"
	EventStatusChanged  = "booking.status_changed"
	EventReminder       = "booking.reminder"
)

// BookingEvent is published after a booking is created, changes status,
// or is due tomorrow.  It carries enough information for downstream
// consumers to notify the guest without querying the primary database.
// ID is unique per event and is used to drop redelivered duplicates.
type BookingEvent struct {
	ID            string       `json:"id"`
	Type          string       `json:"type"`
	BookingID     uint64       `json:"booking_id"`
	BookingNumber string       `json:"booking_number"`
	UserID        uint64       `json:"user_id"`
	TableID       uint64       `json:"table_id"`
	OldStatus     model.Status `json:"old_status,omitempty"`
	Status        model.Status `json:"status"`
	StartTime     string       `json:"start_time"`
	EndTime       string       `json:"end_time"`
	GuestsCount   int          `json:"guests_count"`
	ContactName   string       `json:"contact_name"`
	ContactPhone  string       `json:"contact_phone"`
	ContactEmail  string       `json:"contact_email"`
	TotalAmount   model.Money  `json:"total_amount"`
	DepositAmount model.Money  `json:"deposit_amount"`
	ChangedBy     *uint64      `json:"changed_by,omitempty"`
	Comment       string       `json:"comment,omitempty"`
	OccurredAt    string       `json:"occurred_at"`
}

// NewBookingEvent snapshots b into an event of the given type.
func NewBookingEvent(typ string, b *model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		ID:            uuid.NewString(),
		Type:          typ,
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		UserID:        b.UserID,
		TableID:       b.TableID,
		Status:        b.Status,
		StartTime:     b.StartTime.UTC().Format(time.RFC3339),
		EndTime:       b.EndTime.UTC().Format(time.RFC3339),
		GuestsCount:   b.GuestsCount,
		ContactName:   b.ContactName,
		ContactPhone:  b.ContactPhone,
		ContactEmail:  b.ContactEmail,
		TotalAmount:   b.TotalAmount,
		DepositAmount: b.DepositAmount,
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}
