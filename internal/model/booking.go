package model

import (
	"encoding/json"
	"time"
)

// Booking records a user's reservation of a single table for a time
// window.  Financial and contact fields are snapshots taken when the
// booking is created so that later edits to the table, menu or user
// profile do not rewrite historical bookings.
//
// Fields:
//  ID                 – primary key identifier.
//  BookingNumber      – public 8-digit number, unique across bookings.
//  UserID             – owner of the booking.
//  TableID            – reserved table.
//  Date               – calendar date of StartTime in the restaurant zone.
//  StartTime/EndTime  – reserved window, half-open [start, end).
//  Duration           – EndTime − StartTime in whole minutes.
//  GuestsCount        – number of guests.
//  Status             – lifecycle state, see Status.
//  TablePrice         – table price at booking time.
//  DepositAmount      – upfront amount owed.
//  TotalAmount        – table price plus pre-ordered items.
//  Version            – optimistic concurrency counter.
type Booking struct {
	ID                 uint64            `json:"id"`                  // bookings.id
	BookingNumber      string            `json:"booking_number"`      // bookings.booking_number
	UserID             uint64            `json:"user_id"`             // bookings.user_id
	TableID            uint64            `json:"table_id"`            // bookings.table_id
	Date               string            `json:"date"`                // bookings.date (YYYY-MM-DD)
	StartTime          time.Time         `json:"start_time"`          // bookings.start_time
	EndTime            time.Time         `json:"end_time"`            // bookings.end_time
	Duration           int               `json:"duration"`            // bookings.duration (minutes)
	GuestsCount        int               `json:"guests_count"`        // bookings.guests_count
	Status             Status            `json:"status"`              // bookings.status
	Comment            string            `json:"comment"`             // bookings.comment
	SpecialRequests    string            `json:"special_requests"`    // bookings.special_requests
	ContactName        string            `json:"contact_name"`        // bookings.contact_name
	ContactPhone       string            `json:"contact_phone"`       // bookings.contact_phone
	ContactEmail       string            `json:"contact_email"`       // bookings.contact_email
	TablePrice         Money             `json:"table_price"`         // bookings.table_price
	DepositAmount      Money             `json:"deposit_amount"`      // bookings.deposit_amount
	TotalAmount        Money             `json:"total_amount"`        // bookings.total_amount
	ConfirmedAt        *time.Time        `json:"confirmed_at"`        // bookings.confirmed_at (nullable)
	CancelledAt        *time.Time        `json:"cancelled_at"`        // bookings.cancelled_at (nullable)
	CancellationReason string            `json:"cancellation_reason"` // bookings.cancellation_reason
	Version            uint32            `json:"version"`             // bookings.version
	CreatedAt          time.Time         `json:"created_at"`          // bookings.created_at
	UpdatedAt          time.Time         `json:"updated_at"`          // bookings.updated_at
	MenuItems          []BookingMenuItem `json:"menu_items"`
}

// RemainingAmount is what is still owed once the deposit is paid.
func (b *Booking) RemainingAmount() Money { return b.TotalAmount - b.DepositAmount }

type bookingFields Booking

// MarshalJSON adds the derived remaining_amount to the stored fields.
func (b Booking) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		bookingFields
		RemainingAmount Money `json:"remaining_amount"`
	}{bookingFields(b), b.RemainingAmount()})
}

// CanBeCancelled reports whether the booking may still be cancelled at
// now.  The booking must not be terminal and now must be strictly before
// the start time minus the cancellation notice.
func (b *Booking) CanBeCancelled(now time.Time, noticeHours int) bool {
	if b.Status.IsTerminal() {
		return false
	}
	deadline := b.StartTime.Add(-time.Duration(noticeHours) * time.Hour)
	return now.Before(deadline)
}

// InProgress reports whether the guests are expected at the table at now.
func (b *Booking) InProgress(now time.Time) bool {
	if b.Status != StatusConfirmed && b.Status != StatusActive {
		return false
	}
	return !now.Before(b.StartTime) && !now.After(b.EndTime)
}

// BookingMenuItem is a pre-ordered dish attached to a booking.  A menu
// item appears at most once per booking; repeat orders raise Quantity.
// PricePerItem is copied from the menu when the row is first created
// and never changes afterwards.
type BookingMenuItem struct {
	BookingID    uint64 `json:"-"`              // booking_menu_items.booking_id
	MenuItemID   uint64 `json:"menu_item_id"`   // booking_menu_items.menu_item_id
	Name         string `json:"name"`           // booking_menu_items.name
	Quantity     int    `json:"quantity"`       // booking_menu_items.quantity
	PricePerItem Money  `json:"price_per_item"` // booking_menu_items.price_per_item
	Notes        string `json:"notes"`          // booking_menu_items.notes
}

// TotalPrice is PricePerItem × Quantity.
func (i BookingMenuItem) TotalPrice() Money { return i.PricePerItem.Mul(i.Quantity) }

type menuItemFields BookingMenuItem

// MarshalJSON adds the derived total_price to the stored fields.
func (i BookingMenuItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		menuItemFields
		TotalPrice Money `json:"total_price"`
	}{menuItemFields(i), i.TotalPrice()})
}

// History actions.
const (
	ActionCreated      = "created"
	ActionStatusChange = "status_change"
)

// BookingHistory is one append-only audit entry.  ChangedBy is nil for
// transitions initiated by the system.
type BookingHistory struct {
	ID        uint64    `json:"id"`         // booking_history.id
	BookingID uint64    `json:"booking_id"` // booking_history.booking_id
	Action    string    `json:"action"`     // booking_history.action
	OldStatus Status    `json:"old_status"` // booking_history.old_status
	NewStatus Status    `json:"new_status"` // booking_history.new_status
	ChangedBy *uint64   `json:"changed_by"` // booking_history.changed_by (nullable)
	Comment   string    `json:"comment"`    // booking_history.comment
	CreatedAt time.Time `json:"created_at"` // booking_history.created_at
}

// BookingFilter narrows booking listings.  Zero values mean "any".
type BookingFilter struct {
	UserID uint64
	Status Status
	Date   string
}

// BookingStats aggregates bookings for reporting.
type BookingStats struct {
	Total        int            `json:"total_bookings"`
	Today        int            `json:"today_bookings"`
	InProgress   int            `json:"in_progress"` // confirmed or active bookings whose window contains now
	ByStatus     map[Status]int `json:"by_status"`
	TotalRevenue Money          `json:"total_revenue"`
}
