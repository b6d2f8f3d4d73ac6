package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/restaurant-booking/internal/model"
	q "github.com/iliyamo/restaurant-booking/internal/queue"
	"github.com/iliyamo/restaurant-booking/internal/repository"
)

// DefaultCancellationReason is stored when a cancellation gives none.
const DefaultCancellationReason = "Cancelled by user"

// Actor identifies who performs an operation.
type Actor struct {
	UserID uint64
	Role   string
}

// IsStaff reports whether the actor acts for the restaurant.
func (a Actor) IsStaff() bool { return a.Role == model.RoleStaff }

func (a Actor) owns(b *model.Booking) bool { return a.IsStaff() || a.UserID == b.UserID }

// MenuItemInput is one pre-order line in a request.
type MenuItemInput struct {
	MenuItemID uint64 `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

// CreateBookingInput carries the fields a guest supplies.  Contact
// fields left empty are copied from the user's profile.
type CreateBookingInput struct {
	TableID         uint64          `json:"table_id"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	GuestsCount     int             `json:"guests_count"`
	Comment         string          `json:"comment"`
	SpecialRequests string          `json:"special_requests"`
	ContactName     string          `json:"contact_name"`
	ContactPhone    string          `json:"contact_phone"`
	ContactEmail    string          `json:"contact_email"`
	MenuItems       []MenuItemInput `json:"selected_menu_items"`
}

// BookingService implements the booking lifecycle on top of a Store.
type BookingService struct {
	store    repository.Store
	notifier Notifier
	numbers  *NumberGenerator
	loc      *time.Location
	now      func() time.Time
}

// Option customises a BookingService.
type Option func(*BookingService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *BookingService) { s.now = now } }

// WithLocation sets the restaurant's time zone.  Calendar dates and
// opening hours are interpreted in it.
func WithLocation(loc *time.Location) Option { return func(s *BookingService) { s.loc = loc } }

// WithNotifier sets where post-commit events go.
func WithNotifier(n Notifier) Option { return func(s *BookingService) { s.notifier = n } }

// NewBookingService builds the service.
func NewBookingService(store repository.Store, opts ...Option) *BookingService {
	s := &BookingService{
		store:    store,
		notifier: NopNotifier{},
		numbers:  NewNumberGenerator(),
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Location returns the restaurant time zone.
func (s *BookingService) Location() *time.Location { return s.loc }

func (s *BookingService) settings(ctx context.Context) (model.RestaurantSettings, error) {
	st, err := s.store.Settings(ctx)
	if err != nil {
		return st, fmt.Errorf("load settings: %w", err)
	}
	return st, nil
}

// AvailableSlots lists free windows of the given duration on date
// (YYYY-MM-DD, restaurant zone).  A zero duration selects the default.
func (s *BookingService) AvailableSlots(ctx context.Context, tableID uint64, date string, duration int) ([]Slot, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil, invalid("date must be formatted as YYYY-MM-DD")
	}
	table, err := s.store.TableByID(ctx, tableID)
	if err != nil {
		return nil, lookup(err, "table")
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.store.HoldingBookings(ctx, tableID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	return ComputeAvailableSlots(table, settings, SlotQuery{Date: day, Duration: duration, Now: s.now(), Location: s.loc}, bookings)
}

// Create validates and stores a new pending booking.  The table row is
// locked for the overlap check and insert so two concurrent requests
// for the same window cannot both succeed.
func (s *BookingService) Create(ctx context.Context, actor Actor, in CreateBookingInput) (*model.Booking, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	window := TimeWindow{Start: in.StartTime.In(s.loc), End: in.EndTime.In(s.loc)}
	if !window.Valid() {
		return nil, invalid("end_time must be after start_time")
	}
	if window.Start.Before(now) {
		return nil, invalid("start_time must not be in the past")
	}
	duration := window.Minutes()
	if duration < settings.MinBookingDuration || duration > settings.MaxBookingDuration {
		return nil, invalid("duration must be between %d and %d minutes", settings.MinBookingDuration, settings.MaxBookingDuration)
	}
	lastDay := startOfDay(now, s.loc).AddDate(0, 0, settings.BookingAdvanceDays+1)
	if !window.Start.Before(lastDay) {
		return nil, invalid("bookings can be made at most %d days in advance", settings.BookingAdvanceDays)
	}
	items, err := mergeMenuInputs(in.MenuItems)
	if err != nil {
		return nil, err
	}

	b := &model.Booking{
		UserID:          actor.UserID,
		TableID:         in.TableID,
		Date:            window.Start.Format("2006-01-02"),
		StartTime:       window.Start,
		EndTime:         window.End,
		Duration:        duration,
		GuestsCount:     in.GuestsCount,
		Status:          model.StatusPending,
		Comment:         in.Comment,
		SpecialRequests: in.SpecialRequests,
		ContactName:     in.ContactName,
		ContactPhone:    in.ContactPhone,
		ContactEmail:    in.ContactEmail,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.store.InTx(ctx, func(tx repository.Tx) error {
		table, err := tx.LockTable(ctx, in.TableID)
		if err != nil {
			return lookup(err, "table")
		}
		if !table.IsActive {
			return &NotFoundError{Resource: "table"}
		}
		if !table.Seats(in.GuestsCount) {
			return invalid("guests_count must be between %d and %d for this table", table.MinCapacity, table.Capacity)
		}
		clash, err := tx.Overlapping(ctx, table.ID, window.Start, window.End, 0)
		if err != nil {
			return fmt.Errorf("overlap check: %w", err)
		}
		if len(clash) > 0 {
			return invalid("table is already booked for this time (conflicts with booking #%s)", clash[0].BookingNumber)
		}

		if err := s.snapshotContact(ctx, tx, b); err != nil {
			return err
		}
		b.MenuItems = make([]model.BookingMenuItem, 0, len(items))
		for _, line := range items {
			mi, err := tx.MenuItemByID(ctx, line.MenuItemID)
			if err != nil {
				return lookup(err, "menu item")
			}
			if !mi.IsAvailable {
				return invalid("menu item %q is not available", mi.Name)
			}
			b.MenuItems = append(b.MenuItems, model.BookingMenuItem{
				MenuItemID:   mi.ID,
				Name:         mi.Name,
				Quantity:     line.Quantity,
				PricePerItem: mi.Price,
				Notes:        line.Notes,
			})
		}
		deriveFinancials(b, table)

		if b.BookingNumber, err = s.numbers.Next(ctx, tx.BookingNumberExists); err != nil {
			return err
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return &ConflictError{Reason: "booking number collision, retry the request"}
			}
			return fmt.Errorf("insert booking: %w", err)
		}
		for i := range b.MenuItems {
			b.MenuItems[i].BookingID = b.ID
			if err := tx.SaveBookingMenuItem(ctx, b.MenuItems[i]); err != nil {
				return fmt.Errorf("insert menu item: %w", err)
			}
		}
		return tx.AppendHistory(ctx, &model.BookingHistory{
			BookingID: b.ID,
			Action:    model.ActionCreated,
			NewStatus: model.StatusPending,
			ChangedBy: actorRef(actor),
			Comment:   "Booking created",
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(q.NewBookingEvent(q.EventBookingCreated, b, now))
	return b, nil
}

func (s *BookingService) snapshotContact(ctx context.Context, tx repository.Tx, b *model.Booking) error {
	if b.ContactName != "" && b.ContactPhone != "" && b.ContactEmail != "" {
		return nil
	}
	u, err := tx.UserByID(ctx, b.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	c := u.Contact()
	if b.ContactName == "" {
		b.ContactName = c.Name
	}
	if b.ContactPhone == "" {
		b.ContactPhone = c.Phone
	}
	if b.ContactEmail == "" {
		b.ContactEmail = c.Email
	}
	return nil
}

// mergeMenuInputs validates quantities and folds repeated menu items into
// one line.
func mergeMenuInputs(in []MenuItemInput) ([]MenuItemInput, error) {
	out := make([]MenuItemInput, 0, len(in))
	index := make(map[uint64]int, len(in))
	for _, it := range in {
		if it.Quantity < 1 {
			return nil, invalid("quantity must be at least 1")
		}
		if i, ok := index[it.MenuItemID]; ok {
			out[i].Quantity += it.Quantity
			if it.Notes != "" {
				out[i].Notes = it.Notes
			}
			continue
		}
		index[it.MenuItemID] = len(out)
		out = append(out, it)
	}
	return out, nil
}

func actorRef(a Actor) *uint64 {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}

// transition moves a booking to target under the state machine.  check
// runs on the locked booking before the write and may veto it; after
// runs inside the same transaction once the status row is updated.
func (s *BookingService) transition(ctx context.Context, actor Actor, id uint64, target model.Status, comment string,
	check func(b *model.Booking, now time.Time) error,
	after func(tx repository.Tx, b *model.Booking) error,
) (*model.Booking, error) {
	now := s.now()
	var (
		b    *model.Booking
		from model.Status
	)
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		if b, err = tx.LockBooking(ctx, id); err != nil {
			return lookup(err, "booking")
		}
		if !actor.owns(b) {
			return ErrForbidden
		}
		if !b.Status.CanTransitionTo(target) {
			return invalid("cannot change booking status from %s to %s", b.Status, target)
		}
		if check != nil {
			if err := check(b, now); err != nil {
				return err
			}
		}
		from = b.Status
		b.Status = target
		b.UpdatedAt = now
		if err := tx.UpdateBookingStatus(ctx, b, from, b.Version); err != nil {
			return write(err, "update booking status")
		}
		if err := tx.AppendHistory(ctx, &model.BookingHistory{
			BookingID: b.ID,
			Action:    model.ActionStatusChange,
			OldStatus: from,
			NewStatus: target,
			ChangedBy: actorRef(actor),
			Comment:   comment,
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		if after != nil {
			return after(tx, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ev := q.NewBookingEvent(q.EventStatusChanged, b, now)
	ev.OldStatus = from
	ev.ChangedBy = actorRef(actor)
	ev.Comment = comment
	s.notifier.Notify(ev)
	return b, nil
}

// Confirm accepts a pending booking.
func (s *BookingService) Confirm(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	return s.transition(ctx, actor, id, model.StatusConfirmed, "Booking confirmed",
		func(b *model.Booking, now time.Time) error {
			b.ConfirmedAt = &now
			return nil
		}, nil)
}

// Activate marks the guests as seated.
func (s *BookingService) Activate(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	return s.transition(ctx, actor, id, model.StatusActive, "Guests seated", nil, nil)
}

// Complete closes a booking and counts the visit for its owner.
func (s *BookingService) Complete(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	return s.transition(ctx, actor, id, model.StatusCompleted, "Booking completed", nil,
		func(tx repository.Tx, b *model.Booking) error {
			err := tx.IncrementVisits(ctx, b.UserID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("count visit: %w", err)
			}
			return nil
		})
}

// MarkNoShow records that the guests never arrived.
func (s *BookingService) MarkNoShow(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	return s.transition(ctx, actor, id, model.StatusNoShow, "Guests did not arrive", nil, nil)
}

// Cancel cancels a booking while the cancellation deadline has not
// passed.  The owner or staff may cancel.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, id uint64, reason string) (*model.Booking, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = DefaultCancellationReason
	}
	return s.transition(ctx, actor, id, model.StatusCancelled, reason,
		func(b *model.Booking, now time.Time) error {
			if !b.CanBeCancelled(now, settings.CancellationHours) {
				return invalid("booking can only be cancelled up to %d hours before start", settings.CancellationHours)
			}
			b.CancelledAt = &now
			b.CancellationReason = reason
			return nil
		}, nil)
}

// editMenu runs fn on a locked, non-terminal booking, then recomputes
// and stores the total.
func (s *BookingService) editMenu(ctx context.Context, actor Actor, id uint64, fn func(tx repository.Tx, b *model.Booking) error) (*model.Booking, error) {
	now := s.now()
	var b *model.Booking
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		if b, err = tx.LockBooking(ctx, id); err != nil {
			return lookup(err, "booking")
		}
		if !actor.owns(b) {
			return ErrForbidden
		}
		if b.Status.IsTerminal() {
			return invalid("menu of a %s booking cannot be changed", b.Status)
		}
		if err := fn(tx, b); err != nil {
			return err
		}
		b.TotalAmount = RecomputeTotal(b.TablePrice, b.MenuItems)
		b.UpdatedAt = now
		return write(tx.UpdateBookingTotal(ctx, b, b.Version), "update total")
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// AddMenuItem pre-orders a dish.  Ordering a dish already on the booking
// raises its quantity; the price captured the first time is kept.
func (s *BookingService) AddMenuItem(ctx context.Context, actor Actor, id uint64, in MenuItemInput) (*model.Booking, error) {
	if in.Quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}
	return s.editMenu(ctx, actor, id, func(tx repository.Tx, b *model.Booking) error {
		for i := range b.MenuItems {
			if b.MenuItems[i].MenuItemID == in.MenuItemID {
				b.MenuItems[i].Quantity += in.Quantity
				if in.Notes != "" {
					b.MenuItems[i].Notes = in.Notes
				}
				return saveItem(ctx, tx, b.MenuItems[i])
			}
		}
		mi, err := tx.MenuItemByID(ctx, in.MenuItemID)
		if err != nil {
			return lookup(err, "menu item")
		}
		if !mi.IsAvailable {
			return invalid("menu item %q is not available", mi.Name)
		}
		item := model.BookingMenuItem{
			BookingID:    b.ID,
			MenuItemID:   mi.ID,
			Name:         mi.Name,
			Quantity:     in.Quantity,
			PricePerItem: mi.Price,
			Notes:        in.Notes,
		}
		b.MenuItems = append(b.MenuItems, item)
		return saveItem(ctx, tx, item)
	})
}

// SetMenuItemQuantity replaces the quantity of a dish already on the
// booking.
func (s *BookingService) SetMenuItemQuantity(ctx context.Context, actor Actor, id, menuItemID uint64, quantity int, notes string) (*model.Booking, error) {
	if quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}
	return s.editMenu(ctx, actor, id, func(tx repository.Tx, b *model.Booking) error {
		for i := range b.MenuItems {
			if b.MenuItems[i].MenuItemID == menuItemID {
				b.MenuItems[i].Quantity = quantity
				if notes != "" {
					b.MenuItems[i].Notes = notes
				}
				return saveItem(ctx, tx, b.MenuItems[i])
			}
		}
		return &NotFoundError{Resource: "booking menu item"}
	})
}

// RemoveMenuItem drops a dish from the booking.
func (s *BookingService) RemoveMenuItem(ctx context.Context, actor Actor, id, menuItemID uint64) (*model.Booking, error) {
	return s.editMenu(ctx, actor, id, func(tx repository.Tx, b *model.Booking) error {
		for i := range b.MenuItems {
			if b.MenuItems[i].MenuItemID == menuItemID {
				if err := tx.DeleteBookingMenuItem(ctx, b.ID, menuItemID); err != nil {
					return lookup(err, "booking menu item")
				}
				b.MenuItems = append(b.MenuItems[:i:i], b.MenuItems[i+1:]...)
				return nil
			}
		}
		return &NotFoundError{Resource: "booking menu item"}
	})
}

func saveItem(ctx context.Context, tx repository.Tx, it model.BookingMenuItem) error {
	if err := tx.SaveBookingMenuItem(ctx, it); err != nil {
		return fmt.Errorf("save menu item: %w", err)
	}
	return nil
}

// Delete removes a booking with its menu items and history.  Staff only.
func (s *BookingService) Delete(ctx context.Context, actor Actor, id uint64) error {
	if !actor.IsStaff() {
		return ErrForbidden
	}
	return s.store.InTx(ctx, func(tx repository.Tx) error {
		if err := tx.DeleteBooking(ctx, id); err != nil {
			return lookup(err, "booking")
		}
		return nil
	})
}

// Get returns a booking visible to the actor.
func (s *BookingService) Get(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	b, err := s.store.BookingByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "booking")
	}
	if !actor.owns(b) {
		return nil, ErrForbidden
	}
	return b, nil
}

// History returns the audit trail of a booking visible to the actor.
func (s *BookingService) History(ctx context.Context, actor Actor, id uint64) ([]model.BookingHistory, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	h, err := s.store.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return h, nil
}

// List returns the actor's bookings; staff see everyone's.
func (s *BookingService) List(ctx context.Context, actor Actor, f model.BookingFilter) ([]model.Booking, error) {
	if !actor.IsStaff() {
		f.UserID = actor.UserID
	}
	if f.Status != "" && !f.Status.IsValid() {
		return nil, invalid("unknown status %q", f.Status)
	}
	list, err := s.store.ListBookings(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return list, nil
}

// Statistics aggregates all bookings.  Staff only.
func (s *BookingService) Statistics(ctx context.Context, actor Actor) (model.BookingStats, error) {
	if !actor.IsStaff() {
		return model.BookingStats{}, ErrForbidden
	}
	now := s.now()
	today := now.In(s.loc).Format("2006-01-02")
	st, err := s.store.Statistics(ctx, today)
	if err != nil {
		return st, fmt.Errorf("statistics: %w", err)
	}
	list, err := s.store.ListBookings(ctx, model.BookingFilter{Date: today})
	if err != nil {
		return st, fmt.Errorf("statistics: %w", err)
	}
	for i := range list {
		if list[i].InProgress(now) {
			st.InProgress++
		}
	}
	return st, nil
}
