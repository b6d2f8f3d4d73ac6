package model

// Table is a bookable table.  Guests must number between MinCapacity and
// Capacity inclusive.
//
// Fields:
//  ID           – primary key identifier.
//  ZoneID       – zone (hall, terrace, ...) the table belongs to.
//  Name         – display name, unique within a zone.
//  Capacity     – maximum number of guests.
//  MinCapacity  – minimum number of guests.
//  PricePerHour – price charged for the table.
//  Deposit      – explicit deposit; zero means half of the price.
//  IsActive     – inactive tables cannot be booked.
type Table struct {
	ID           uint64 `json:"id"`             // tables.id
	ZoneID       uint64 `json:"zone_id"`        // tables.zone_id
	Name         string `json:"name"`           // tables.name
	Capacity     int    `json:"capacity"`       // tables.capacity
	MinCapacity  int    `json:"min_capacity"`   // tables.min_capacity
	PricePerHour Money  `json:"price_per_hour"` // tables.price_per_hour
	Deposit      Money  `json:"deposit"`        // tables.deposit
	IsActive     bool   `json:"is_active"`      // tables.is_active
}

// Seats reports whether the table accepts the given number of guests.
func (t *Table) Seats(guests int) bool {
	return guests >= t.MinCapacity && guests <= t.Capacity
}

// DepositFor returns the deposit owed for a booking at the given price.
func (t *Table) DepositFor(price Money) Money {
	if t.Deposit > 0 {
		return t.Deposit
	}
	return price.Half()
}

// MenuItem is the part of a menu entry that bookings depend on.
type MenuItem struct {
	ID          uint64 `json:"id"`           // menu_items.id
	Name        string `json:"name"`         // menu_items.name
	Price       Money  `json:"price"`        // menu_items.price
	IsAvailable bool   `json:"is_available"` // menu_items.is_available
}
