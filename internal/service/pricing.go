package service

import "github.com/iliyamo/restaurant-booking/internal/model"

// RecomputeTotal returns the table price plus every pre-ordered item at
// its snapshot price.  It is the only place the total is derived and is
// called by create and by the menu item operations.
func RecomputeTotal(tablePrice model.Money, items []model.BookingMenuItem) model.Money {
	total := tablePrice
	for _, it := range items {
		total += it.TotalPrice()
	}
	return total
}

// deriveFinancials fills the price snapshot, deposit and total of a new
// booking.
func deriveFinancials(b *model.Booking, table *model.Table) {
	b.TablePrice = table.PricePerHour
	b.DepositAmount = table.DepositFor(b.TablePrice)
	b.TotalAmount = RecomputeTotal(b.TablePrice, b.MenuItems)
}
