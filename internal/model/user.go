package model

import "time"

// Role names carried in access tokens.
const (
	RoleCustomer = "CUSTOMER"
	RoleStaff    = "STAFF"
)

// User represents a row of the `users` table.  Only the columns the
// booking flow reads are mapped; account management lives elsewhere.
//
// Fields:
//  ID          – primary key identifier of the user.
//  FullName    – display name, copied into bookings as the contact name.
//  Phone       – contact phone.
//  Email       – contact email.
//  Role        – CUSTOMER or STAFF.
//  TotalVisits – number of completed bookings.
type User struct {
	ID          uint64    // users.id
	FullName    string    // users.full_name
	Phone       string    // users.phone
	Email       string    // users.email
	Role        string    // users.role
	TotalVisits int       // users.total_visits
	CreatedAt   time.Time // users.created_at
}

// Contact is the snapshot of user contact data stored on a booking.
type Contact struct {
	Name  string
	Phone string
	Email string
}

// Contact returns the user's current contact details.
func (u *User) Contact() Contact {
	return Contact{Name: u.FullName, Phone: u.Phone, Email: u.Email}
}
