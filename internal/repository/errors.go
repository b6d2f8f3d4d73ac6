// Package repository defines the persistence contract of the booking core
// and its MySQL and in-memory implementations.  The sentinel errors below
// are shared by every implementation so that the service layer can tell
// failure scenarios apart without knowing which store is in use.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a conditional write lost a race, for
// example when a booking's status or version changed between read and
// update.
var ErrConflict = errors.New("conflict")

// ErrSettingsExists is returned when a second restaurant settings row
// would be created.
var ErrSettingsExists = errors.New("restaurant settings already exist")

// ErrDuplicate is returned when a unique key is violated.
var ErrDuplicate = errors.New("duplicate entry")
