package domain

import (
	"strings"
	"time"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/apperr"
)

var (
	// ErrUserNotFound is returned when a user id or email does not resolve.
	ErrUserNotFound = apperr.New(apperr.KindNotFound, "user_not_found", "user not found")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = apperr.New(apperr.KindConflict, "email_taken", "a user with this email already exists")
	// ErrUsernameTaken is returned when the username is already registered.
	ErrUsernameTaken = apperr.New(apperr.KindConflict, "username_taken", "a user with this username already exists")
	// ErrInvalidCredentials is returned by login for an unknown email or wrong password.
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthenticated, "invalid_credentials", "invalid email or password")
	// ErrUserHasParcels blocks deleting a user who is a party to existing parcels.
	ErrUserHasParcels = apperr.New(apperr.KindState, "user_has_parcels", "user is sender or receiver of existing parcels")
)

// User is any actor of the system.
type User struct {
	ID               uint64      `json:"id"`
	Username         string      `json:"username"`
	Email            string      `json:"email"`
	FirstName        string      `json:"first_name"`
	LastName         string      `json:"last_name"`
	Phone            string      `json:"phone,omitempty"`
	Role             access.Role `json:"role"`
	Superuser        bool        `json:"is_superuser"`
	PasswordHash     string      `json:"-"`
	DefaultAddressID *uint64     `json:"default_address_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName is the full name, falling back to the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Actor returns the access-policy view of the user.
func (u *User) Actor() *access.Actor {
	return &access.Actor{UserID: u.ID, Role: u.Role, Superuser: u.Superuser}
}

// PartyCounts is how many parcels a user sent and receives.
type PartyCounts struct {
	Sent     int64 `json:"sent"`
	Received int64 `json:"received"`
}

// Any reports whether the user is party to at least one parcel.
func (p PartyCounts) Any() bool {
	return p.Sent > 0 || p.Received > 0
}
