// Package access is the single authorization point consulted by every service.
package access

import (
	"fmt"
	"strings"

	"parcel-ledger/internal/core/apperr"
)

// Role is the closed set of actor roles.
type Role string

const (
	// RoleAdmin manages everything.
	RoleAdmin Role = "ADMIN"
	// RoleEmployee runs day-to-day operations.
	RoleEmployee Role = "EMPLOYEE"
	// RoleClient sends and receives parcels.
	RoleClient Role = "CLIENT"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleEmployee, RoleClient:
		return r, nil
	default:
		return "", apperr.Validation("role", fmt.Sprintf("unknown role %q", s))
	}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	// UserID identifies the caller.
	UserID uint64
	// Role is the caller's role.
	Role Role
	// Superuser grants the same rights as RoleAdmin.
	Superuser bool
}

// IsStaff reports whether the actor is an admin, employee or superuser.
func (a *Actor) IsStaff() bool {
	if a == nil {
		return false
	}
	return a.Superuser || a.Role == RoleAdmin || a.Role == RoleEmployee
}

// Can reports whether Authorize would allow the capability.
func (a *Actor) Can(c Capability) bool {
	return Authorize(a, c) == nil
}

// Capability is an operation gated by the policy.
type Capability int

const (
	CreateParcel Capability = iota + 1
	ChangeParcelStatus
	UpdateParcel
	DeleteParcel
	AddParcelNote
	ViewAllParcels
	ManageEmployees
	ManageOffices
	ManageCompanies
	ManageTariffs
	ManageClients
	ViewReports
)

var capabilityNames = map[Capability]string{
	CreateParcel:       "create_parcel",
	ChangeParcelStatus: "change_parcel_status",
	UpdateParcel:       "update_parcel",
	DeleteParcel:       "delete_parcel",
	AddParcelNote:      "add_parcel_note",
	ViewAllParcels:     "view_all_parcels",
	ManageEmployees:    "manage_employees",
	ManageOffices:      "manage_offices",
	ManageCompanies:    "manage_companies",
	ManageTariffs:      "manage_tariffs",
	ManageClients:      "manage_clients",
	ViewReports:        "view_reports",
}

func (c Capability) String() string {
	if n, ok := capabilityNames[c]; ok {
		return n
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

var (
	// ErrUnauthenticated is returned when no actor is supplied.
	ErrUnauthenticated = apperr.New(apperr.KindUnauthenticated, "unauthenticated", "authentication required")
	// ErrForbidden is returned when the actor lacks the capability.
	ErrForbidden = apperr.New(apperr.KindPermission, "forbidden", "operation not permitted for this role")
	// ErrNotParty is returned when a client reads a parcel they neither sent nor receive.
	ErrNotParty = apperr.New(apperr.KindPermission, "not_parcel_party", "parcel belongs to other clients")
	// ErrNotOwner is returned when a client touches another user's profile.
	ErrNotOwner = apperr.New(apperr.KindPermission, "not_profile_owner", "profile belongs to another user")
)

// Authorize checks the capability for the actor. Authentication is checked first.
func Authorize(actor *Actor, c Capability) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if _, ok := capabilityNames[c]; !ok {
		return ErrForbidden.WithMessage("unknown capability " + c.String())
	}
	// Every gated capability is staff-only; clients reach their own data through
	// CanViewParcel and CanAccessProfile.
	if actor.IsStaff() {
		return nil
	}
	return ErrForbidden.WithMessage(fmt.Sprintf("%s requires an employee or admin", c))
}

// CanViewParcel checks read access to a parcel with the given parties.
func CanViewParcel(actor *Actor, senderID, receiverID uint64) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if actor.IsStaff() {
		return nil
	}
	if actor.UserID == senderID || actor.UserID == receiverID {
		return nil
	}
	return ErrNotParty
}

// CanAccessProfile checks read/write access to a user profile.
func CanAccessProfile(actor *Actor, userID uint64) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if actor.IsStaff() || actor.UserID == userID {
		return nil
	}
	return ErrNotOwner
}
