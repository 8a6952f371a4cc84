package domain

import (
	"fmt"
	"strings"

	"parcel-ledger/internal/core/apperr"
)

// StatusCode identifies a step of the parcel lifecycle.
type StatusCode string

const (
	StatusCreated        StatusCode = "CREATED"
	StatusInTransit      StatusCode = "IN_TRANSIT"
	StatusOutForDelivery StatusCode = "OUT_FOR_DELIVERY"
	StatusDelivered      StatusCode = "DELIVERED"
	StatusReturned       StatusCode = "RETURNED"
	StatusCancelled      StatusCode = "CANCELLED"
)

// Status describes one entry of the status vocabulary.
type Status struct {
	Code        StatusCode `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Terminal    bool       `json:"is_terminal"`
}

var statuses = []Status{
	{StatusCreated, "Created", "Parcel created", false},
	{StatusInTransit, "In Transit", "Parcel in transit", false},
	{StatusOutForDelivery, "Out for Delivery", "Out for delivery", false},
	{StatusDelivered, "Delivered", "Parcel delivered", true},
	{StatusReturned, "Returned", "Returned to sender", true},
	{StatusCancelled, "Cancelled", "Parcel cancelled", true},
}

// Statuses returns the status vocabulary in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// LookupStatus returns the catalog entry for code.
func LookupStatus(code StatusCode) (Status, bool) {
	for _, s := range statuses {
		if s.Code == code {
			return s, true
		}
	}
	return Status{}, false
}

// ParseStatusCode validates a status code string (case-insensitive).
func ParseStatusCode(s string) (StatusCode, error) {
	code := StatusCode(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := LookupStatus(code); !ok {
		return "", apperr.Validation("status", fmt.Sprintf("unknown status %q", s))
	}
	return code, nil
}

// Terminal reports whether no further transitions are allowed from c.
func (c StatusCode) Terminal() bool {
	s, ok := LookupStatus(c)
	return ok && s.Terminal
}

// Name returns the display name of c, or the raw code when it is unknown.
func (c StatusCode) Name() string {
	if s, ok := LookupStatus(c); ok {
		return s.Name
	}
	return string(c)
}
