package domain

import (
	"strings"

	"parcel-ledger/internal/core/apperr"
)

// ErrAddressNotFound is returned when an address id does not resolve.
var ErrAddressNotFound = apperr.New(apperr.KindNotFound, "address_not_found", "address not found")

// Address is a postal address. Addresses are value-like: never edited in place and
// removed once nothing references them.
type Address struct {
	ID         uint64 `json:"id"`
	Country    string `json:"country"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Street     string `json:"street"`
	Details    string `json:"details,omitempty"`
}

// NewAddress trims the fields and checks the mandatory ones.
func NewAddress(country, city, postalCode, street, details string) (*Address, error) {
	a := &Address{
		Country:    strings.TrimSpace(country),
		City:       strings.TrimSpace(city),
		PostalCode: strings.TrimSpace(postalCode),
		Street:     strings.TrimSpace(street),
		Details:    strings.TrimSpace(details),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the mandatory fields.
func (a *Address) Validate() error {
	switch {
	case a.Country == "":
		return apperr.Validation("country", "country is required")
	case a.City == "":
		return apperr.Validation("city", "city is required")
	case a.PostalCode == "":
		return apperr.Validation("postal_code", "postal_code is required")
	case a.Street == "":
		return apperr.Validation("street", "street is required")
	}
	return nil
}

func (a Address) String() string {
	return strings.Join([]string{a.Country, a.City, a.PostalCode, a.Street}, ", ")
}

// ErrOwnerNotFound is returned when an address is linked to a user that does not exist.
var ErrOwnerNotFound = apperr.New(apperr.KindNotFound, "user_not_found", "user not found")
