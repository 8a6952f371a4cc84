package domain

import (
	"fmt"
	"strings"

	"parcel-ledger/internal/core/apperr"

	"github.com/shopspring/decimal"
)

// DeliveryType is the speed class a parcel is shipped with.
type DeliveryType string

const (
	// DeliveryStandard is the regular service.
	DeliveryStandard DeliveryType = "STANDARD"
	// DeliveryExpress is the priority service.
	DeliveryExpress DeliveryType = "EXPRESS"
)

var (
	// ErrTariffNotFound is returned when a tariff id does not resolve.
	ErrTariffNotFound = apperr.New(apperr.KindNotFound, "tariff_not_found", "tariff not found")
	// ErrNegativeRate is returned for a price per kilogram below zero.
	ErrNegativeRate = apperr.New(apperr.KindValidation, "invalid_price_per_kg", "price_per_kg must not be negative")
)

// DeliveryTypes lists every known delivery type.
func DeliveryTypes() []DeliveryType {
	return []DeliveryType{DeliveryStandard, DeliveryExpress}
}

// ParseDeliveryType validates a delivery type string (case-insensitive).
func ParseDeliveryType(s string) (DeliveryType, error) {
	switch t := DeliveryType(strings.ToUpper(strings.TrimSpace(s))); t {
	case DeliveryStandard, DeliveryExpress:
		return t, nil
	default:
		return "", apperr.Validation("delivery_type", fmt.Sprintf("unknown delivery type %q", s))
	}
}

// Tariff is the price per kilogram a company charges for a delivery type.
type Tariff struct {
	ID           uint64          `json:"id"`
	CompanyID    uint64          `json:"company_id"`
	DeliveryType DeliveryType    `json:"delivery_type"`
	PricePerKg   decimal.Decimal `json:"price_per_kg"`
}

// NewTariff builds a tariff, rejecting negative rates. The rate is kept to two decimals.
func NewTariff(companyID uint64, deliveryType DeliveryType, pricePerKg decimal.Decimal) (*Tariff, error) {
	if companyID == 0 {
		return nil, apperr.Validation("company_id", "company_id is required")
	}
	if _, err := ParseDeliveryType(string(deliveryType)); err != nil {
		return nil, err
	}
	if pricePerKg.IsNegative() {
		return nil, ErrNegativeRate.WithField("price_per_kg")
	}
	return &Tariff{
		CompanyID:    companyID,
		DeliveryType: deliveryType,
		PricePerKg:   pricePerKg.Round(2),
	}, nil
}

// PriceFor returns weight × rate.
func (t *Tariff) PriceFor(weightKg decimal.Decimal) decimal.Decimal {
	if t == nil {
		return decimal.Zero
	}
	return weightKg.Mul(t.PricePerKg)
}

// ErrCompanyNotFound is returned when a tariff names a company that does not exist.
var ErrCompanyNotFound = apperr.New(apperr.KindNotFound, "company_not_found", "company not found")
