package domain

import (
	"fmt"
	"strings"
	"time"

	"parcel-ledger/internal/core/apperr"
	registry "parcel-ledger/internal/features/registry/domain"

	"github.com/shopspring/decimal"
)

// maxWeightKg is the largest weight the numeric(8,3) column holds.
var maxWeightKg = decimal.RequireFromString("99999.999")

// Parcel is a shipment tracked by the ledger.
type Parcel struct {
	ID                uint64
	TrackingNumber    string
	CompanyID         *uint64
	SenderID          uint64
	ReceiverID        uint64
	SenderOfficeID    *uint64
	ReceiverOfficeID  *uint64
	PickupAddressID   *uint64
	DeliveryAddressID *uint64
	DeliveryType      registry.DeliveryType
	WeightKg          decimal.Decimal
	// Tariff is the rate in effect, nil when the company has none for the delivery type.
	Tariff         *registry.Tariff
	Status         StatusCode
	RegisteredByID *uint64
	CreatedAt      time.Time
	DeliveredAt    *time.Time
	// Version is bumped by every write and checked by the next one.
	Version int64

	// Labels are filled by the store on reads for display purposes.
	Labels Labels
}

// Labels are human-readable names of the records a parcel references.
type Labels struct {
	Sender          string
	Receiver        string
	SenderOffice    string
	ReceiverOffice  string
	PickupAddress   string
	DeliveryAddress string
	RegisteredBy    string
}

// ParseWeight parses a weight in kilograms: positive, at most three decimals.
func ParseWeight(raw string) (decimal.Decimal, error) {
	w, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, apperr.Validation("weight_kg", fmt.Sprintf("weight_kg %q is not a decimal number", raw))
	}
	if !w.IsPositive() {
		return decimal.Zero, apperr.Validation("weight_kg", "weight_kg must be positive")
	}
	if !w.Equal(w.Round(3)) {
		return decimal.Zero, apperr.Validation("weight_kg", "weight_kg must have at most 3 decimal places")
	}
	if w.GreaterThan(maxWeightKg) {
		return decimal.Zero, apperr.Validation("weight_kg", "weight_kg must be at most "+maxWeightKg.String())
	}
	return w, nil
}

// Price is weight × tariff rate, or zero without a tariff.
func (p *Parcel) Price() decimal.Decimal {
	return p.Tariff.PriceFor(p.WeightKg)
}

// TariffID returns the id of the tariff in effect, if any.
func (p *Parcel) TariffID() *uint64 {
	if p.Tariff == nil {
		return nil
	}
	id := p.Tariff.ID
	return &id
}

// IsTerminal reports whether the parcel can no longer change.
func (p *Parcel) IsTerminal() bool {
	return p.Status.Terminal()
}

// DeletableStatuses lists the statuses a parcel may be removed in.
func DeletableStatuses() []StatusCode {
	return []StatusCode{StatusCreated, StatusCancelled}
}

// CanDelete reports whether the parcel may be removed.
func (p *Parcel) CanDelete() bool {
	for _, code := range DeletableStatuses() {
		if p.Status == code {
			return true
		}
	}
	return false
}

// IsParty reports whether userID is the sender or the receiver.
func (p *Parcel) IsParty(userID uint64) bool {
	return p.SenderID == userID || p.ReceiverID == userID
}

// ValidateRoute checks that both ends of the route are known and that the
// tariff matches the delivery type.
func (p *Parcel) ValidateRoute() error {
	if p.SenderID == p.ReceiverID {
		return ErrSameParties.WithField("receiver_id")
	}
	if p.SenderOfficeID == nil && p.PickupAddressID == nil {
		return ErrNoPickup.WithField("sender_office_id")
	}
	if p.ReceiverOfficeID == nil && p.DeliveryAddressID == nil {
		return ErrNoDelivery.WithField("receiver_office_id")
	}
	if p.Tariff != nil && p.Tariff.DeliveryType != p.DeliveryType {
		return ErrTariffMismatch.WithField("delivery_type").WithMessage(fmt.Sprintf(
			"tariff delivery type (%s) must match parcel delivery type (%s)", p.Tariff.DeliveryType, p.DeliveryType))
	}
	return nil
}

// Transition moves the parcel to target. Any non-terminal status may move to any
// other status; terminal statuses accept nothing. DeliveredAt is stamped once, on
// the move to DELIVERED.
func Transition(p *Parcel, target StatusCode, now time.Time) error {
	if _, ok := LookupStatus(target); !ok {
		return apperr.Validation("status", fmt.Sprintf("unknown status %q", target))
	}
	if p.IsTerminal() {
		return ErrParcelTerminal.WithDetails(map[string]any{"status": string(p.Status)})
	}

	p.Status = target
	if target == StatusDelivered && p.DeliveredAt == nil {
		at := now.UTC()
		p.DeliveredAt = &at
	}
	return nil
}

// HistoryEntry is one append-only record of a status change.
type HistoryEntry struct {
	ID          uint64     `json:"id"`
	ParcelID    uint64     `json:"parcel_id"`
	Status      StatusCode `json:"status"`
	OfficeID    *uint64    `json:"office_id,omitempty"`
	Office      string     `json:"office,omitempty"`
	ChangedByID *uint64    `json:"changed_by_id,omitempty"`
	ChangedBy   string     `json:"changed_by,omitempty"`
	Note        string     `json:"note"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NoteType classifies a parcel note.
type NoteType string

const (
	NoteGeneral  NoteType = "GENERAL"
	NoteDelivery NoteType = "DELIVERY"
	NoteIssue    NoteType = "ISSUE"
)

// ParseNoteType validates a note type, defaulting to GENERAL when empty.
func ParseNoteType(s string) (NoteType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return NoteGeneral, nil
	}
	switch t := NoteType(s); t {
	case NoteGeneral, NoteDelivery, NoteIssue:
		return t, nil
	default:
		return "", apperr.Validation("note_type", fmt.Sprintf("unknown note type %q", s))
	}
}

// Note is a free-text remark attached to a parcel by staff.
type Note struct {
	ID          uint64    `json:"id"`
	ParcelID    uint64    `json:"parcel_id"`
	Type        NoteType  `json:"note_type"`
	Content     string    `json:"content"`
	CreatedByID *uint64   `json:"created_by_id,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
