package domain

import (
	"time"

	registry "parcel-ledger/internal/features/registry/domain"
)

// ParcelView is the full projection returned to staff and to the parcel's parties.
type ParcelView struct {
	ID                uint64                `json:"id"`
	TrackingNumber    string                `json:"tracking_number"`
	Status            StatusCode            `json:"status"`
	StatusName        string                `json:"status_name"`
	IsTerminal        bool                  `json:"is_terminal"`
	DeliveryType      registry.DeliveryType `json:"delivery_type"`
	WeightKg          string                `json:"weight_kg"`
	Price             string                `json:"price"`
	PricePerKg        *string               `json:"price_per_kg,omitempty"`
	CompanyID         *uint64               `json:"company_id,omitempty"`
	TariffID          *uint64               `json:"tariff_id,omitempty"`
	SenderID          uint64                `json:"sender_id"`
	Sender            string                `json:"sender"`
	ReceiverID        uint64                `json:"receiver_id"`
	Receiver          string                `json:"receiver"`
	SenderOfficeID    *uint64               `json:"sender_office_id,omitempty"`
	SenderOffice      string                `json:"sender_office,omitempty"`
	ReceiverOfficeID  *uint64               `json:"receiver_office_id,omitempty"`
	ReceiverOffice    string                `json:"receiver_office,omitempty"`
	PickupAddressID   *uint64               `json:"pickup_address_id,omitempty"`
	PickupAddress     string                `json:"pickup_address,omitempty"`
	DeliveryAddressID *uint64               `json:"delivery_address_id,omitempty"`
	DeliveryAddress   string                `json:"delivery_address,omitempty"`
	RegisteredByID    *uint64               `json:"registered_by_id,omitempty"`
	RegisteredBy      string                `json:"registered_by,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	DeliveredAt       *time.Time            `json:"delivered_at,omitempty"`
	Version           int64                 `json:"version"`
	History           []HistoryEntry        `json:"history,omitempty"`
	Notes             []Note                `json:"notes,omitempty"`
}

// NewParcelView projects a parcel for authorized readers.
func NewParcelView(p *Parcel) ParcelView {
	v := ParcelView{
		ID:                p.ID,
		TrackingNumber:    p.TrackingNumber,
		Status:            p.Status,
		StatusName:        p.Status.Name(),
		IsTerminal:        p.IsTerminal(),
		DeliveryType:      p.DeliveryType,
		WeightKg:          p.WeightKg.StringFixed(3),
		Price:             p.Price().StringFixed(2),
		CompanyID:         p.CompanyID,
		TariffID:          p.TariffID(),
		SenderID:          p.SenderID,
		Sender:            p.Labels.Sender,
		ReceiverID:        p.ReceiverID,
		Receiver:          p.Labels.Receiver,
		SenderOfficeID:    p.SenderOfficeID,
		SenderOffice:      p.Labels.SenderOffice,
		ReceiverOfficeID:  p.ReceiverOfficeID,
		ReceiverOffice:    p.Labels.ReceiverOffice,
		PickupAddressID:   p.PickupAddressID,
		PickupAddress:     p.Labels.PickupAddress,
		DeliveryAddressID: p.DeliveryAddressID,
		DeliveryAddress:   p.Labels.DeliveryAddress,
		RegisteredByID:    p.RegisteredByID,
		RegisteredBy:      p.Labels.RegisteredBy,
		CreatedAt:         p.CreatedAt,
		DeliveredAt:       p.DeliveredAt,
		Version:           p.Version,
	}
	if p.Tariff != nil {
		rate := p.Tariff.PricePerKg.StringFixed(2)
		v.PricePerKg = &rate
	}
	return v
}

// TrackingEvent is a history entry stripped of who made the change.
type TrackingEvent struct {
	Status     StatusCode `json:"status"`
	StatusName string     `json:"status_name"`
	Office     string     `json:"office,omitempty"`
	Note       string     `json:"note,omitempty"`
	At         time.Time  `json:"at"`
}

// TrackingView is the public projection of a parcel. It carries no identity of the
// sender, the receiver or the staff who handled it.
type TrackingView struct {
	TrackingNumber string                `json:"tracking_number"`
	Status         StatusCode            `json:"status"`
	StatusName     string                `json:"status_name"`
	IsTerminal     bool                  `json:"is_terminal"`
	DeliveryType   registry.DeliveryType `json:"delivery_type"`
	WeightKg       string                `json:"weight_kg"`
	SenderOffice   string                `json:"sender_office,omitempty"`
	ReceiverOffice string                `json:"receiver_office,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	DeliveredAt    *time.Time            `json:"delivered_at,omitempty"`
	History        []TrackingEvent       `json:"history"`
}

// NewTrackingView builds the public projection. history must be newest first.
func NewTrackingView(p *Parcel, history []HistoryEntry) TrackingView {
	events := make([]TrackingEvent, 0, len(history))
	for _, h := range history {
		events = append(events, TrackingEvent{
			Status:     h.Status,
			StatusName: h.Status.Name(),
			Office:     h.Office,
			Note:       h.Note,
			At:         h.CreatedAt,
		})
	}
	return TrackingView{
		TrackingNumber: p.TrackingNumber,
		Status:         p.Status,
		StatusName:     p.Status.Name(),
		IsTerminal:     p.IsTerminal(),
		DeliveryType:   p.DeliveryType,
		WeightKg:       p.WeightKg.StringFixed(3),
		SenderOffice:   p.Labels.SenderOffice,
		ReceiverOffice: p.Labels.ReceiverOffice,
		CreatedAt:      p.CreatedAt,
		DeliveredAt:    p.DeliveredAt,
		History:        events,
	}
}
