package ports

import (
	"context"
	"time"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/features/parcels/domain"
	registry "parcel-ledger/internal/features/registry/domain"
)

// CreateInput is what staff submit to register a parcel.
type CreateInput struct {
	SenderID         uint64
	ReceiverID       uint64
	WeightKg         string
	DeliveryType     string
	SenderOfficeID   *uint64
	ReceiverOfficeID *uint64
}

// UpdatePatch lists the editable fields of a parcel; nil means unchanged. An office
// id of 0 clears the office and falls back to the party's default address.
type UpdatePatch struct {
	SenderID         *uint64
	ReceiverID       *uint64
	WeightKg         *string
	DeliveryType     *string
	SenderOfficeID   *uint64
	ReceiverOfficeID *uint64
	// Version, when set, must equal the stored version.
	Version *int64
}

// StatusChange is a request to move a parcel along its lifecycle.
type StatusChange struct {
	Status string
	// OfficeID overrides the acting employee's home office.
	OfficeID *uint64
	Note     string
}

// ListFilter narrows parcel listings. Zero values mean no constraint.
type ListFilter struct {
	// PartyID matches parcels where the user is sender or receiver.
	PartyID        uint64
	SenderID       uint64
	ReceiverID     uint64
	RegisteredByID uint64
	Statuses       []domain.StatusCode
	DeliveredFrom  *time.Time
	DeliveredTo    *time.Time
	Limit          int
	Offset         int
}

// ParcelService is the primary port of the ledger.
type ParcelService interface {
	Create(ctx context.Context, actor *access.Actor, in CreateInput) (*domain.ParcelView, error)
	ChangeStatus(ctx context.Context, actor *access.Actor, id uint64, change StatusChange) (*domain.ParcelView, error)
	Update(ctx context.Context, actor *access.Actor, id uint64, patch UpdatePatch) (*domain.ParcelView, error)
	Delete(ctx context.Context, actor *access.Actor, id uint64) error
	AddNote(ctx context.Context, actor *access.Actor, id uint64, noteType, content string) (*domain.Note, error)
	Get(ctx context.Context, actor *access.Actor, id uint64) (*domain.ParcelView, error)
	List(ctx context.Context, actor *access.Actor, filter ListFilter) ([]domain.ParcelView, error)
	Track(ctx context.Context, trackingNumber string) (*domain.TrackingView, error)
	Statuses() []domain.Status
}

// ParcelRepository persists parcels with their history and notes.
type ParcelRepository interface {
	// Create stores the parcel and its first history entry atomically.
	Create(ctx context.Context, parcel *domain.Parcel, first *domain.HistoryEntry) error
	FindByID(ctx context.Context, id uint64) (*domain.Parcel, error)
	// FindByTrackingNumber matches case-insensitively.
	FindByTrackingNumber(ctx context.Context, number string) (*domain.Parcel, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Parcel, error)
	// ApplyTransition writes the new status and appends entry if the stored version
	// still equals parcel.Version, then bumps parcel.Version.
	ApplyTransition(ctx context.Context, parcel *domain.Parcel, entry *domain.HistoryEntry) error
	// Update writes the editable fields under the same version check.
	Update(ctx context.Context, parcel *domain.Parcel) error
	// Delete removes the parcel only while the stored version still equals
	// parcel.Version and its status is deletable.
	Delete(ctx context.Context, parcel *domain.Parcel) error
	// History returns entries newest first.
	History(ctx context.Context, parcelID uint64) ([]domain.HistoryEntry, error)
	AddNote(ctx context.Context, note *domain.Note) error
	Notes(ctx context.Context, parcelID uint64) ([]domain.Note, error)
	CountByParty(ctx context.Context, userID uint64) (sent, received int64, err error)
}

// ParcelQuery is the read contract other features consume.
type ParcelQuery interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Parcel, error)
}

// Party is what the ledger needs to know about a sender or receiver.
type Party struct {
	ID               uint64
	Name             string
	DefaultAddressID *uint64
}

// OfficeRef is what the ledger needs to know about an office.
type OfficeRef struct {
	ID        uint64
	CompanyID uint64
	Name      string
}

// EmployeeRef is what the ledger needs to know about the acting employee.
type EmployeeRef struct {
	UserID   uint64
	OfficeID uint64
}

// PartyDirectory resolves the users, offices and companies a parcel references.
type PartyDirectory interface {
	// FindParty returns nil, nil when the user does not exist.
	FindParty(ctx context.Context, userID uint64) (*Party, error)
	// FindOffice returns nil, nil when the office does not exist.
	FindOffice(ctx context.Context, id uint64) (*OfficeRef, error)
	// FindEmployee returns nil, nil when the user has no employee record.
	FindEmployee(ctx context.Context, userID uint64) (*EmployeeRef, error)
	// FirstCompany returns the lowest company id, or 0 when there is none.
	FirstCompany(ctx context.Context) (uint64, error)
}

// TariffLookup resolves the rate in effect for a company and delivery type.
type TariffLookup interface {
	LookupTariff(ctx context.Context, companyID uint64, deliveryType registry.DeliveryType) (*registry.Tariff, error)
}

// TrackingCache stores public tracking views keyed by tracking number.
type TrackingCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, trackingNumber string) (*domain.TrackingView, error)
	Set(ctx context.Context, view *domain.TrackingView) error
	Invalidate(ctx context.Context, trackingNumber string) error
}

// TrackingNumberSource yields fresh tracking numbers.
type TrackingNumberSource interface {
	Next() (string, error)
}
