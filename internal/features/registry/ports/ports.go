package ports

import (
	"context"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/features/registry/domain"

	"github.com/shopspring/decimal"
)

// AddressInput carries the fields of a new address.
type AddressInput struct {
	Country    string
	City       string
	PostalCode string
	Street     string
	Details    string
}

// RegistryService defines the primary port for reference data.
type RegistryService interface {
	CreateAddress(ctx context.Context, actor *access.Actor, ownerID uint64, in AddressInput) (*domain.Address, error)
	ListAddresses(ctx context.Context, actor *access.Actor) ([]domain.Address, error)
	UpsertTariff(ctx context.Context, actor *access.Actor, companyID uint64, deliveryType string, pricePerKg decimal.Decimal) (*domain.Tariff, error)
	ListTariffs(ctx context.Context, actor *access.Actor, companyID uint64) ([]domain.Tariff, error)
	DeleteTariff(ctx context.Context, actor *access.Actor, id uint64) error
}

// AddressRepository defines the secondary port for address storage.
type AddressRepository interface {
	// Create stores the address and, when ownerID is not zero, links it to that user
	// in the same transaction.
	Create(ctx context.Context, address *domain.Address, ownerID uint64) error
	FindByID(ctx context.Context, id uint64) (*domain.Address, error)
	// List returns the addresses linked to ownerID, or every address when ownerID is zero.
	List(ctx context.Context, ownerID uint64) ([]domain.Address, error)
	// DeleteOrphans removes addresses nothing references and returns how many went.
	DeleteOrphans(ctx context.Context) (int64, error)
}

// TariffRepository defines the secondary port for tariff storage.
type TariffRepository interface {
	// Upsert inserts the tariff or updates the rate of the existing (company, type) row.
	Upsert(ctx context.Context, tariff *domain.Tariff) error
	// Find returns nil without error when the company has no tariff for the type.
	Find(ctx context.Context, companyID uint64, deliveryType domain.DeliveryType) (*domain.Tariff, error)
	List(ctx context.Context, companyID uint64) ([]domain.Tariff, error)
	Delete(ctx context.Context, id uint64) error
}
