package service

import (
	"context"
	"fmt"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/logger"
	"parcel-ledger/internal/features/registry/domain"
	"parcel-ledger/internal/features/registry/ports"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RegistryServiceImpl implements ports.RegistryService and the lookups other
// features consume.
type RegistryServiceImpl struct {
	addresses ports.AddressRepository
	tariffs   ports.TariffRepository
	log       *zap.Logger
}

// NewRegistryService creates a new RegistryServiceImpl.
func NewRegistryService(addresses ports.AddressRepository, tariffs ports.TariffRepository) *RegistryServiceImpl {
	return &RegistryServiceImpl{
		addresses: addresses,
		tariffs:   tariffs,
		log:       logger.Named("registry"),
	}
}

// CreateAddress stores an address linked to ownerID (the actor when zero). Clients may
// only add addresses to their own profile.
func (s *RegistryServiceImpl) CreateAddress(ctx context.Context, actor *access.Actor, ownerID uint64, in ports.AddressInput) (*domain.Address, error) {
	if actor == nil {
		return nil, access.ErrUnauthenticated
	}
	if ownerID == 0 {
		ownerID = actor.UserID
	}
	if err := access.CanAccessProfile(actor, ownerID); err != nil {
		return nil, err
	}

	address, err := domain.NewAddress(in.Country, in.City, in.PostalCode, in.Street, in.Details)
	if err != nil {
		return nil, err
	}

	if err := s.addresses.Create(ctx, address, ownerID); err != nil {
		return nil, fmt.Errorf("service: failed to create address: %w", err)
	}

	s.log.Info("Address created",
		zap.Uint64("address_id", address.ID),
		zap.Uint64("owner_id", ownerID),
		zap.Uint64("actor_id", actor.UserID),
	)
	return address, nil
}

// ListAddresses returns every address for staff and the actor's own addresses for clients.
func (s *RegistryServiceImpl) ListAddresses(ctx context.Context, actor *access.Actor) ([]domain.Address, error) {
	if actor == nil {
		return nil, access.ErrUnauthenticated
	}
	var owner uint64
	if !actor.IsStaff() {
		owner = actor.UserID
	}

	addresses, err := s.addresses.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list addresses: %w", err)
	}
	return addresses, nil
}

// UpsertTariff sets the rate of a company for a delivery type.
func (s *RegistryServiceImpl) UpsertTariff(ctx context.Context, actor *access.Actor, companyID uint64, deliveryType string, pricePerKg decimal.Decimal) (*domain.Tariff, error) {
	if err := access.Authorize(actor, access.ManageTariffs); err != nil {
		return nil, err
	}

	dt, err := domain.ParseDeliveryType(deliveryType)
	if err != nil {
		return nil, err
	}
	tariff, err := domain.NewTariff(companyID, dt, pricePerKg)
	if err != nil {
		return nil, err
	}

	if err := s.tariffs.Upsert(ctx, tariff); err != nil {
		return nil, fmt.Errorf("service: failed to save tariff: %w", err)
	}

	s.log.Info("Tariff saved",
		zap.Uint64("company_id", companyID),
		zap.String("delivery_type", string(dt)),
		zap.String("price_per_kg", tariff.PricePerKg.StringFixed(2)),
		zap.Uint64("actor_id", actor.UserID),
	)
	return tariff, nil
}

// ListTariffs returns the tariffs of one company, or all of them when companyID is zero.
func (s *RegistryServiceImpl) ListTariffs(ctx context.Context, actor *access.Actor, companyID uint64) ([]domain.Tariff, error) {
	if actor == nil {
		return nil, access.ErrUnauthenticated
	}
	tariffs, err := s.tariffs.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list tariffs: %w", err)
	}
	return tariffs, nil
}

// DeleteTariff removes a tariff. Parcels that used it keep no tariff and price at zero.
func (s *RegistryServiceImpl) DeleteTariff(ctx context.Context, actor *access.Actor, id uint64) error {
	if err := access.Authorize(actor, access.ManageTariffs); err != nil {
		return err
	}
	if err := s.tariffs.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete tariff: %w", err)
	}
	s.log.Info("Tariff deleted", zap.Uint64("tariff_id", id), zap.Uint64("actor_id", actor.UserID))
	return nil
}

// LookupTariff returns the tariff for (company, delivery type), or nil if none is set.
func (s *RegistryServiceImpl) LookupTariff(ctx context.Context, companyID uint64, deliveryType domain.DeliveryType) (*domain.Tariff, error) {
	if companyID == 0 {
		return nil, nil
	}
	tariff, err := s.tariffs.Find(ctx, companyID, deliveryType)
	if err != nil {
		return nil, fmt.Errorf("service: failed to look up tariff: %w", err)
	}
	return tariff, nil
}

// CleanupOrphanAddresses deletes addresses nothing references anymore.
func (s *RegistryServiceImpl) CleanupOrphanAddresses(ctx context.Context) (int64, error) {
	n, err := s.addresses.DeleteOrphans(ctx)
	if err != nil {
		return 0, fmt.Errorf("service: failed to delete orphan addresses: %w", err)
	}
	if n > 0 {
		s.log.Info("Orphan addresses removed", zap.Int64("count", n))
	}
	return n, nil
}
