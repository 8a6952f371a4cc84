package adapters

import (
	"context"
	"fmt"

	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/features/registry/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// deleteOrphansSQL removes every address no user, company, office or parcel points at.
const deleteOrphansSQL = `
DELETE FROM addresses a
WHERE NOT EXISTS (SELECT 1 FROM user_addresses ua WHERE ua.address_id = a.id)
  AND NOT EXISTS (SELECT 1 FROM users u WHERE u.default_address_id = a.id)
  AND NOT EXISTS (SELECT 1 FROM companies c WHERE c.address_id = a.id)
  AND NOT EXISTS (SELECT 1 FROM offices o WHERE o.address_id = a.id)
  AND NOT EXISTS (
    SELECT 1 FROM parcels p
    WHERE p.pickup_address_id = a.id OR p.delivery_address_id = a.id
  )`

// GormAddressRepository implements ports.AddressRepository on postgres.
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository.
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// Create stores the address and links it to ownerID when set.
func (r *GormAddressRepository) Create(ctx context.Context, address *domain.Address, ownerID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := toAddressRecord(address)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to insert address: %w", err)
		}
		address.ID = rec.ID

		if ownerID == 0 {
			return nil
		}
		link := database.UserAddressRecord{UserID: ownerID, AddressID: rec.ID}
		if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
			if _, ok := database.IsForeignKeyViolation(err); ok {
				return domain.ErrOwnerNotFound
			}
			return fmt.Errorf("failed to link address: %w", err)
		}
		return nil
	})
}

// FindByID returns the address or ErrAddressNotFound.
func (r *GormAddressRepository) FindByID(ctx context.Context, id uint64) (*domain.Address, error) {
	var rec database.AddressRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to load address %d: %w", id, err)
	}
	a := toAddress(rec)
	return &a, nil
}

// List returns the owner's linked addresses, or all addresses for owner zero.
func (r *GormAddressRepository) List(ctx context.Context, ownerID uint64) ([]domain.Address, error) {
	q := r.db.WithContext(ctx).Model(&database.AddressRecord{}).Order("addresses.id")
	if ownerID != 0 {
		q = q.Joins("JOIN user_addresses ua ON ua.address_id = addresses.id").
			Where("ua.user_id = ?", ownerID)
	}

	var recs []database.AddressRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	out := make([]domain.Address, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toAddress(rec))
	}
	return out, nil
}

// DeleteOrphans removes unreferenced addresses.
func (r *GormAddressRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(deleteOrphansSQL)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete orphan addresses: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func toAddressRecord(a *domain.Address) database.AddressRecord {
	return database.AddressRecord{
		ID:         a.ID,
		Country:    a.Country,
		City:       a.City,
		PostalCode: a.PostalCode,
		Street:     a.Street,
		Details:    a.Details,
	}
}

func toAddress(rec database.AddressRecord) domain.Address {
	return domain.Address{
		ID:         rec.ID,
		Country:    rec.Country,
		City:       rec.City,
		PostalCode: rec.PostalCode,
		Street:     rec.Street,
		Details:    rec.Details,
	}
}
