package adapters

import (
	"context"
	"fmt"

	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/features/registry/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTariffRepository implements ports.TariffRepository on postgres.
type GormTariffRepository struct {
	db *gorm.DB
}

// NewGormTariffRepository creates a new GormTariffRepository.
func NewGormTariffRepository(db *gorm.DB) *GormTariffRepository {
	return &GormTariffRepository{db: db}
}

// Upsert relies on the (company_id, delivery_type) unique index.
func (r *GormTariffRepository) Upsert(ctx context.Context, tariff *domain.Tariff) error {
	rec := database.TariffRecord{
		CompanyID:    tariff.CompanyID,
		DeliveryType: string(tariff.DeliveryType),
		PricePerKg:   tariff.PricePerKg,
	}

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "delivery_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"price_per_kg"}),
		}).
		Create(&rec).Error
	if err != nil {
		if _, ok := database.IsForeignKeyViolation(err); ok {
			return domain.ErrCompanyNotFound
		}
		return fmt.Errorf("failed to upsert tariff: %w", err)
	}

	tariff.ID = rec.ID
	return nil
}

// Find returns nil, nil when no tariff exists for the pair.
func (r *GormTariffRepository) Find(ctx context.Context, companyID uint64, deliveryType domain.DeliveryType) (*domain.Tariff, error) {
	var rec database.TariffRecord
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND delivery_type = ?", companyID, string(deliveryType)).
		Take(&rec).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find tariff: %w", err)
	}
	t := toTariff(rec)
	return &t, nil
}

// List returns one company's tariffs, or every tariff when companyID is zero.
func (r *GormTariffRepository) List(ctx context.Context, companyID uint64) ([]domain.Tariff, error) {
	q := r.db.WithContext(ctx).Order("company_id, delivery_type")
	if companyID != 0 {
		q = q.Where("company_id = ?", companyID)
	}

	var recs []database.TariffRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list tariffs: %w", err)
	}

	out := make([]domain.Tariff, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toTariff(rec))
	}
	return out, nil
}

// Delete removes the tariff; parcels referencing it fall back to no tariff.
func (r *GormTariffRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&database.TariffRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete tariff %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTariffNotFound
	}
	return nil
}

func toTariff(rec database.TariffRecord) domain.Tariff {
	return domain.Tariff{
		ID:           rec.ID,
		CompanyID:    rec.CompanyID,
		DeliveryType: domain.DeliveryType(rec.DeliveryType),
		PricePerKg:   rec.PricePerKg,
	}
}
