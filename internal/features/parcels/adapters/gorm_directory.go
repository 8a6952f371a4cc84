package adapters

import (
	"context"
	"fmt"

	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/features/parcels/domain"
	"parcel-ledger/internal/features/parcels/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPartyDirectory implements ports.PartyDirectory with read-only lookups on the
// directory tables.
type GormPartyDirectory struct {
	db *gorm.DB
}

// NewGormPartyDirectory creates a new GormPartyDirectory.
func NewGormPartyDirectory(db *gorm.DB) *GormPartyDirectory {
	return &GormPartyDirectory{db: db}
}

// FindParty returns nil, nil for an unknown user.
func (d *GormPartyDirectory) FindParty(ctx context.Context, userID uint64) (*ports.Party, error) {
	var rec database.UserRecord
	if err := d.db.WithContext(ctx).Take(&rec, userID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return &ports.Party{ID: rec.ID, Name: displayName(&rec), DefaultAddressID: rec.DefaultAddressID}, nil
}

// FindOffice returns nil, nil for an unknown office.
func (d *GormPartyDirectory) FindOffice(ctx context.Context, id uint64) (*ports.OfficeRef, error) {
	var rec database.OfficeRecord
	if err := d.db.WithContext(ctx).Take(&rec, id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load office %d: %w", id, err)
	}
	return &ports.OfficeRef{ID: rec.ID, CompanyID: rec.CompanyID, Name: rec.Name}, nil
}

// FindEmployee returns nil, nil when the user is not an employee.
func (d *GormPartyDirectory) FindEmployee(ctx context.Context, userID uint64) (*ports.EmployeeRef, error) {
	var rec database.EmployeeRecord
	if err := d.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load employee %d: %w", userID, err)
	}
	return &ports.EmployeeRef{UserID: rec.UserID, OfficeID: rec.OfficeID}, nil
}

// FirstCompany returns the oldest company id, or 0 when none exists.
func (d *GormPartyDirectory) FirstCompany(ctx context.Context) (uint64, error) {
	var ids []uint64
	err := d.db.WithContext(ctx).
		Model(&database.CompanyRecord{}).
		Order("id").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find first company: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

// SyncStatusCatalog upserts the status vocabulary into parcel_statuses.
func SyncStatusCatalog(ctx context.Context, db *gorm.DB) error {
	statuses := domain.Statuses()
	rows := make([]database.ParcelStatusRecord, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, database.ParcelStatusRecord{
			Code:        string(s.Code),
			Name:        s.Name,
			Description: s.Description,
			IsTerminal:  s.Terminal,
		})
	}

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "is_terminal"}),
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to sync status catalog: %w", err)
	}
	return nil
}
