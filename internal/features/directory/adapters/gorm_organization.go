package adapters

import (
	"context"
	"fmt"

	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/features/directory/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrganizationRepository implements ports.OrganizationRepository on postgres.
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository.
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// CreateCompany inserts a company.
func (r *GormOrganizationRepository) CreateCompany(ctx context.Context, company *domain.Company) error {
	rec := toCompanyRecord(company)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return translate(err, domain.ErrAddressNotFound)
	}
	company.ID = rec.ID
	return nil
}

// FindCompany returns the company or ErrCompanyNotFound.
func (r *GormOrganizationRepository) FindCompany(ctx context.Context, id uint64) (*domain.Company, error) {
	var rec database.CompanyRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to load company %d: %w", id, err)
	}
	c := toCompany(rec)
	return &c, nil
}

// ListCompanies returns every company ordered by name.
func (r *GormOrganizationRepository) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var recs []database.CompanyRecord
	if err := r.db.WithContext(ctx).Order("name").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	out := make([]domain.Company, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toCompany(rec))
	}
	return out, nil
}

// UpdateCompany saves the editable company fields.
func (r *GormOrganizationRepository) UpdateCompany(ctx context.Context, company *domain.Company) error {
	err := r.db.WithContext(ctx).Model(&database.CompanyRecord{}).Where("id = ?", company.ID).Updates(map[string]interface{}{
		"name":       company.Name,
		"phone":      company.Phone,
		"address_id": company.AddressID,
	}).Error
	if err != nil {
		return translate(err, domain.ErrAddressNotFound)
	}
	return nil
}

// DeleteCompany removes a company; its tariffs cascade.
func (r *GormOrganizationRepository) DeleteCompany(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&database.CompanyRecord{}, id)
	if res.Error != nil {
		return translate(res.Error, domain.ErrCompanyInUse)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCompanyNotFound
	}
	return nil
}

// CountOffices counts the offices of a company.
func (r *GormOrganizationRepository) CountOffices(ctx context.Context, companyID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&database.OfficeRecord{}).Where("company_id = ?", companyID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count offices: %w", err)
	}
	return n, nil
}

// CreateOffice inserts an office.
func (r *GormOrganizationRepository) CreateOffice(ctx context.Context, office *domain.Office) error {
	rec := toOfficeRecord(office)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return translate(err, domain.ErrAddressNotFound)
	}
	office.ID = rec.ID
	return nil
}

// FindOffice returns the office or ErrOfficeNotFound.
func (r *GormOrganizationRepository) FindOffice(ctx context.Context, id uint64) (*domain.Office, error) {
	var rec database.OfficeRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, domain.ErrOfficeNotFound
		}
		return nil, fmt.Errorf("failed to load office %d: %w", id, err)
	}
	o := toOffice(rec)
	return &o, nil
}

// ListOffices returns the offices of a company, or every office for company zero.
func (r *GormOrganizationRepository) ListOffices(ctx context.Context, companyID uint64) ([]domain.Office, error) {
	q := r.db.WithContext(ctx).Order("code")
	if companyID != 0 {
		q = q.Where("company_id = ?", companyID)
	}

	var recs []database.OfficeRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list offices: %w", err)
	}
	out := make([]domain.Office, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toOffice(rec))
	}
	return out, nil
}

// UpdateOffice saves the editable office fields.
func (r *GormOrganizationRepository) UpdateOffice(ctx context.Context, office *domain.Office) error {
	err := r.db.WithContext(ctx).Model(&database.OfficeRecord{}).Where("id = ?", office.ID).Updates(map[string]interface{}{
		"name":          office.Name,
		"phone":         office.Phone,
		"address_id":    office.AddressID,
		"working_hours": office.WorkingHours,
	}).Error
	if err != nil {
		return translate(err, domain.ErrAddressNotFound)
	}
	return nil
}

// DeleteOffice removes an office; parcels routed through it keep their history.
func (r *GormOrganizationRepository) DeleteOffice(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&database.OfficeRecord{}, id)
	if res.Error != nil {
		return translate(res.Error, domain.ErrOfficeHasEmployees)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOfficeNotFound
	}
	return nil
}

func toCompanyRecord(c *domain.Company) database.CompanyRecord {
	return database.CompanyRecord{
		ID:        c.ID,
		Name:      c.Name,
		Bulstat:   c.Bulstat,
		Phone:     c.Phone,
		AddressID: c.AddressID,
	}
}

func toCompany(rec database.CompanyRecord) domain.Company {
	return domain.Company{
		ID:        rec.ID,
		Name:      rec.Name,
		Bulstat:   rec.Bulstat,
		Phone:     rec.Phone,
		AddressID: rec.AddressID,
	}
}

func toOfficeRecord(o *domain.Office) database.OfficeRecord {
	return database.OfficeRecord{
		ID:           o.ID,
		CompanyID:    o.CompanyID,
		Name:         o.Name,
		Code:         o.Code,
		Phone:        o.Phone,
		AddressID:    o.AddressID,
		WorkingHours: o.WorkingHours,
	}
}

func toOffice(rec database.OfficeRecord) domain.Office {
	return domain.Office{
		ID:           rec.ID,
		CompanyID:    rec.CompanyID,
		Name:         rec.Name,
		Code:         rec.Code,
		Phone:        rec.Phone,
		AddressID:    rec.AddressID,
		WorkingHours: rec.WorkingHours,
	}
}
