package adapters

import (
	"context"
	"fmt"

	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/features/directory/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEmployeeRepository implements ports.EmployeeRepository on postgres.
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository.
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// CreateWithUser inserts the user and employee rows in one transaction.
func (r *GormEmployeeRepository) CreateWithUser(ctx context.Context, employee *domain.Employee) error {
	if employee.User == nil {
		return fmt.Errorf("employee has no user account")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, employee.User, nil); err != nil {
			return err
		}
		employee.UserID = employee.User.ID

		rec := toEmployeeRecord(employee)
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return translate(err, domain.ErrOfficeNotFound)
		}
		return nil
	})
}

// FindByID returns the employee with its user account.
func (r *GormEmployeeRepository) FindByID(ctx context.Context, id uint64) (*domain.Employee, error) {
	var rec database.EmployeeRecord
	if err := r.db.WithContext(ctx).Preload("User").First(&rec, "user_id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to load employee %d: %w", id, err)
	}
	e := toEmployee(rec)
	return &e, nil
}

// List returns the employees of an office, or every employee for office zero.
func (r *GormEmployeeRepository) List(ctx context.Context, officeID uint64) ([]domain.Employee, error) {
	q := r.db.WithContext(ctx).Preload("User").Order("code")
	if officeID != 0 {
		q = q.Where("office_id = ?", officeID)
	}

	var recs []database.EmployeeRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	out := make([]domain.Employee, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toEmployee(rec))
	}
	return out, nil
}

// Update saves the employee row and the names of its user.
func (r *GormEmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&database.EmployeeRecord{}).Where("user_id = ?", employee.UserID).Updates(map[string]interface{}{
			"type":      string(employee.Type),
			"office_id": employee.OfficeID,
			"salary":    employee.Salary,
		}).Error
		if err != nil {
			return translate(err, domain.ErrOfficeNotFound)
		}

		if employee.User == nil {
			return nil
		}
		err = tx.Model(&database.UserRecord{}).Where("id = ?", employee.UserID).Updates(map[string]interface{}{
			"first_name": employee.User.FirstName,
			"last_name":  employee.User.LastName,
			"phone":      employee.User.Phone,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update employee user: %w", err)
		}
		return nil
	})
}

// CountByOffice counts the employees assigned to an office.
func (r *GormEmployeeRepository) CountByOffice(ctx context.Context, officeID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&database.EmployeeRecord{}).Where("office_id = ?", officeID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return n, nil
}

func toEmployeeRecord(e *domain.Employee) database.EmployeeRecord {
	return database.EmployeeRecord{
		UserID:   e.UserID,
		Code:     e.Code,
		Type:     string(e.Type),
		OfficeID: e.OfficeID,
		HireDate: e.HireDate,
		Salary:   e.Salary,
	}
}

func toEmployee(rec database.EmployeeRecord) domain.Employee {
	e := domain.Employee{
		UserID:   rec.UserID,
		Code:     rec.Code,
		Type:     domain.EmployeeType(rec.Type),
		OfficeID: rec.OfficeID,
		HireDate: rec.HireDate,
		Salary:   rec.Salary,
	}
	if rec.User != nil {
		u := toUser(*rec.User)
		e.User = &u
	}
	return e
}
