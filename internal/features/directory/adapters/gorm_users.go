package adapters

import (
	"context"
	"fmt"
	"strings"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/features/directory/domain"
	"parcel-ledger/internal/features/directory/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements ports.UserRepository on postgres.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create stores the user and, when given, its default address and link row.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User, address *ports.AddressInput) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createUser(tx, user, address)
	})
}

func createUser(tx *gorm.DB, user *domain.User, address *ports.AddressInput) error {
	rec := toUserRecord(user)
	rec.DefaultAddressID = nil
	if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
		return translate(err, nil)
	}
	user.ID = rec.ID
	user.CreatedAt = rec.CreatedAt

	if address == nil {
		return nil
	}

	addr := database.AddressRecord{
		Country:    strings.TrimSpace(address.Country),
		City:       strings.TrimSpace(address.City),
		PostalCode: strings.TrimSpace(address.PostalCode),
		Street:     strings.TrimSpace(address.Street),
		Details:    strings.TrimSpace(address.Details),
	}
	if err := tx.Create(&addr).Error; err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}
	link := database.UserAddressRecord{UserID: rec.ID, AddressID: addr.ID}
	if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
		return fmt.Errorf("failed to link address: %w", err)
	}
	if err := tx.Model(&database.UserRecord{}).Where("id = ?", rec.ID).
		Update("default_address_id", addr.ID).Error; err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}

	user.DefaultAddressID = &addr.ID
	return nil
}

// FindByID returns the user or ErrUserNotFound.
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var rec database.UserRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	u := toUser(rec)
	return &u, nil
}

// FindByEmail matches on the lower-cased email.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var rec database.UserRecord
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", domain.NormalizeEmail(email)).
		Take(&rec).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user by email: %w", err)
	}
	u := toUser(rec)
	return &u, nil
}

// List returns the users with the role, or every user for the empty role.
func (r *GormUserRepository) List(ctx context.Context, role access.Role) ([]domain.User, error) {
	q := r.db.WithContext(ctx).Order("id")
	if role != "" {
		q = q.Where("role = ?", string(role))
	}

	var recs []database.UserRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]domain.User, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toUser(rec))
	}
	return out, nil
}

// HasAddress reports whether a user_addresses link exists for the pair.
func (r *GormUserRepository) HasAddress(ctx context.Context, userID, addressID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&database.UserAddressRecord{}).
		Where("user_id = ? AND address_id = ?", userID, addressID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check address link: %w", err)
	}
	return n > 0, nil
}

// Update saves the profile. A new default address is linked to the user as well.
func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&database.UserRecord{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"email":              user.Email,
			"password_hash":      user.PasswordHash,
			"first_name":         user.FirstName,
			"last_name":          user.LastName,
			"phone":              user.Phone,
			"default_address_id": user.DefaultAddressID,
		}).Error
		if err != nil {
			return translate(err, domain.ErrAddressNotFound)
		}

		if user.DefaultAddressID == nil {
			return nil
		}
		link := database.UserAddressRecord{UserID: user.ID, AddressID: *user.DefaultAddressID}
		err = tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&link).Error
		if err != nil {
			return translate(err, domain.ErrAddressNotFound)
		}
		return nil
	})
}

// Delete removes the user; address links and the employee row cascade.
func (r *GormUserRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&database.UserRecord{}, id)
	if res.Error != nil {
		return translate(res.Error, domain.ErrUserHasParcels)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func toUserRecord(u *domain.User) database.UserRecord {
	return database.UserRecord{
		ID:               u.ID,
		Username:         u.Username,
		Email:            domain.NormalizeEmail(u.Email),
		PasswordHash:     u.PasswordHash,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Phone:            u.Phone,
		Role:             string(u.Role),
		IsSuperuser:      u.Superuser,
		DefaultAddressID: u.DefaultAddressID,
		CreatedAt:        u.CreatedAt,
	}
}

func toUser(rec database.UserRecord) domain.User {
	return domain.User{
		ID:               rec.ID,
		Username:         rec.Username,
		Email:            rec.Email,
		FirstName:        rec.FirstName,
		LastName:         rec.LastName,
		Phone:            rec.Phone,
		Role:             access.Role(rec.Role),
		Superuser:        rec.IsSuperuser,
		PasswordHash:     rec.PasswordHash,
		DefaultAddressID: rec.DefaultAddressID,
		CreatedAt:        rec.CreatedAt,
	}
}
