package adapters

import (
	"context"
	"testing"
	"time"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/core/database/dbtest"
	"parcel-ledger/internal/features/directory/domain"
	"parcel-ledger/internal/features/directory/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	user := &domain.User{Username: "maria", Email: "Maria@Example.bg", PasswordHash: "x", Role: access.RoleClient}
	require.NoError(t, repo.Create(ctx, user, &ports.AddressInput{
		Country: "Bulgaria", City: "Sofia", PostalCode: "1000", Street: "Vitosha 1",
	}))
	require.NotZero(t, user.ID)
	require.NotNil(t, user.DefaultAddressID)

	got, err := repo.FindByEmail(ctx, "MARIA@example.BG")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, *user.DefaultAddressID, *got.DefaultAddressID)

	err = repo.Create(ctx, &domain.User{Username: "maria2", Email: "maria@example.bg", PasswordHash: "x", Role: access.RoleClient}, nil)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	err = repo.Create(ctx, &domain.User{Username: "maria", Email: "other@example.bg", PasswordHash: "x", Role: access.RoleClient}, nil)
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	var links int64
	require.NoError(t, db.Model(&database.UserAddressRecord{}).Where("user_id = ?", user.ID).Count(&links).Error)
	assert.Equal(t, int64(1), links)

	owned, err := repo.HasAddress(ctx, user.ID, *user.DefaultAddressID)
	require.NoError(t, err)
	assert.True(t, owned)
	owned, err = repo.HasAddress(ctx, user.ID, *user.DefaultAddressID+1000)
	require.NoError(t, err)
	assert.False(t, owned)

	got.FirstName = "Maria"
	require.NoError(t, repo.Update(ctx, got))
	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", reloaded.FirstName)

	clients, err := repo.List(ctx, access.RoleClient)
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	require.NoError(t, repo.Delete(ctx, user.ID))
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), domain.ErrUserNotFound)
}

func TestGormOrganizationAndEmployees(t *testing.T) {
	db := dbtest.Open(t)
	org := NewGormOrganizationRepository(db)
	employees := NewGormEmployeeRepository(db)
	ctx := context.Background()

	addr := database.AddressRecord{Country: "Bulgaria", City: "Sofia", PostalCode: "1000", Street: "Vitosha 1"}
	require.NoError(t, db.Create(&addr).Error)

	company := &domain.Company{Name: "Express Logistics BG", Bulstat: "BG123456789", AddressID: addr.ID}
	require.NoError(t, org.CreateCompany(ctx, company))
	assert.ErrorIs(t, org.CreateCompany(ctx, &domain.Company{Name: "Copy", Bulstat: "BG123456789", AddressID: addr.ID}), domain.ErrBulstatTaken)

	office := &domain.Office{CompanyID: company.ID, Name: "Sofia Center", Code: "SOF-C", AddressID: addr.ID}
	require.NoError(t, org.CreateOffice(ctx, office))
	assert.ErrorIs(t, org.CreateOffice(ctx, &domain.Office{CompanyID: company.ID, Name: "Dup", Code: "SOF-C", AddressID: addr.ID}), domain.ErrOfficeCodeTaken)

	e := &domain.Employee{
		Code:     "EMP-001",
		Type:     domain.EmployeeOffice,
		OfficeID: office.ID,
		HireDate: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		Salary:   decimal.RequireFromString("1500.00"),
		User:     &domain.User{Username: "emp1", Email: "emp1@example.bg", PasswordHash: "x", Role: access.RoleEmployee},
	}
	require.NoError(t, employees.CreateWithUser(ctx, e))
	assert.Equal(t, e.User.ID, e.UserID)

	dup := &domain.Employee{
		Code: "EMP-001", Type: domain.EmployeeCourier, OfficeID: office.ID, HireDate: time.Now(), Salary: decimal.Zero,
		User: &domain.User{Username: "emp2", Email: "emp2@example.bg", PasswordHash: "x", Role: access.RoleEmployee},
	}
	assert.ErrorIs(t, employees.CreateWithUser(ctx, dup), domain.ErrEmployeeCodeTaken)

	// The failed insert rolled back its user row too.
	var users int64
	require.NoError(t, db.Model(&database.UserRecord{}).Where("username = ?", "emp2").Count(&users).Error)
	assert.Zero(t, users)

	n, err := employees.CountByOffice(ctx, office.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	loaded, err := employees.FindByID(ctx, e.UserID)
	require.NoError(t, err)
	require.NotNil(t, loaded.User)
	assert.Equal(t, "emp1", loaded.User.Username)

	offices, err := org.CountOffices(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), offices)

	assert.ErrorIs(t, org.DeleteOffice(ctx, office.ID), domain.ErrOfficeHasEmployees)
}
