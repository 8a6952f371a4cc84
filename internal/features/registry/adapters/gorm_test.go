package adapters

import (
	"context"
	"testing"

	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/core/database/dbtest"
	"parcel-ledger/internal/features/registry/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormAddressRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewGormAddressRepository(db)
	ctx := context.Background()

	user := database.UserRecord{Username: "ivan", Email: "ivan@example.bg", PasswordHash: "x", Role: "CLIENT"}
	require.NoError(t, db.Create(&user).Error)

	owned := &domain.Address{Country: "Bulgaria", City: "Sofia", PostalCode: "1000", Street: "Vitosha 1"}
	require.NoError(t, repo.Create(ctx, owned, user.ID))
	assert.NotZero(t, owned.ID)

	loose := &domain.Address{Country: "Bulgaria", City: "Varna", PostalCode: "9000", Street: "Primorski 5"}
	require.NoError(t, repo.Create(ctx, loose, 0))

	mine, err := repo.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Sofia", mine[0].City)

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = repo.Create(ctx, &domain.Address{Country: "BG", City: "X", PostalCode: "1", Street: "Y"}, 9999)
	assert.ErrorIs(t, err, domain.ErrOwnerNotFound)

	n, err := repo.DeleteOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindByID(ctx, loose.ID)
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)

	got, err := repo.FindByID(ctx, owned.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vitosha 1", got.Street)
}

func TestGormTariffRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewGormTariffRepository(db)
	ctx := context.Background()

	addr := database.AddressRecord{Country: "Bulgaria", City: "Sofia", PostalCode: "1000", Street: "Vitosha 1"}
	require.NoError(t, db.Create(&addr).Error)
	company := database.CompanyRecord{Name: "Express Logistics BG", Bulstat: "BG123456789", AddressID: addr.ID}
	require.NoError(t, db.Create(&company).Error)

	missing, err := repo.Find(ctx, company.ID, domain.DeliveryStandard)
	require.NoError(t, err)
	assert.Nil(t, missing)

	tariff := &domain.Tariff{CompanyID: company.ID, DeliveryType: domain.DeliveryStandard, PricePerKg: decimal.RequireFromString("5.00")}
	require.NoError(t, repo.Upsert(ctx, tariff))

	tariff.PricePerKg = decimal.RequireFromString("6.00")
	require.NoError(t, repo.Upsert(ctx, tariff))

	list, err := repo.List(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].PricePerKg.Equal(decimal.RequireFromString("6.00")))

	err = repo.Upsert(ctx, &domain.Tariff{CompanyID: 9999, DeliveryType: domain.DeliveryExpress, PricePerKg: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)

	require.NoError(t, repo.Delete(ctx, list[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, list[0].ID), domain.ErrTariffNotFound)
}
