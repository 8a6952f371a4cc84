package domain

import (
	"testing"

	"parcel-ledger/internal/core/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	a, err := NewAddress(" Bulgaria ", "Sofia", "1000", "Vitosha 1", "")
	require.NoError(t, err)
	assert.Equal(t, "Bulgaria", a.Country)
	assert.Equal(t, "Bulgaria, Sofia, 1000, Vitosha 1", a.String())

	_, err = NewAddress("Bulgaria", "", "1000", "Vitosha 1", "")
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "city", e.Field)
}

func TestParseDeliveryType(t *testing.T) {
	tests := []struct {
		in      string
		want    DeliveryType
		wantErr bool
	}{
		{"STANDARD", DeliveryStandard, false},
		{"express", DeliveryExpress, false},
		{" Standard ", DeliveryStandard, false},
		{"OVERNIGHT", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDeliveryType(tt.in)
			if tt.wantErr {
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTariff(t *testing.T) {
	tariff, err := NewTariff(1, DeliveryStandard, decimal.RequireFromString("5.004"))
	require.NoError(t, err)
	assert.True(t, tariff.PricePerKg.Equal(decimal.RequireFromString("5.00")))

	_, err = NewTariff(1, DeliveryExpress, decimal.RequireFromString("-1"))
	assert.ErrorIs(t, err, ErrNegativeRate)

	_, err = NewTariff(0, DeliveryExpress, decimal.Zero)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	zero, err := NewTariff(1, DeliveryExpress, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, zero.PricePerKg.IsZero())
}

func TestTariff_PriceFor(t *testing.T) {
	tariff := &Tariff{PricePerKg: decimal.RequireFromString("5.00")}
	assert.Equal(t, "12.5", tariff.PriceFor(decimal.RequireFromString("2.5")).String())

	var none *Tariff
	assert.True(t, none.PriceFor(decimal.RequireFromString("2.5")).IsZero())
}
