package seed

import (
	"context"
	"testing"

	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/core/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cheapHash(password string) (string, error) {
	return "hash:" + password, nil
}

func TestSeeder_Run(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	s := NewSeeder(db)
	s.hash = cheapHash

	sum, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Users: 9, Offices: 4, Parcels: 7}, sum)

	var statuses, history, notes, delivered int64
	require.NoError(t, db.Model(&database.ParcelStatusRecord{}).Count(&statuses).Error)
	require.NoError(t, db.Model(&database.ParcelHistoryRecord{}).Count(&history).Error)
	require.NoError(t, db.Model(&database.ParcelNoteRecord{}).Count(&notes).Error)
	require.NoError(t, db.Model(&database.ParcelRecord{}).Where("delivered_at IS NOT NULL").Count(&delivered).Error)
	assert.Equal(t, int64(6), statuses)
	assert.Equal(t, int64(7+1+3+2+3+1+2), history)
	assert.Equal(t, int64(2), notes)
	assert.Equal(t, int64(2), delivered)

	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, ErrAlreadySeeded)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Run(ctx)
	require.NoError(t, err)
}
