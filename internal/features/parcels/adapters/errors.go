package adapters

import (
	"parcel-ledger/internal/core/apperr"
	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/features/parcels/domain"
)

// foreignKeyErrors maps gorm-named foreign keys of parcels to domain errors.
var foreignKeyErrors = map[string]*apperr.Error{
	"fk_parcels_sender":               domain.ErrSenderNotFound,
	"fk_parcels_receiver":             domain.ErrReceiverNotFound,
	"fk_parcels_sender_office":        domain.ErrOfficeNotFound,
	"fk_parcels_receiver_office":      domain.ErrOfficeNotFound,
	"fk_parcel_notes_parcel":          domain.ErrParcelNotFound,
	"fk_parcel_status_history_parcel": domain.ErrParcelNotFound,
}

func translate(err error) error {
	if name, ok := database.IsUniqueViolation(err); ok {
		if name == "uq_parcels_tracking_number" || name == "" {
			return domain.ErrTrackingNumberTaken.Wrap(err)
		}
		return err
	}
	if name, ok := database.IsForeignKeyViolation(err); ok {
		if mapped, found := foreignKeyErrors[name]; found {
			return mapped
		}
	}
	return err
}
