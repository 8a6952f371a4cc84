package domain

import "parcel-ledger/internal/core/apperr"

var (
	// ErrParcelNotFound is returned when a parcel id or tracking number does not resolve.
	ErrParcelNotFound   = apperr.New(apperr.KindNotFound, "parcel_not_found", "parcel not found")
	ErrSenderNotFound   = apperr.New(apperr.KindNotFound, "sender_not_found", "sender not found")
	ErrReceiverNotFound = apperr.New(apperr.KindNotFound, "receiver_not_found", "receiver not found")
	ErrOfficeNotFound   = apperr.New(apperr.KindNotFound, "office_not_found", "office not found")

	// ErrSameParties is returned when sender and receiver are the same user.
	ErrSameParties = apperr.New(apperr.KindValidation, "same_parties", "sender and receiver must differ")
	// ErrNoPickup is returned when a parcel has neither a sender office nor a pickup address.
	ErrNoPickup = apperr.New(apperr.KindValidation, "missing_pickup", "parcel needs a sender office or the sender's default address")
	// ErrNoDelivery is returned when a parcel has neither a receiver office nor a delivery address.
	ErrNoDelivery = apperr.New(apperr.KindValidation, "missing_delivery", "parcel needs a receiver office or the receiver's default address")
	// ErrTariffMismatch is returned when the tariff does not price the parcel's delivery type.
	ErrTariffMismatch = apperr.New(apperr.KindValidation, "tariff_mismatch", "tariff delivery type must match parcel delivery type")
	// ErrStatusUnchanged is returned when a transition targets the current status.
	ErrStatusUnchanged = apperr.New(apperr.KindValidation, "status_unchanged", "parcel already has this status")

	// ErrParcelTerminal is returned for any change to a delivered, returned or cancelled parcel.
	ErrParcelTerminal = apperr.New(apperr.KindState, "parcel_terminal", "parcel is in a terminal status, no further changes allowed")
	// ErrNotDeletable is returned when deleting a parcel that has left the CREATED state.
	ErrNotDeletable = apperr.New(apperr.KindState, "parcel_not_deletable", "only created or cancelled parcels can be deleted")

	// ErrTrackingNumberTaken is returned when a generated tracking number already exists.
	ErrTrackingNumberTaken = apperr.New(apperr.KindConflict, "tracking_number_taken", "tracking number already exists")
	// ErrVersionConflict is returned when the parcel changed since it was read.
	ErrVersionConflict = apperr.New(apperr.KindConflict, "parcel_version_conflict", "parcel was modified concurrently, reload and retry")
)
