package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/apperr"
	"parcel-ledger/internal/core/logger"
	"parcel-ledger/internal/features/parcels/domain"
	"parcel-ledger/internal/features/parcels/ports"

	"go.uber.org/zap"
)

const (
	// maxTrackingAttempts bounds retries after a tracking number collision.
	maxTrackingAttempts = 3
	maxHistoryNote      = 255
	registeredNote      = "Parcel registered"
)

// ParcelServiceImpl implements ports.ParcelService.
type ParcelServiceImpl struct {
	parcels   ports.ParcelRepository
	directory ports.PartyDirectory
	tariffs   ports.TariffLookup
	cache     ports.TrackingCache
	numbers   ports.TrackingNumberSource
	now       func() time.Time
	log       *zap.Logger
}

// Dependencies groups the collaborators of the parcel service.
type Dependencies struct {
	Parcels   ports.ParcelRepository
	Directory ports.PartyDirectory
	Tariffs   ports.TariffLookup
	// Cache is optional; without it every tracking lookup reads the store.
	Cache ports.TrackingCache
	// Numbers defaults to the crypto/rand generator.
	Numbers ports.TrackingNumberSource
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewParcelService creates a new ParcelServiceImpl.
func NewParcelService(deps Dependencies) *ParcelServiceImpl {
	s := &ParcelServiceImpl{
		parcels:   deps.Parcels,
		directory: deps.Directory,
		tariffs:   deps.Tariffs,
		cache:     deps.Cache,
		numbers:   deps.Numbers,
		now:       deps.Now,
		log:       logger.Named("parcels"),
	}
	if s.numbers == nil {
		s.numbers = domain.NewTrackingNumberGenerator()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Statuses returns the status vocabulary.
func (s *ParcelServiceImpl) Statuses() []domain.Status {
	return domain.Statuses()
}

// Get returns a parcel with its history. Notes are internal and only shown to staff.
func (s *ParcelServiceImpl) Get(ctx context.Context, actor *access.Actor, id uint64) (*domain.ParcelView, error) {
	if actor == nil {
		return nil, access.ErrUnauthenticated
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanViewParcel(actor, p.SenderID, p.ReceiverID); err != nil {
		return nil, err
	}

	view := domain.NewParcelView(p)
	if view.History, err = s.parcels.History(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("service: failed to load history of parcel %d: %w", p.ID, err)
	}
	if actor.IsStaff() {
		if view.Notes, err = s.parcels.Notes(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("service: failed to load notes of parcel %d: %w", p.ID, err)
		}
	}
	return &view, nil
}

// List returns parcels matching filter. Clients only ever see parcels they send or receive.
func (s *ParcelServiceImpl) List(ctx context.Context, actor *access.Actor, filter ports.ListFilter) ([]domain.ParcelView, error) {
	if actor == nil {
		return nil, access.ErrUnauthenticated
	}
	if !actor.Can(access.ViewAllParcels) {
		filter.PartyID = actor.UserID
	}

	parcels, err := s.parcels.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list parcels: %w", err)
	}
	views := make([]domain.ParcelView, 0, len(parcels))
	for i := range parcels {
		views = append(views, domain.NewParcelView(&parcels[i]))
	}
	return views, nil
}

// Track is the public lookup by tracking number.
func (s *ParcelServiceImpl) Track(ctx context.Context, trackingNumber string) (*domain.TrackingView, error) {
	number := domain.NormalizeTrackingNumber(trackingNumber)
	if number == "" {
		return nil, apperr.Validation("tracking_number", "tracking_number is required")
	}

	if s.cache != nil {
		view, err := s.cache.Get(ctx, number)
		if err != nil {
			s.log.Warn("Tracking cache read failed", zap.String("tracking_number", number), zap.Error(err))
		} else if view != nil {
			return view, nil
		}
	}

	p, err := s.parcels.FindByTrackingNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("service: failed to find parcel %s: %w", number, err)
	}
	history, err := s.parcels.History(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load history of parcel %s: %w", number, err)
	}

	view := domain.NewTrackingView(p, history)
	if s.cache != nil {
		if err := s.cache.Set(ctx, &view); err != nil {
			s.log.Warn("Tracking cache write failed", zap.String("tracking_number", number), zap.Error(err))
		}
	}
	return &view, nil
}

func (s *ParcelServiceImpl) find(ctx context.Context, id uint64) (*domain.Parcel, error) {
	p, err := s.parcels.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load parcel %d: %w", id, err)
	}
	return p, nil
}

// invalidate drops the cached public view after a committed change. A failure only
// delays freshness until the entry expires.
func (s *ParcelServiceImpl) invalidate(ctx context.Context, trackingNumber string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, trackingNumber); err != nil {
		s.log.Warn("Tracking cache invalidation failed", zap.String("tracking_number", trackingNumber), zap.Error(err))
	}
}

// party resolves a sender or receiver, returning notFound when it does not exist.
func (s *ParcelServiceImpl) party(ctx context.Context, id uint64, field string, notFound *apperr.Error) (*ports.Party, error) {
	if id == 0 {
		return nil, apperr.Validation(field, field+" is required")
	}
	party, err := s.directory.FindParty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve user %d: %w", id, err)
	}
	if party == nil {
		return nil, notFound.WithField(field).WithDetails(map[string]any{"id": id})
	}
	return party, nil
}

// office resolves an optional office id; nil or 0 yields no office.
func (s *ParcelServiceImpl) office(ctx context.Context, id *uint64, field string) (*ports.OfficeRef, error) {
	if id == nil || *id == 0 {
		return nil, nil
	}
	office, err := s.directory.FindOffice(ctx, *id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve office %d: %w", *id, err)
	}
	if office == nil {
		return nil, domain.ErrOfficeNotFound.WithField(field).WithDetails(map[string]any{"id": *id})
	}
	return office, nil
}

// employee returns the acting employee, or nil for staff without an employee record.
func (s *ParcelServiceImpl) employee(ctx context.Context, actor *access.Actor) (*ports.EmployeeRef, error) {
	e, err := s.directory.FindEmployee(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve employee %d: %w", actor.UserID, err)
	}
	return e, nil
}

// company derives the carrier from the sender office, then the receiver office, then
// falls back to the first company on record.
func (s *ParcelServiceImpl) company(ctx context.Context, senderOffice, receiverOffice *ports.OfficeRef) (*uint64, error) {
	switch {
	case senderOffice != nil:
		return &senderOffice.CompanyID, nil
	case receiverOffice != nil:
		return &receiverOffice.CompanyID, nil
	}
	id, err := s.directory.FirstCompany(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to find fallback company: %w", err)
	}
	if id == 0 {
		return nil, nil
	}
	return &id, nil
}

// applyTariff sets the tariff in effect for the parcel's company and delivery type.
func (s *ParcelServiceImpl) applyTariff(ctx context.Context, p *domain.Parcel) error {
	p.Tariff = nil
	if p.CompanyID == nil {
		return nil
	}
	tariff, err := s.tariffs.LookupTariff(ctx, *p.CompanyID, p.DeliveryType)
	if err != nil {
		return fmt.Errorf("service: failed to look up tariff: %w", err)
	}
	p.Tariff = tariff
	return nil
}

func employeeID(e *ports.EmployeeRef) *uint64 {
	if e == nil {
		return nil
	}
	id := e.UserID
	return &id
}

func historyNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if len(note) > maxHistoryNote {
		return "", apperr.Validation("note", fmt.Sprintf("note must be at most %d characters", maxHistoryNote))
	}
	return note, nil
}
