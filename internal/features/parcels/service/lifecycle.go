package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/apperr"
	"parcel-ledger/internal/features/parcels/domain"
	"parcel-ledger/internal/features/parcels/ports"
	registry "parcel-ledger/internal/features/registry/domain"

	"go.uber.org/zap"
)

// Create registers a parcel. Inputs are checked in a fixed order: parties, weight,
// delivery type, then offices and addresses. Nothing is written unless all pass.
func (s *ParcelServiceImpl) Create(ctx context.Context, actor *access.Actor, in ports.CreateInput) (*domain.ParcelView, error) {
	if err := access.Authorize(actor, access.CreateParcel); err != nil {
		return nil, err
	}

	if in.SenderID != 0 && in.SenderID == in.ReceiverID {
		return nil, domain.ErrSameParties.WithField("receiver_id")
	}
	sender, err := s.party(ctx, in.SenderID, "sender_id", domain.ErrSenderNotFound)
	if err != nil {
		return nil, err
	}
	receiver, err := s.party(ctx, in.ReceiverID, "receiver_id", domain.ErrReceiverNotFound)
	if err != nil {
		return nil, err
	}

	weight, err := domain.ParseWeight(in.WeightKg)
	if err != nil {
		return nil, err
	}
	deliveryType, err := registry.ParseDeliveryType(in.DeliveryType)
	if err != nil {
		return nil, err
	}

	senderOffice, err := s.office(ctx, in.SenderOfficeID, "sender_office_id")
	if err != nil {
		return nil, err
	}
	receiverOffice, err := s.office(ctx, in.ReceiverOfficeID, "receiver_office_id")
	if err != nil {
		return nil, err
	}

	p := &domain.Parcel{
		SenderID:     sender.ID,
		ReceiverID:   receiver.ID,
		DeliveryType: deliveryType,
		WeightKg:     weight,
		Status:       domain.StatusCreated,
		Version:      1,
		Labels:       domain.Labels{Sender: sender.Name, Receiver: receiver.Name},
	}
	setSenderEnd(p, sender, senderOffice)
	setReceiverEnd(p, receiver, receiverOffice)
	if err := p.ValidateRoute(); err != nil {
		return nil, err
	}

	if p.CompanyID, err = s.company(ctx, senderOffice, receiverOffice); err != nil {
		return nil, err
	}
	if err := s.applyTariff(ctx, p); err != nil {
		return nil, err
	}

	employee, err := s.employee(ctx, actor)
	if err != nil {
		return nil, err
	}
	p.RegisteredByID = employeeID(employee)

	entry := &domain.HistoryEntry{
		Status:      domain.StatusCreated,
		OfficeID:    p.SenderOfficeID,
		ChangedByID: p.RegisteredByID,
		Note:        registeredNote,
	}
	if err := s.insert(ctx, p, entry); err != nil {
		return nil, err
	}

	s.log.Info("Parcel registered",
		zap.Uint64("parcel_id", p.ID),
		zap.String("tracking_number", p.TrackingNumber),
		zap.String("price", p.Price().StringFixed(2)),
		zap.Uint64("actor_id", actor.UserID),
	)
	view := domain.NewParcelView(p)
	view.History = []domain.HistoryEntry{*entry}
	return &view, nil
}

// insert stores the parcel under a fresh tracking number, drawing a new one when the
// store reports a collision.
func (s *ParcelServiceImpl) insert(ctx context.Context, p *domain.Parcel, entry *domain.HistoryEntry) error {
	for attempt := 1; ; attempt++ {
		number, err := s.numbers.Next()
		if err != nil {
			return fmt.Errorf("service: failed to generate tracking number: %w", err)
		}
		p.TrackingNumber = number

		err = s.parcels.Create(ctx, p, entry)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrTrackingNumberTaken) && attempt < maxTrackingAttempts {
			s.log.Warn("Tracking number collision, retrying", zap.String("tracking_number", number), zap.Int("attempt", attempt))
			continue
		}
		return fmt.Errorf("service: failed to create parcel: %w", err)
	}
}

// ChangeStatus moves a parcel to another status and appends one history entry. The
// office recorded is the explicit override or the acting employee's home office.
func (s *ParcelServiceImpl) ChangeStatus(ctx context.Context, actor *access.Actor, id uint64, change ports.StatusChange) (*domain.ParcelView, error) {
	if err := access.Authorize(actor, access.ChangeParcelStatus); err != nil {
		return nil, err
	}
	target, err := domain.ParseStatusCode(change.Status)
	if err != nil {
		return nil, err
	}
	note, err := historyNote(change.Note)
	if err != nil {
		return nil, err
	}

	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsTerminal() && p.Status == target {
		return nil, domain.ErrStatusUnchanged.WithField("status")
	}
	from := p.Status
	if err := domain.Transition(p, target, s.now()); err != nil {
		return nil, err
	}

	employee, err := s.employee(ctx, actor)
	if err != nil {
		return nil, err
	}
	entry := &domain.HistoryEntry{
		ParcelID:    p.ID,
		Status:      target,
		ChangedByID: employeeID(employee),
		Note:        note,
	}
	if change.OfficeID != nil && *change.OfficeID != 0 {
		office, err := s.office(ctx, change.OfficeID, "office_id")
		if err != nil {
			return nil, err
		}
		entry.OfficeID = &office.ID
		entry.Office = office.Name
	} else if employee != nil {
		entry.OfficeID = &employee.OfficeID
	}

	if err := s.parcels.ApplyTransition(ctx, p, entry); err != nil {
		return nil, fmt.Errorf("service: failed to change status of parcel %d: %w", p.ID, err)
	}
	s.invalidate(ctx, p.TrackingNumber)

	s.log.Info("Parcel status changed",
		zap.Uint64("parcel_id", p.ID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.Uint64("actor_id", actor.UserID),
	)
	view := domain.NewParcelView(p)
	return &view, nil
}

// Update edits a non-terminal parcel. Changing the delivery type or the offices
// re-resolves the company and tariff; clearing an office falls back to the party's
// default address.
func (s *ParcelServiceImpl) Update(ctx context.Context, actor *access.Actor, id uint64, patch ports.UpdatePatch) (*domain.ParcelView, error) {
	if err := access.Authorize(actor, access.UpdateParcel); err != nil {
		return nil, err
	}

	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsTerminal() {
		return nil, domain.ErrParcelTerminal.WithDetails(map[string]any{"status": string(p.Status)})
	}
	if patch.Version != nil && *patch.Version != p.Version {
		return nil, domain.ErrVersionConflict.WithDetails(map[string]any{"version": p.Version})
	}

	senderID, receiverID := p.SenderID, p.ReceiverID
	if patch.SenderID != nil {
		senderID = *patch.SenderID
	}
	if patch.ReceiverID != nil {
		receiverID = *patch.ReceiverID
	}
	if senderID == receiverID {
		return nil, domain.ErrSameParties.WithField("receiver_id")
	}
	sender, err := s.party(ctx, senderID, "sender_id", domain.ErrSenderNotFound)
	if err != nil {
		return nil, err
	}
	receiver, err := s.party(ctx, receiverID, "receiver_id", domain.ErrReceiverNotFound)
	if err != nil {
		return nil, err
	}

	if patch.WeightKg != nil {
		if p.WeightKg, err = domain.ParseWeight(*patch.WeightKg); err != nil {
			return nil, err
		}
	}
	retariff := false
	if patch.DeliveryType != nil {
		dt, err := registry.ParseDeliveryType(*patch.DeliveryType)
		if err != nil {
			return nil, err
		}
		retariff = dt != p.DeliveryType
		p.DeliveryType = dt
	}

	senderOffice, err := s.office(ctx, p.SenderOfficeID, "sender_office_id")
	if err != nil {
		return nil, err
	}
	receiverOffice, err := s.office(ctx, p.ReceiverOfficeID, "receiver_office_id")
	if err != nil {
		return nil, err
	}
	officesChanged := false
	if patch.SenderOfficeID != nil {
		if senderOffice, err = s.office(ctx, patch.SenderOfficeID, "sender_office_id"); err != nil {
			return nil, err
		}
		officesChanged = true
	}
	if patch.ReceiverOfficeID != nil {
		if receiverOffice, err = s.office(ctx, patch.ReceiverOfficeID, "receiver_office_id"); err != nil {
			return nil, err
		}
		officesChanged = true
	}

	// A new party brings its own default address even when an office is kept.
	if patch.SenderID != nil {
		p.PickupAddressID = sender.DefaultAddressID
	}
	if patch.ReceiverID != nil {
		p.DeliveryAddressID = receiver.DefaultAddressID
	}
	if patch.SenderID != nil || patch.SenderOfficeID != nil {
		setSenderEnd(p, sender, senderOffice)
	}
	if patch.ReceiverID != nil || patch.ReceiverOfficeID != nil {
		setReceiverEnd(p, receiver, receiverOffice)
	}
	p.SenderID, p.ReceiverID = sender.ID, receiver.ID

	if officesChanged {
		company, err := s.company(ctx, senderOffice, receiverOffice)
		if err != nil {
			return nil, err
		}
		if senderOffice != nil || receiverOffice != nil || p.CompanyID == nil {
			retariff = retariff || !sameID(company, p.CompanyID)
			p.CompanyID = company
		}
	}
	if retariff {
		if err := s.applyTariff(ctx, p); err != nil {
			return nil, err
		}
	}
	if err := p.ValidateRoute(); err != nil {
		return nil, err
	}

	if err := s.parcels.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("service: failed to update parcel %d: %w", p.ID, err)
	}
	s.invalidate(ctx, p.TrackingNumber)

	s.log.Info("Parcel updated", zap.Uint64("parcel_id", p.ID), zap.Uint64("actor_id", actor.UserID))
	updated, err := s.find(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	view := domain.NewParcelView(updated)
	return &view, nil
}

// Delete removes a parcel that is still CREATED or was CANCELLED.
func (s *ParcelServiceImpl) Delete(ctx context.Context, actor *access.Actor, id uint64) error {
	if err := access.Authorize(actor, access.DeleteParcel); err != nil {
		return err
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !p.CanDelete() {
		return domain.ErrNotDeletable.WithDetails(map[string]any{"status": string(p.Status)})
	}

	if err := s.parcels.Delete(ctx, p); err != nil {
		return fmt.Errorf("service: failed to delete parcel %d: %w", p.ID, err)
	}
	s.invalidate(ctx, p.TrackingNumber)

	s.log.Info("Parcel deleted",
		zap.Uint64("parcel_id", p.ID),
		zap.String("tracking_number", p.TrackingNumber),
		zap.Uint64("actor_id", actor.UserID),
	)
	return nil
}

// AddNote attaches a staff note. Notes are allowed on terminal parcels too.
func (s *ParcelServiceImpl) AddNote(ctx context.Context, actor *access.Actor, id uint64, noteType, content string) (*domain.Note, error) {
	if err := access.Authorize(actor, access.AddParcelNote); err != nil {
		return nil, err
	}
	nt, err := domain.ParseNoteType(noteType)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content", "content is required")
	}

	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	employee, err := s.employee(ctx, actor)
	if err != nil {
		return nil, err
	}

	note := &domain.Note{ParcelID: p.ID, Type: nt, Content: content, CreatedByID: employeeID(employee)}
	if err := s.parcels.AddNote(ctx, note); err != nil {
		return nil, fmt.Errorf("service: failed to add note to parcel %d: %w", p.ID, err)
	}

	s.log.Info("Parcel note added",
		zap.Uint64("parcel_id", p.ID),
		zap.String("note_type", string(nt)),
		zap.Uint64("actor_id", actor.UserID),
	)
	return note, nil
}

// setSenderEnd points the pickup side at the office, or at the sender's default
// address when there is none.
func setSenderEnd(p *domain.Parcel, sender *ports.Party, office *ports.OfficeRef) {
	if office != nil {
		p.SenderOfficeID = &office.ID
		p.Labels.SenderOffice = office.Name
		return
	}
	p.SenderOfficeID = nil
	p.Labels.SenderOffice = ""
	p.PickupAddressID = sender.DefaultAddressID
}

// setReceiverEnd is the delivery-side counterpart of setSenderEnd.
func setReceiverEnd(p *domain.Parcel, receiver *ports.Party, office *ports.OfficeRef) {
	if office != nil {
		p.ReceiverOfficeID = &office.ID
		p.Labels.ReceiverOffice = office.Name
		return
	}
	p.ReceiverOfficeID = nil
	p.Labels.ReceiverOffice = ""
	p.DeliveryAddressID = receiver.DefaultAddressID
}

func sameID(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
