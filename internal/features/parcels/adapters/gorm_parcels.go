package adapters

import (
	"context"
	"fmt"
	"strings"

	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/features/parcels/domain"
	"parcel-ledger/internal/features/parcels/ports"
	registry "parcel-ledger/internal/features/registry/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormParcelRepository implements ports.ParcelRepository on postgres.
type GormParcelRepository struct {
	db *gorm.DB
}

// NewGormParcelRepository creates a new GormParcelRepository.
func NewGormParcelRepository(db *gorm.DB) *GormParcelRepository {
	return &GormParcelRepository{db: db}
}

// withLabels preloads every association used to label a parcel.
func (r *GormParcelRepository) withLabels(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Preload("SenderOffice").
		Preload("ReceiverOffice").
		Preload("PickupAddress").
		Preload("DeliveryAddress").
		Preload("Tariff").
		Preload("RegisteredBy.User")
}

// Create inserts the parcel and its first history entry in one transaction.
func (r *GormParcelRepository) Create(ctx context.Context, p *domain.Parcel, first *domain.HistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := toParcelRecord(p)
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return translate(err)
		}

		entry := toHistoryRecord(rec.ID, first)
		if err := tx.Omit(clause.Associations).Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to insert first history entry: %w", translate(err))
		}

		p.ID = rec.ID
		p.CreatedAt = rec.CreatedAt
		p.Version = rec.Version
		first.ID = entry.ID
		first.ParcelID = rec.ID
		first.CreatedAt = entry.CreatedAt
		return nil
	})
}

// FindByID returns the parcel or ErrParcelNotFound.
func (r *GormParcelRepository) FindByID(ctx context.Context, id uint64) (*domain.Parcel, error) {
	var rec database.ParcelRecord
	if err := r.withLabels(ctx).First(&rec, id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, domain.ErrParcelNotFound
		}
		return nil, fmt.Errorf("failed to load parcel %d: %w", id, err)
	}
	p := toParcel(rec)
	return &p, nil
}

// FindByTrackingNumber matches the number case-insensitively.
func (r *GormParcelRepository) FindByTrackingNumber(ctx context.Context, number string) (*domain.Parcel, error) {
	var rec database.ParcelRecord
	err := r.withLabels(ctx).
		Where("UPPER(tracking_number) = ?", domain.NormalizeTrackingNumber(number)).
		Take(&rec).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, domain.ErrParcelNotFound
		}
		return nil, fmt.Errorf("failed to find parcel %s: %w", number, err)
	}
	p := toParcel(rec)
	return &p, nil
}

// List returns parcels matching the filter, newest first. DeliveredTo is exclusive.
func (r *GormParcelRepository) List(ctx context.Context, f ports.ListFilter) ([]domain.Parcel, error) {
	q := r.withLabels(ctx).Order("created_at DESC, id DESC")
	if f.PartyID != 0 {
		q = q.Where("(sender_id = ? OR receiver_id = ?)", f.PartyID, f.PartyID)
	}
	if f.SenderID != 0 {
		q = q.Where("sender_id = ?", f.SenderID)
	}
	if f.ReceiverID != 0 {
		q = q.Where("receiver_id = ?", f.ReceiverID)
	}
	if f.RegisteredByID != 0 {
		q = q.Where("registered_by_id = ?", f.RegisteredByID)
	}
	if len(f.Statuses) > 0 {
		codes := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			codes[i] = string(s)
		}
		q = q.Where("status_code IN ?", codes)
	}
	if f.DeliveredFrom != nil {
		q = q.Where("delivered_at >= ?", *f.DeliveredFrom)
	}
	if f.DeliveredTo != nil {
		q = q.Where("delivered_at < ?", *f.DeliveredTo)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var recs []database.ParcelRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	out := make([]domain.Parcel, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toParcel(rec))
	}
	return out, nil
}

// ApplyTransition writes the new status and appends the history entry, both only
// if nobody else changed the parcel since it was read.
func (r *GormParcelRepository) ApplyTransition(ctx context.Context, p *domain.Parcel, entry *domain.HistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := r.bumpVersion(tx, p, map[string]interface{}{
			"status_code":  string(p.Status),
			"delivered_at": p.DeliveredAt,
		})
		if err != nil {
			return err
		}

		rec := toHistoryRecord(p.ID, entry)
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to append history entry: %w", translate(err))
		}

		p.Version++
		entry.ID = rec.ID
		entry.ParcelID = p.ID
		entry.CreatedAt = rec.CreatedAt
		return nil
	})
}

// Update writes the editable columns under the version check.
func (r *GormParcelRepository) Update(ctx context.Context, p *domain.Parcel) error {
	err := r.bumpVersion(r.db.WithContext(ctx), p, map[string]interface{}{
		"sender_id":           p.SenderID,
		"receiver_id":         p.ReceiverID,
		"sender_office_id":    p.SenderOfficeID,
		"receiver_office_id":  p.ReceiverOfficeID,
		"pickup_address_id":   p.PickupAddressID,
		"delivery_address_id": p.DeliveryAddressID,
		"company_id":          p.CompanyID,
		"delivery_type":       string(p.DeliveryType),
		"weight_kg":           p.WeightKg,
		"tariff_id":           p.TariffID(),
	})
	if err != nil {
		return err
	}
	p.Version++
	return nil
}

// bumpVersion applies columns and increments version where the stored version still
// equals p.Version.
func (r *GormParcelRepository) bumpVersion(tx *gorm.DB, p *domain.Parcel, columns map[string]interface{}) error {
	columns["version"] = gorm.Expr("version + 1")
	res := tx.Model(&database.ParcelRecord{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(columns)
	if res.Error != nil {
		return fmt.Errorf("failed to update parcel %d: %w", p.ID, translate(res.Error))
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := tx.Model(&database.ParcelRecord{}).Where("id = ?", p.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check parcel %d: %w", p.ID, err)
	}
	if count == 0 {
		return domain.ErrParcelNotFound
	}
	return domain.ErrVersionConflict
}

// Delete removes the parcel; history and notes cascade. The row is matched on the
// version and a deletable status so a concurrent transition wins over the delete.
func (r *GormParcelRepository) Delete(ctx context.Context, p *domain.Parcel) error {
	deletable := make([]string, 0, 2)
	for _, code := range domain.DeletableStatuses() {
		deletable = append(deletable, string(code))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND version = ? AND status_code IN ?", p.ID, p.Version, deletable).
			Delete(&database.ParcelRecord{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete parcel %d: %w", p.ID, res.Error)
		}
		if res.RowsAffected == 1 {
			return nil
		}

		var count int64
		if err := tx.Model(&database.ParcelRecord{}).Where("id = ?", p.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check parcel %d: %w", p.ID, err)
		}
		if count == 0 {
			return domain.ErrParcelNotFound
		}
		return domain.ErrVersionConflict
	})
}

// History returns the status history newest first.
func (r *GormParcelRepository) History(ctx context.Context, parcelID uint64) ([]domain.HistoryEntry, error) {
	var recs []database.ParcelHistoryRecord
	err := r.db.WithContext(ctx).
		Preload("Office").
		Preload("ChangedBy.User").
		Where("parcel_id = ?", parcelID).
		Order("created_at DESC, id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history of parcel %d: %w", parcelID, err)
	}

	out := make([]domain.HistoryEntry, 0, len(recs))
	for _, rec := range recs {
		e := domain.HistoryEntry{
			ID:          rec.ID,
			ParcelID:    rec.ParcelID,
			Status:      domain.StatusCode(rec.StatusCode),
			OfficeID:    rec.OfficeID,
			ChangedByID: rec.ChangedByID,
			Note:        rec.Note,
			CreatedAt:   rec.CreatedAt,
		}
		if rec.Office != nil {
			e.Office = rec.Office.Name
		}
		if rec.ChangedBy != nil {
			e.ChangedBy = displayName(rec.ChangedBy.User)
		}
		out = append(out, e)
	}
	return out, nil
}

// AddNote appends a note to the parcel.
func (r *GormParcelRepository) AddNote(ctx context.Context, note *domain.Note) error {
	rec := database.ParcelNoteRecord{
		ParcelID:    note.ParcelID,
		NoteType:    string(note.Type),
		Content:     note.Content,
		CreatedByID: note.CreatedByID,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return translate(err)
	}
	note.ID = rec.ID
	note.CreatedAt = rec.CreatedAt
	return nil
}

// Notes returns the parcel's notes newest first.
func (r *GormParcelRepository) Notes(ctx context.Context, parcelID uint64) ([]domain.Note, error) {
	var recs []database.ParcelNoteRecord
	err := r.db.WithContext(ctx).
		Preload("CreatedBy.User").
		Where("parcel_id = ?", parcelID).
		Order("created_at DESC, id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load notes of parcel %d: %w", parcelID, err)
	}

	out := make([]domain.Note, 0, len(recs))
	for _, rec := range recs {
		n := domain.Note{
			ID:          rec.ID,
			ParcelID:    rec.ParcelID,
			Type:        domain.NoteType(rec.NoteType),
			Content:     rec.Content,
			CreatedByID: rec.CreatedByID,
			CreatedAt:   rec.CreatedAt,
		}
		if rec.CreatedBy != nil {
			n.CreatedBy = displayName(rec.CreatedBy.User)
		}
		out = append(out, n)
	}
	return out, nil
}

// CountByParty counts the parcels a user sends and receives.
func (r *GormParcelRepository) CountByParty(ctx context.Context, userID uint64) (int64, int64, error) {
	var counts struct {
		Sent     int64
		Received int64
	}
	err := r.db.WithContext(ctx).
		Model(&database.ParcelRecord{}).
		Select("COUNT(*) FILTER (WHERE sender_id = ?) AS sent, COUNT(*) FILTER (WHERE receiver_id = ?) AS received", userID, userID).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Scan(&counts).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count parcels of user %d: %w", userID, err)
	}
	return counts.Sent, counts.Received, nil
}

func toParcelRecord(p *domain.Parcel) database.ParcelRecord {
	return database.ParcelRecord{
		TrackingNumber:    p.TrackingNumber,
		CompanyID:         p.CompanyID,
		SenderID:          p.SenderID,
		ReceiverID:        p.ReceiverID,
		SenderOfficeID:    p.SenderOfficeID,
		ReceiverOfficeID:  p.ReceiverOfficeID,
		PickupAddressID:   p.PickupAddressID,
		DeliveryAddressID: p.DeliveryAddressID,
		DeliveryType:      string(p.DeliveryType),
		WeightKg:          p.WeightKg,
		TariffID:          p.TariffID(),
		StatusCode:        string(p.Status),
		RegisteredByID:    p.RegisteredByID,
		DeliveredAt:       p.DeliveredAt,
		Version:           p.Version,
	}
}

func toHistoryRecord(parcelID uint64, e *domain.HistoryEntry) database.ParcelHistoryRecord {
	return database.ParcelHistoryRecord{
		ParcelID:    parcelID,
		StatusCode:  string(e.Status),
		OfficeID:    e.OfficeID,
		ChangedByID: e.ChangedByID,
		Note:        e.Note,
	}
}

func toParcel(rec database.ParcelRecord) domain.Parcel {
	p := domain.Parcel{
		ID:                rec.ID,
		TrackingNumber:    rec.TrackingNumber,
		CompanyID:         rec.CompanyID,
		SenderID:          rec.SenderID,
		ReceiverID:        rec.ReceiverID,
		SenderOfficeID:    rec.SenderOfficeID,
		ReceiverOfficeID:  rec.ReceiverOfficeID,
		PickupAddressID:   rec.PickupAddressID,
		DeliveryAddressID: rec.DeliveryAddressID,
		DeliveryType:      registry.DeliveryType(rec.DeliveryType),
		WeightKg:          rec.WeightKg,
		Status:            domain.StatusCode(rec.StatusCode),
		RegisteredByID:    rec.RegisteredByID,
		CreatedAt:         rec.CreatedAt,
		DeliveredAt:       rec.DeliveredAt,
		Version:           rec.Version,
	}
	if rec.Tariff != nil {
		p.Tariff = &registry.Tariff{
			ID:           rec.Tariff.ID,
			CompanyID:    rec.Tariff.CompanyID,
			DeliveryType: registry.DeliveryType(rec.Tariff.DeliveryType),
			PricePerKg:   rec.Tariff.PricePerKg,
		}
	}

	p.Labels.Sender = displayName(rec.Sender)
	p.Labels.Receiver = displayName(rec.Receiver)
	if rec.SenderOffice != nil {
		p.Labels.SenderOffice = rec.SenderOffice.Name
	}
	if rec.ReceiverOffice != nil {
		p.Labels.ReceiverOffice = rec.ReceiverOffice.Name
	}
	p.Labels.PickupAddress = addressLabel(rec.PickupAddress)
	p.Labels.DeliveryAddress = addressLabel(rec.DeliveryAddress)
	if rec.RegisteredBy != nil {
		p.Labels.RegisteredBy = displayName(rec.RegisteredBy.User)
	}
	return p
}

func displayName(u *database.UserRecord) string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}

func addressLabel(a *database.AddressRecord) string {
	if a == nil {
		return ""
	}
	return registry.Address{
		Country:    a.Country,
		City:       a.City,
		PostalCode: a.PostalCode,
		Street:     a.Street,
	}.String()
}
