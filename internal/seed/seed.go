// Package seed loads a small Bulgarian sample dataset for demos and manual testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/core/logger"
	directory "parcel-ledger/internal/features/directory/domain"
	parceladapter "parcel-ledger/internal/features/parcels/adapters"
	parcels "parcel-ledger/internal/features/parcels/domain"
	registry "parcel-ledger/internal/features/registry/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	adminUsername    = "admin"
	adminPassword    = "admin123"
	employeePassword = "employee123"
	clientPassword   = "client123"
)

// ErrAlreadySeeded is returned by Run when the admin account already exists.
var ErrAlreadySeeded = errors.New("database already seeded")

// Summary counts what Run created.
type Summary struct {
	Users   int
	Offices int
	Parcels int
}

// NumberSource issues tracking numbers.
type NumberSource interface {
	Next() (string, error)
}

// Seeder writes the sample dataset in a single transaction.
type Seeder struct {
	db      *gorm.DB
	numbers NumberSource
	hash    func(password string) (string, error)
	now     func() time.Time
	log     *zap.Logger
}

// NewSeeder creates a new Seeder.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		numbers: parcels.NewTrackingNumberGenerator(),
		hash:    auth.HashPassword,
		now:     func() time.Time { return time.Now().UTC() },
		log:     logger.Named("seed"),
	}
}

// Clear empties every table.
func (s *Seeder) Clear(ctx context.Context) error {
	if err := database.Truncate(ctx, s.db); err != nil {
		return err
	}
	s.log.Info("Database cleared")
	return nil
}

// Run inserts the dataset. It refuses to run twice against the same database.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&database.UserRecord{}).
		Where("username = ?", adminUsername).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check for existing data: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadySeeded
	}

	sum := &Summary{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := parceladapter.SyncStatusCatalog(ctx, tx); err != nil {
			return err
		}
		w := &world{tx: tx, s: s, sum: sum, now: s.now()}
		for _, step := range []func() error{
			w.addAdmin,
			w.addAddresses,
			w.addCompany,
			w.addOffices,
			w.addEmployees,
			w.addClients,
			w.addParcels,
		} {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	s.log.Info("Database seeded",
		zap.Int("users", sum.Users),
		zap.Int("offices", sum.Offices),
		zap.Int("parcels", sum.Parcels),
	)
	return sum, nil
}

// world carries the ids created so far.
type world struct {
	tx  *gorm.DB
	s   *Seeder
	sum *Summary
	now time.Time

	addressIDs []uint64
	companyID  uint64
	tariffIDs  map[registry.DeliveryType]uint64
	officeIDs  []uint64
	managerID  uint64
	courierID  uint64
	clients    []database.UserRecord
}

func (w *world) create(v interface{}) error {
	return w.tx.Omit(clause.Associations).Create(v).Error
}

func (w *world) user(username, first, last, email, phone, password string, role access.Role) (database.UserRecord, error) {
	hash, err := w.s.hash(password)
	if err != nil {
		return database.UserRecord{}, err
	}
	u := database.UserRecord{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    first,
		LastName:     last,
		Phone:        phone,
		Role:         string(role),
		CreatedAt:    w.now,
	}
	if err := w.create(&u); err != nil {
		return u, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	w.sum.Users++
	return u, nil
}

func (w *world) addAdmin() error {
	_, err := w.user(adminUsername, "Admin", "User", "admin@test.bg", "+359 888 000 000", adminPassword, access.RoleAdmin)
	return err
}

func (w *world) addAddresses() error {
	rows := []database.AddressRecord{
		{Country: "Bulgaria", City: "Sofia", PostalCode: "1000", Street: "Vitosha Blvd 1", Details: "Floor 2"},
		{Country: "Bulgaria", City: "Sofia", PostalCode: "1113", Street: "Tsarigradsko Shose 1", Details: "Building A"},
		{Country: "Bulgaria", City: "Plovdiv", PostalCode: "4000", Street: "Main Street 1"},
		{Country: "Bulgaria", City: "Varna", PostalCode: "9000", Street: "Main Blvd 1", Details: "Near beach"},
		{Country: "Bulgaria", City: "Burgas", PostalCode: "8000", Street: "Bul Bulgaria 1"},
		{Country: "Bulgaria", City: "Ruse", PostalCode: "7000", Street: "Ul Ruse 1", Details: "Center"},
	}
	if err := w.create(&rows); err != nil {
		return fmt.Errorf("failed to create addresses: %w", err)
	}
	for _, r := range rows {
		w.addressIDs = append(w.addressIDs, r.ID)
	}
	return nil
}

func (w *world) addCompany() error {
	c := database.CompanyRecord{
		Name:      "Express Logistics BG",
		Bulstat:   "BG123456789",
		Phone:     "+359 2 123 4567",
		AddressID: w.addressIDs[0],
	}
	if err := w.create(&c); err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	w.companyID = c.ID

	w.tariffIDs = make(map[registry.DeliveryType]uint64)
	for _, t := range []struct {
		kind registry.DeliveryType
		rate string
	}{
		{registry.DeliveryStandard, "5.00"},
		{registry.DeliveryExpress, "8.50"},
	} {
		rec := database.TariffRecord{
			CompanyID:    c.ID,
			DeliveryType: string(t.kind),
			PricePerKg:   decimal.RequireFromString(t.rate),
		}
		if err := w.create(&rec); err != nil {
			return fmt.Errorf("failed to create %s tariff: %w", t.kind, err)
		}
		w.tariffIDs[t.kind] = rec.ID
	}
	return nil
}

func (w *world) addOffices() error {
	rows := []database.OfficeRecord{
		{Name: "Sofia Central", Code: "SOF-C", Phone: "+359 2 111 1111", AddressID: w.addressIDs[0], WorkingHours: "08:00-20:00"},
		{Name: "Sofia East", Code: "SOF-E", Phone: "+359 2 222 2222", AddressID: w.addressIDs[1], WorkingHours: "09:00-18:00"},
		{Name: "Plovdiv Office", Code: "PLV-1", Phone: "+359 32 333 333", AddressID: w.addressIDs[2], WorkingHours: "08:30-17:30"},
		{Name: "Varna Office", Code: "VAR-1", Phone: "+359 52 444 444", AddressID: w.addressIDs[3], WorkingHours: "09:00-18:00"},
	}
	for i := range rows {
		rows[i].CompanyID = w.companyID
	}
	if err := w.create(&rows); err != nil {
		return fmt.Errorf("failed to create offices: %w", err)
	}
	for _, r := range rows {
		w.officeIDs = append(w.officeIDs, r.ID)
	}
	w.sum.Offices = len(rows)
	return nil
}

func (w *world) addEmployees() error {
	hired := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	staff := []struct {
		username, first, last, email, phone, code string
		kind                                      directory.EmployeeType
		office                                    int
		salary                                    string
	}{
		{"manager1", "Ivan", "Petrov", "ivan@test.bg", "+359 888 111 111", "EMP-001", directory.EmployeeManager, 0, "3500.00"},
		{"office1", "Maria", "Georgieva", "maria@test.bg", "+359 888 222 222", "EMP-002", directory.EmployeeOffice, 0, "2000.00"},
		{"office2", "Petar", "Ivanov", "petar@test.bg", "+359 888 333 333", "EMP-003", directory.EmployeeOffice, 1, "2000.00"},
		{"courier1", "Georgi", "Dimitrov", "georgi@test.bg", "+359 888 444 444", "EMP-004", directory.EmployeeCourier, 0, "1800.00"},
	}

	for _, e := range staff {
		u, err := w.user(e.username, e.first, e.last, e.email, e.phone, employeePassword, access.RoleEmployee)
		if err != nil {
			return err
		}
		rec := database.EmployeeRecord{
			UserID:   u.ID,
			Code:     e.code,
			Type:     string(e.kind),
			OfficeID: w.officeIDs[e.office],
			HireDate: hired,
			Salary:   decimal.RequireFromString(e.salary),
		}
		if err := w.create(&rec); err != nil {
			return fmt.Errorf("failed to create employee %s: %w", e.code, err)
		}
		switch e.kind {
		case directory.EmployeeManager:
			w.managerID = u.ID
		case directory.EmployeeCourier:
			w.courierID = u.ID
		}
	}
	return nil
}

func (w *world) addClients() error {
	people := []struct {
		username, first, last, email, phone string
		address                             int
	}{
		{"client1", "Anna", "Koleva", "anna@mail.bg", "+359 899 111 111", 4},
		{"client2", "Stefan", "Marinov", "stefan@mail.bg", "+359 899 222 222", 5},
		{"client3", "Elena", "Todorova", "elena@mail.bg", "+359 899 333 333", 0},
		{"client4", "Viktor", "Petkov", "viktor@mail.bg", "+359 899 444 444", 1},
	}

	for _, p := range people {
		u, err := w.user(p.username, p.first, p.last, p.email, p.phone, clientPassword, access.RoleClient)
		if err != nil {
			return err
		}
		addressID := w.addressIDs[p.address]
		link := database.UserAddressRecord{UserID: u.ID, AddressID: addressID}
		if err := w.create(&link); err != nil {
			return fmt.Errorf("failed to link address of %s: %w", p.username, err)
		}
		if err := w.tx.Model(&database.UserRecord{}).Where("id = ?", u.ID).
			Update("default_address_id", addressID).Error; err != nil {
			return fmt.Errorf("failed to set default address of %s: %w", p.username, err)
		}
		u.DefaultAddressID = &addressID
		w.clients = append(w.clients, u)
	}
	return nil
}

// step is one backdated history entry after registration.
type step struct {
	status parcels.StatusCode
	office int
	by     *uint64
	note   string
	ago    time.Duration
}

func (w *world) addParcels() error {
	day := 24 * time.Hour
	manager, courier := &w.managerID, &w.courierID

	type sample struct {
		sender, receiver int
		from, to         int
		weight           string
		kind             registry.DeliveryType
		steps            []step
		note             *parcels.Note
	}
	samples := []sample{
		{sender: 0, receiver: 1, from: 0, to: 1, weight: "1.500", kind: registry.DeliveryStandard},
		{sender: 1, receiver: 2, from: 1, to: 2, weight: "3.200", kind: registry.DeliveryExpress, steps: []step{
			{parcels.StatusInTransit, 1, manager, "Picked up from sender office", day},
		}},
		{sender: 2, receiver: 3, from: 2, to: 3, weight: "0.800", kind: registry.DeliveryStandard, steps: []step{
			{parcels.StatusInTransit, 2, manager, "In transit to destination", 5 * day},
			{parcels.StatusOutForDelivery, 3, courier, "Out for delivery", 3 * day},
			{parcels.StatusDelivered, 3, courier, "Delivered to recipient", 2 * day},
		}},
		{sender: 3, receiver: 0, from: 3, to: 0, weight: "2.100", kind: registry.DeliveryExpress, steps: []step{
			{parcels.StatusInTransit, 3, manager, "Shipped from Varna", 2 * day},
			{parcels.StatusOutForDelivery, 0, courier, "Courier assigned for delivery", 3 * time.Hour},
		}, note: &parcels.Note{Type: parcels.NoteDelivery, Content: "Please call before delivery. Customer prefers afternoon delivery.", CreatedAt: w.now.Add(-day)}},
		{sender: 0, receiver: 2, from: 0, to: 2, weight: "5.000", kind: registry.DeliveryStandard, steps: []step{
			{parcels.StatusInTransit, 0, manager, "Shipped", 4 * day},
			{parcels.StatusOutForDelivery, 2, courier, "Delivery attempt", 2 * day},
			{parcels.StatusReturned, 0, manager, "Recipient not available after 3 attempts", day},
		}, note: &parcels.Note{Type: parcels.NoteIssue, Content: "Multiple delivery attempts failed. Recipient not home.", CreatedAt: w.now.Add(-2 * day)}},
		{sender: 1, receiver: 3, from: 1, to: 3, weight: "0.500", kind: registry.DeliveryStandard, steps: []step{
			{parcels.StatusCancelled, 1, manager, "Cancelled by sender request", 3 * day},
		}},
		{sender: 2, receiver: 0, from: 2, to: 0, weight: "4.500", kind: registry.DeliveryExpress, steps: []step{
			{parcels.StatusInTransit, 2, manager, "In transit to destination", 6 * day},
			{parcels.StatusDelivered, 0, courier, "Delivered to recipient", 5 * day},
		}},
	}

	registered := w.now.Add(-7 * day)
	for _, smp := range samples {
		number, err := w.s.numbers.Next()
		if err != nil {
			return err
		}
		sender, receiver := w.clients[smp.sender], w.clients[smp.receiver]
		fromOffice, toOffice := w.officeIDs[smp.from], w.officeIDs[smp.to]
		tariffID := w.tariffIDs[smp.kind]
		p := database.ParcelRecord{
			TrackingNumber:    number,
			CompanyID:         &w.companyID,
			SenderID:          sender.ID,
			ReceiverID:        receiver.ID,
			SenderOfficeID:    &fromOffice,
			ReceiverOfficeID:  &toOffice,
			PickupAddressID:   sender.DefaultAddressID,
			DeliveryAddressID: receiver.DefaultAddressID,
			DeliveryType:      string(smp.kind),
			WeightKg:          decimal.RequireFromString(smp.weight),
			TariffID:          &tariffID,
			StatusCode:        string(parcels.StatusCreated),
			RegisteredByID:    manager,
			CreatedAt:         registered,
			Version:           1,
		}
		for _, st := range smp.steps {
			p.StatusCode = string(st.status)
			if st.status == parcels.StatusDelivered {
				at := w.now.Add(-st.ago)
				p.DeliveredAt = &at
			}
		}
		if err := w.create(&p); err != nil {
			return fmt.Errorf("failed to create parcel %s: %w", number, err)
		}

		history := []database.ParcelHistoryRecord{{
			ParcelID:    p.ID,
			StatusCode:  string(parcels.StatusCreated),
			OfficeID:    &fromOffice,
			ChangedByID: manager,
			Note:        "Parcel registered",
			CreatedAt:   registered,
		}}
		for _, st := range smp.steps {
			office := w.officeIDs[st.office]
			history = append(history, database.ParcelHistoryRecord{
				ParcelID:    p.ID,
				StatusCode:  string(st.status),
				OfficeID:    &office,
				ChangedByID: st.by,
				Note:        st.note,
				CreatedAt:   w.now.Add(-st.ago),
			})
		}
		if err := w.create(&history); err != nil {
			return fmt.Errorf("failed to create history of %s: %w", number, err)
		}

		if smp.note != nil {
			note := database.ParcelNoteRecord{
				ParcelID:  p.ID,
				NoteType:  string(smp.note.Type),
				Content:   smp.note.Content,
				CreatedAt: smp.note.CreatedAt,
			}
			if err := w.create(&note); err != nil {
				return fmt.Errorf("failed to create note on %s: %w", number, err)
			}
		}
		w.sum.Parcels++
	}
	return nil
}
