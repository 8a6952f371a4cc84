package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/features/parcels/domain"
	"parcel-ledger/internal/features/parcels/ports"
	registry "parcel-ledger/internal/features/registry/domain"

	"github.com/shopspring/decimal"
)

type fakeParcels struct {
	byID    map[uint64]*domain.Parcel
	history map[uint64][]domain.HistoryEntry
	notes   map[uint64][]domain.Note
	nextID  uint64
	clock   time.Time
	// taken lists tracking numbers Create must reject.
	taken map[string]bool
	// concurrentWrite simulates another writer bumping the version first.
	concurrentWrite bool
}

func newFakeParcels() *fakeParcels {
	return &fakeParcels{
		byID:    map[uint64]*domain.Parcel{},
		history: map[uint64][]domain.HistoryEntry{},
		notes:   map[uint64][]domain.Note{},
		taken:   map[string]bool{},
		clock:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeParcels) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeParcels) Create(ctx context.Context, p *domain.Parcel, first *domain.HistoryEntry) error {
	if f.taken[p.TrackingNumber] {
		return domain.ErrTrackingNumberTaken
	}
	for _, existing := range f.byID {
		if existing.TrackingNumber == p.TrackingNumber {
			return domain.ErrTrackingNumberTaken
		}
	}
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = f.tick()
	p.Version = 1
	cp := *p
	f.byID[p.ID] = &cp

	first.ID = uint64(len(f.history[p.ID]) + 1)
	first.ParcelID = p.ID
	first.CreatedAt = p.CreatedAt
	f.history[p.ID] = append(f.history[p.ID], *first)
	return nil
}

func (f *fakeParcels) FindByID(ctx context.Context, id uint64) (*domain.Parcel, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrParcelNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeParcels) FindByTrackingNumber(ctx context.Context, number string) (*domain.Parcel, error) {
	for _, p := range f.byID {
		if domain.NormalizeTrackingNumber(p.TrackingNumber) == domain.NormalizeTrackingNumber(number) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrParcelNotFound
}

func (f *fakeParcels) List(ctx context.Context, filter ports.ListFilter) ([]domain.Parcel, error) {
	var out []domain.Parcel
	for _, p := range f.byID {
		if filter.PartyID != 0 && !p.IsParty(filter.PartyID) {
			continue
		}
		if filter.SenderID != 0 && p.SenderID != filter.SenderID {
			continue
		}
		if filter.ReceiverID != 0 && p.ReceiverID != filter.ReceiverID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeParcels) checkVersion(p *domain.Parcel) error {
	stored, ok := f.byID[p.ID]
	if !ok {
		return domain.ErrParcelNotFound
	}
	if f.concurrentWrite {
		stored.Version++
		f.concurrentWrite = false
	}
	if stored.Version != p.Version {
		return domain.ErrVersionConflict
	}
	return nil
}

func (f *fakeParcels) ApplyTransition(ctx context.Context, p *domain.Parcel, entry *domain.HistoryEntry) error {
	if err := f.checkVersion(p); err != nil {
		return err
	}
	p.Version++
	cp := *p
	f.byID[p.ID] = &cp

	entry.ID = uint64(len(f.history[p.ID]) + 1)
	entry.ParcelID = p.ID
	entry.CreatedAt = f.tick()
	f.history[p.ID] = append(f.history[p.ID], *entry)
	return nil
}

func (f *fakeParcels) Update(ctx context.Context, p *domain.Parcel) error {
	if err := f.checkVersion(p); err != nil {
		return err
	}
	p.Version++
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeParcels) Delete(ctx context.Context, p *domain.Parcel) error {
	if err := f.checkVersion(p); err != nil {
		return err
	}
	if !f.byID[p.ID].CanDelete() {
		return domain.ErrVersionConflict
	}
	id := p.ID
	delete(f.byID, id)
	delete(f.history, id)
	delete(f.notes, id)
	return nil
}

func (f *fakeParcels) History(ctx context.Context, parcelID uint64) ([]domain.HistoryEntry, error) {
	entries := f.history[parcelID]
	out := make([]domain.HistoryEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out, nil
}

func (f *fakeParcels) AddNote(ctx context.Context, note *domain.Note) error {
	if _, ok := f.byID[note.ParcelID]; !ok {
		return domain.ErrParcelNotFound
	}
	note.ID = uint64(len(f.notes[note.ParcelID]) + 1)
	note.CreatedAt = f.tick()
	f.notes[note.ParcelID] = append(f.notes[note.ParcelID], *note)
	return nil
}

func (f *fakeParcels) Notes(ctx context.Context, parcelID uint64) ([]domain.Note, error) {
	return f.notes[parcelID], nil
}

func (f *fakeParcels) CountByParty(ctx context.Context, userID uint64) (int64, int64, error) {
	var sent, received int64
	for _, p := range f.byID {
		if p.SenderID == userID {
			sent++
		}
		if p.ReceiverID == userID {
			received++
		}
	}
	return sent, received, nil
}

type fakeDirectory struct {
	parties   map[uint64]*ports.Party
	offices   map[uint64]*ports.OfficeRef
	employees map[uint64]*ports.EmployeeRef
	first     uint64
}

func (f *fakeDirectory) FindParty(ctx context.Context, id uint64) (*ports.Party, error) {
	return f.parties[id], nil
}

func (f *fakeDirectory) FindOffice(ctx context.Context, id uint64) (*ports.OfficeRef, error) {
	return f.offices[id], nil
}

func (f *fakeDirectory) FindEmployee(ctx context.Context, id uint64) (*ports.EmployeeRef, error) {
	return f.employees[id], nil
}

func (f *fakeDirectory) FirstCompany(ctx context.Context) (uint64, error) {
	return f.first, nil
}

type fakeTariffs map[string]*registry.Tariff

func (f fakeTariffs) LookupTariff(ctx context.Context, companyID uint64, dt registry.DeliveryType) (*registry.Tariff, error) {
	return f[fmt.Sprintf("%d/%s", companyID, dt)], nil
}

type fakeCache struct {
	views       map[string]domain.TrackingView
	invalidated []string
}

func (f *fakeCache) Get(ctx context.Context, number string) (*domain.TrackingView, error) {
	v, ok := f.views[number]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (f *fakeCache) Set(ctx context.Context, view *domain.TrackingView) error {
	f.views[view.TrackingNumber] = *view
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context, number string) error {
	f.invalidated = append(f.invalidated, number)
	delete(f.views, number)
	return nil
}

// sequence hands out numbers in order.
type sequence struct {
	numbers []string
	next    int
}

func (s *sequence) Next() (string, error) {
	if s.next >= len(s.numbers) {
		return "", fmt.Errorf("sequence exhausted")
	}
	n := s.numbers[s.next]
	s.next++
	return n, nil
}

func ptr(v uint64) *uint64 { return &v }

func str(v string) *string { return &v }

const (
	companyC   = 1
	companyD   = 2
	officeA    = 11
	officeB    = 12
	officeD    = 21
	client1    = 101
	client2    = 102
	client3    = 103
	homeless   = 104
	employee1  = 201
	admin      = 1
	addressOf1 = 501
	addressOf2 = 502
)

var (
	employeeActor = &access.Actor{UserID: employee1, Role: access.RoleEmployee}
	adminActor    = &access.Actor{UserID: admin, Role: access.RoleAdmin, Superuser: true}
	client1Actor  = &access.Actor{UserID: client1, Role: access.RoleClient}
	client3Actor  = &access.Actor{UserID: client3, Role: access.RoleClient}
)

type fixture struct {
	parcels   *fakeParcels
	directory *fakeDirectory
	cache     *fakeCache
	numbers   *sequence
	svc       *ParcelServiceImpl
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		parcels: newFakeParcels(),
		directory: &fakeDirectory{
			parties: map[uint64]*ports.Party{
				client1:   {ID: client1, Name: "Maria Ivanova", DefaultAddressID: ptr(addressOf1)},
				client2:   {ID: client2, Name: "Georgi Dimitrov", DefaultAddressID: ptr(addressOf2)},
				client3:   {ID: client3, Name: "Elena Stoyanova"},
				homeless:  {ID: homeless, Name: "No Address"},
				employee1: {ID: employee1, Name: "Ivan Petrov"},
			},
			offices: map[uint64]*ports.OfficeRef{
				officeA: {ID: officeA, CompanyID: companyC, Name: "Sofia Center"},
				officeB: {ID: officeB, CompanyID: companyC, Name: "Plovdiv"},
				officeD: {ID: officeD, CompanyID: companyD, Name: "Varna Port"},
			},
			employees: map[uint64]*ports.EmployeeRef{
				employee1: {UserID: employee1, OfficeID: officeB},
			},
			first: companyC,
		},
		cache:   &fakeCache{views: map[string]domain.TrackingView{}},
		numbers: &sequence{},
		now:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	for i := 1; i <= 20; i++ {
		f.numbers.numbers = append(f.numbers.numbers, fmt.Sprintf("PX-20260302-%08d", i))
	}

	tariffs := fakeTariffs{
		"1/STANDARD": {ID: 1, CompanyID: companyC, DeliveryType: registry.DeliveryStandard, PricePerKg: decimal.RequireFromString("5.00")},
		"1/EXPRESS":  {ID: 2, CompanyID: companyC, DeliveryType: registry.DeliveryExpress, PricePerKg: decimal.RequireFromString("8.50")},
		"2/EXPRESS":  {ID: 3, CompanyID: companyD, DeliveryType: registry.DeliveryExpress, PricePerKg: decimal.RequireFromString("10.00")},
	}

	f.svc = NewParcelService(Dependencies{
		Parcels:   f.parcels,
		Directory: f.directory,
		Tariffs:   tariffs,
		Cache:     f.cache,
		Numbers:   f.numbers,
		Now:       func() time.Time { return f.now },
	})
	return f
}

// standardParcel is Scenario A's input.
func standardParcel() ports.CreateInput {
	return ports.CreateInput{
		SenderID:       client1,
		ReceiverID:     client2,
		WeightKg:       "2.5",
		DeliveryType:   "STANDARD",
		SenderOfficeID: ptr(officeA),
	}
}

func (f *fixture) create(input ports.CreateInput) *domain.ParcelView {
	view, err := f.svc.Create(context.Background(), employeeActor, input)
	if err != nil {
		panic(err)
	}
	return view
}
