package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/features/directory/domain"
	"parcel-ledger/internal/features/directory/ports"
)

type fakeUsers struct {
	byID   map[uint64]*domain.User
	links  map[uint64]map[uint64]bool
	nextID uint64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]*domain.User{}, links: map[uint64]map[uint64]bool{}, nextID: 100}
}

func (f *fakeUsers) link(userID, addressID uint64) {
	if f.links[userID] == nil {
		f.links[userID] = map[uint64]bool{}
	}
	f.links[userID][addressID] = true
}

func (f *fakeUsers) add(u domain.User) *domain.User {
	cp := u
	f.byID[u.ID] = &cp
	return &cp
}

func (f *fakeUsers) Create(ctx context.Context, user *domain.User, address *ports.AddressInput) error {
	for _, u := range f.byID {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
		if u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	f.nextID++
	user.ID = f.nextID
	if address != nil {
		addressID := f.nextID * 10
		user.DefaultAddressID = &addressID
		f.link(user.ID, addressID)
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == domain.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUsers) List(ctx context.Context, role access.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.byID {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) HasAddress(ctx context.Context, userID, addressID uint64) (bool, error) {
	return f.links[userID][addressID], nil
}

func (f *fakeUsers) Update(ctx context.Context, user *domain.User) error {
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, id uint64) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeEmployees struct {
	users *fakeUsers
	byID  map[uint64]*domain.Employee
	fail  error
}

func (f *fakeEmployees) CreateWithUser(ctx context.Context, e *domain.Employee) error {
	if f.fail != nil {
		return f.fail
	}
	for _, other := range f.byID {
		if other.Code == e.Code {
			return domain.ErrEmployeeCodeTaken
		}
	}
	if err := f.users.Create(ctx, e.User, nil); err != nil {
		return err
	}
	e.UserID = e.User.ID
	cp := *e
	f.byID[e.UserID] = &cp
	return nil
}

func (f *fakeEmployees) FindByID(ctx context.Context, id uint64) (*domain.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEmployees) List(ctx context.Context, officeID uint64) ([]domain.Employee, error) {
	var out []domain.Employee
	for _, e := range f.byID {
		if officeID == 0 || e.OfficeID == officeID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEmployees) Update(ctx context.Context, e *domain.Employee) error {
	cp := *e
	f.byID[e.UserID] = &cp
	return nil
}

func (f *fakeEmployees) CountByOffice(ctx context.Context, officeID uint64) (int64, error) {
	var n int64
	for _, e := range f.byID {
		if e.OfficeID == officeID {
			n++
		}
	}
	return n, nil
}

type fakeOrg struct {
	companies map[uint64]*domain.Company
	offices   map[uint64]*domain.Office
	nextID    uint64
}

func newFakeOrg() *fakeOrg {
	return &fakeOrg{companies: map[uint64]*domain.Company{}, offices: map[uint64]*domain.Office{}}
}

func (f *fakeOrg) CreateCompany(ctx context.Context, c *domain.Company) error {
	for _, other := range f.companies {
		if other.Bulstat == c.Bulstat {
			return domain.ErrBulstatTaken
		}
	}
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.companies[c.ID] = &cp
	return nil
}

func (f *fakeOrg) FindCompany(ctx context.Context, id uint64) (*domain.Company, error) {
	c, ok := f.companies[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeOrg) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var out []domain.Company
	for _, c := range f.companies {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeOrg) UpdateCompany(ctx context.Context, c *domain.Company) error {
	cp := *c
	f.companies[c.ID] = &cp
	return nil
}

func (f *fakeOrg) DeleteCompany(ctx context.Context, id uint64) error {
	delete(f.companies, id)
	return nil
}

func (f *fakeOrg) CountOffices(ctx context.Context, companyID uint64) (int64, error) {
	var n int64
	for _, o := range f.offices {
		if o.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrg) CreateOffice(ctx context.Context, o *domain.Office) error {
	for _, other := range f.offices {
		if other.Code == o.Code {
			return domain.ErrOfficeCodeTaken
		}
	}
	f.nextID++
	o.ID = f.nextID
	cp := *o
	f.offices[o.ID] = &cp
	return nil
}

func (f *fakeOrg) FindOffice(ctx context.Context, id uint64) (*domain.Office, error) {
	o, ok := f.offices[id]
	if !ok {
		return nil, domain.ErrOfficeNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrg) ListOffices(ctx context.Context, companyID uint64) ([]domain.Office, error) {
	var out []domain.Office
	for _, o := range f.offices {
		if companyID == 0 || o.CompanyID == companyID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrg) UpdateOffice(ctx context.Context, o *domain.Office) error {
	cp := *o
	f.offices[o.ID] = &cp
	return nil
}

func (f *fakeOrg) DeleteOffice(ctx context.Context, id uint64) error {
	delete(f.offices, id)
	return nil
}

type fakeCounter struct {
	sent, received map[uint64]int64
}

func (f *fakeCounter) CountByParty(ctx context.Context, userID uint64) (int64, int64, error) {
	return f.sent[userID], f.received[userID], nil
}

type fakeCleaner struct {
	calls int
	err   error
}

func (f *fakeCleaner) CleanupOrphanAddresses(ctx context.Context) (int64, error) {
	f.calls++
	return 1, f.err
}

type fakeTokens struct{}

func (fakeTokens) Issue(s auth.Subject) (string, time.Time, error) {
	if s.UserID == 0 {
		return "", time.Time{}, errors.New("no subject")
	}
	return "token-for-" + string(s.Role), time.Unix(1700000000, 0), nil
}

type fixture struct {
	svc       *DirectoryServiceImpl
	users     *fakeUsers
	employees *fakeEmployees
	org       *fakeOrg
	counter   *fakeCounter
	cleaner   *fakeCleaner
}

func newFixture() *fixture {
	users := newFakeUsers()
	f := &fixture{
		users:     users,
		employees: &fakeEmployees{users: users, byID: map[uint64]*domain.Employee{}},
		org:       newFakeOrg(),
		counter:   &fakeCounter{sent: map[uint64]int64{}, received: map[uint64]int64{}},
		cleaner:   &fakeCleaner{},
	}
	f.svc = NewDirectoryService(Dependencies{
		Users:         f.users,
		Employees:     f.employees,
		Organizations: f.org,
		Parcels:       f.counter,
		Addresses:     f.cleaner,
		Tokens:        fakeTokens{},
		HashPassword:  func(p string) (string, error) { return "hash:" + p, nil },
		CheckPassword: func(h, p string) bool { return h == "hash:"+p },
	})
	return f
}
