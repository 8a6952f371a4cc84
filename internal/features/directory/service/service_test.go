package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/apperr"
	"parcel-ledger/internal/features/directory/domain"
	"parcel-ledger/internal/features/directory/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin    = &access.Actor{UserID: 1, Role: access.RoleAdmin}
	employee = &access.Actor{UserID: 2, Role: access.RoleEmployee}
	client   = &access.Actor{UserID: 10, Role: access.RoleClient}
)

func TestDirectoryService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesClientWithNormalizedEmail", func(t *testing.T) {
		f := newFixture()
		user, err := f.svc.Register(ctx, ports.RegisterInput{
			Username: "maria",
			Email:    " Maria@Example.BG ",
			Password: "client123",
			Address:  &ports.AddressInput{Country: "Bulgaria", City: "Sofia", PostalCode: "1000", Street: "Vitosha 1"},
		})
		require.NoError(t, err)
		assert.Equal(t, "maria@example.bg", user.Email)
		assert.Equal(t, access.RoleClient, user.Role)
		assert.Equal(t, "hash:client123", user.PasswordHash)
		assert.NotNil(t, user.DefaultAddressID)
	})

	t.Run("DuplicateEmailIsConflict", func(t *testing.T) {
		f := newFixture()
		f.users.add(domain.User{ID: 5, Username: "other", Email: "maria@example.bg"})

		_, err := f.svc.Register(ctx, ports.RegisterInput{Username: "maria", Email: "MARIA@example.bg", Password: "client123"})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("ShortPassword", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Register(ctx, ports.RegisterInput{Username: "maria", Email: "maria@example.bg", Password: "short"})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("IncompleteAddress", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Register(ctx, ports.RegisterInput{
			Username: "maria", Email: "maria@example.bg", Password: "client123",
			Address: &ports.AddressInput{Country: "Bulgaria"},
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestDirectoryService_Login(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.users.add(domain.User{ID: 7, Username: "emp", Email: "emp@example.bg", PasswordHash: "hash:employee123", Role: access.RoleEmployee})

	session, err := f.svc.Login(ctx, "EMP@Example.bg", "employee123")
	require.NoError(t, err)
	assert.Equal(t, "token-for-EMPLOYEE", session.Token)
	assert.Equal(t, uint64(7), session.User.ID)

	_, err = f.svc.Login(ctx, "emp@example.bg", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "nobody@example.bg", "employee123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestDirectoryService_Profile(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.users.add(domain.User{ID: 10, Username: "maria", Email: "maria@example.bg", Role: access.RoleClient})
	f.users.add(domain.User{ID: 11, Username: "georgi", Email: "georgi@example.bg", Role: access.RoleClient})
	f.users.link(10, 33)
	f.users.link(11, 77)

	t.Run("ClientReadsSelf", func(t *testing.T) {
		u, err := f.svc.GetUser(ctx, client, 10)
		require.NoError(t, err)
		assert.Equal(t, "maria", u.Username)
	})

	t.Run("ClientCannotReadOthers", func(t *testing.T) {
		_, err := f.svc.GetUser(ctx, client, 11)
		assert.ErrorIs(t, err, access.ErrNotOwner)
	})

	t.Run("Anonymous", func(t *testing.T) {
		_, err := f.svc.GetUser(ctx, nil, 10)
		assert.ErrorIs(t, err, access.ErrUnauthenticated)
	})

	t.Run("UpdateOwnProfile", func(t *testing.T) {
		name := " Maria "
		email := "New@Example.bg"
		addressID := uint64(33)
		u, err := f.svc.UpdateProfile(ctx, client, 10, ports.ProfilePatch{FirstName: &name, Email: &email, DefaultAddressID: &addressID})
		require.NoError(t, err)
		assert.Equal(t, "Maria", u.FirstName)
		assert.Equal(t, "new@example.bg", u.Email)
		assert.Equal(t, uint64(33), *u.DefaultAddressID)
	})

	t.Run("ClientCannotAdoptForeignAddress", func(t *testing.T) {
		foreign := uint64(77)
		_, err := f.svc.UpdateProfile(ctx, client, 10, ports.ProfilePatch{DefaultAddressID: &foreign})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAddressNotFound)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

		u, err := f.svc.GetUser(ctx, client, 10)
		require.NoError(t, err)
		assert.Equal(t, uint64(33), *u.DefaultAddressID)
	})

	t.Run("StaffMayAssignAnyAddress", func(t *testing.T) {
		addressID := uint64(77)
		u, err := f.svc.UpdateProfile(ctx, employee, 11, ports.ProfilePatch{DefaultAddressID: &addressID})
		require.NoError(t, err)
		assert.Equal(t, uint64(77), *u.DefaultAddressID)
	})

	t.Run("StaffUpdatesAnyProfile", func(t *testing.T) {
		phone := "+359888000111"
		u, err := f.svc.UpdateProfile(ctx, employee, 11, ports.ProfilePatch{Phone: &phone})
		require.NoError(t, err)
		assert.Equal(t, phone, u.Phone)
	})

	t.Run("ListClientsIsStaffOnly", func(t *testing.T) {
		_, err := f.svc.ListClients(ctx, client)
		assert.ErrorIs(t, err, access.ErrForbidden)

		clients, err := f.svc.ListClients(ctx, admin)
		require.NoError(t, err)
		assert.Len(t, clients, 2)
	})
}

// A user who sent one parcel cannot be deleted; the counts are reported and
// nothing is removed.
func TestDirectoryService_DeleteUser_BlockedByParcels(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.users.add(domain.User{ID: 10, Username: "maria", Role: access.RoleClient})
	f.counter.sent[10] = 1

	err := f.svc.DeleteUser(ctx, admin, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUserHasParcels)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindState, e.Kind)
	assert.Equal(t, int64(1), e.Details["sent"])
	assert.Equal(t, int64(0), e.Details["received"])

	_, err = f.users.FindByID(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, 0, f.cleaner.calls)
}

func TestDirectoryService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("RunsCleanup", func(t *testing.T) {
		f := newFixture()
		f.users.add(domain.User{ID: 10, Username: "maria", Role: access.RoleClient})

		require.NoError(t, f.svc.DeleteUser(ctx, admin, 10))
		_, err := f.users.FindByID(ctx, 10)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.Equal(t, 1, f.cleaner.calls)
	})

	t.Run("CleanupFailureIsNotReturned", func(t *testing.T) {
		f := newFixture()
		f.users.add(domain.User{ID: 10, Username: "maria", Role: access.RoleClient})
		f.cleaner.err = errors.New("db gone")

		assert.NoError(t, f.svc.DeleteUser(ctx, admin, 10))
		assert.Equal(t, 1, f.cleaner.calls)
	})

	t.Run("ClientForbidden", func(t *testing.T) {
		f := newFixture()
		f.users.add(domain.User{ID: 10, Username: "maria", Role: access.RoleClient})
		assert.ErrorIs(t, f.svc.DeleteUser(ctx, client, 10), access.ErrForbidden)
	})

	t.Run("Unknown", func(t *testing.T) {
		f := newFixture()
		assert.ErrorIs(t, f.svc.DeleteUser(ctx, admin, 99), domain.ErrUserNotFound)
	})
}

func employeeInput() ports.EmployeeInput {
	return ports.EmployeeInput{
		Username: "courier1",
		Email:    "Courier1@Example.bg",
		Password: "employee123",
		Code:     "emp-010",
		Type:     "courier",
		OfficeID: 0,
		HireDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Salary:   decimal.RequireFromString("1800.456"),
	}
}

func TestDirectoryService_CreateEmployee(t *testing.T) {
	ctx := context.Background()

	setup := func() (*fixture, uint64) {
		f := newFixture()
		company, err := f.svc.CreateCompany(ctx, admin, domain.Company{Name: "Express Logistics BG", Bulstat: "BG123456789", AddressID: 1})
		require.NoError(t, err)
		office, err := f.svc.CreateOffice(ctx, admin, domain.Office{CompanyID: company.ID, Name: "Sofia Center", Code: "sof-c", AddressID: 1})
		require.NoError(t, err)
		return f, office.ID
	}

	t.Run("Success", func(t *testing.T) {
		f, officeID := setup()
		in := employeeInput()
		in.OfficeID = officeID

		e, err := f.svc.CreateEmployee(ctx, employee, in)
		require.NoError(t, err)
		assert.Equal(t, "EMP-010", e.Code)
		assert.Equal(t, domain.EmployeeCourier, e.Type)
		assert.Equal(t, "1800.46", e.Salary.StringFixed(2))
		assert.Equal(t, access.RoleEmployee, e.User.Role)
		assert.Equal(t, "courier1@example.bg", e.User.Email)
		assert.Equal(t, e.UserID, e.User.ID)
	})

	t.Run("UnknownOffice", func(t *testing.T) {
		f, _ := setup()
		in := employeeInput()
		in.OfficeID = 999
		_, err := f.svc.CreateEmployee(ctx, admin, in)
		assert.ErrorIs(t, err, domain.ErrOfficeNotFound)
	})

	t.Run("DuplicateCode", func(t *testing.T) {
		f, officeID := setup()
		in := employeeInput()
		in.OfficeID = officeID
		_, err := f.svc.CreateEmployee(ctx, admin, in)
		require.NoError(t, err)

		in.Username, in.Email = "courier2", "courier2@example.bg"
		_, err = f.svc.CreateEmployee(ctx, admin, in)
		assert.ErrorIs(t, err, domain.ErrEmployeeCodeTaken)
	})

	t.Run("EmployeeCannotCreateAdmin", func(t *testing.T) {
		f, officeID := setup()
		in := employeeInput()
		in.OfficeID = officeID
		in.Role = access.RoleAdmin
		_, err := f.svc.CreateEmployee(ctx, employee, in)
		assert.ErrorIs(t, err, access.ErrForbidden)
	})

	t.Run("ClientRoleRejected", func(t *testing.T) {
		f, officeID := setup()
		in := employeeInput()
		in.OfficeID = officeID
		in.Role = access.RoleClient
		_, err := f.svc.CreateEmployee(ctx, admin, in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("ClientForbidden", func(t *testing.T) {
		f, officeID := setup()
		in := employeeInput()
		in.OfficeID = officeID
		_, err := f.svc.CreateEmployee(ctx, client, in)
		assert.ErrorIs(t, err, access.ErrForbidden)
	})
}

func TestDirectoryService_UpdateAndDeleteEmployee(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	company, err := f.svc.CreateCompany(ctx, admin, domain.Company{Name: "Express Logistics BG", Bulstat: "BG123456789", AddressID: 1})
	require.NoError(t, err)
	sofia, err := f.svc.CreateOffice(ctx, admin, domain.Office{CompanyID: company.ID, Name: "Sofia Center", Code: "SOF-C", AddressID: 1})
	require.NoError(t, err)
	varna, err := f.svc.CreateOffice(ctx, admin, domain.Office{CompanyID: company.ID, Name: "Varna", Code: "VAR-1", AddressID: 2})
	require.NoError(t, err)

	in := employeeInput()
	in.OfficeID = sofia.ID
	e, err := f.svc.CreateEmployee(ctx, admin, in)
	require.NoError(t, err)

	typ := "MANAGER"
	updated, err := f.svc.UpdateEmployee(ctx, admin, e.UserID, ports.EmployeePatch{Type: &typ, OfficeID: &varna.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.EmployeeManager, updated.Type)
	assert.Equal(t, varna.ID, updated.OfficeID)

	listed, err := f.svc.ListEmployees(ctx, admin, varna.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	err = f.svc.DeleteOffice(ctx, admin, varna.ID)
	assert.ErrorIs(t, err, domain.ErrOfficeHasEmployees)
	assert.Equal(t, int64(1), mustDetails(t, err)["employees"])

	f.counter.received[e.UserID] = 2
	err = f.svc.DeleteEmployee(ctx, admin, e.UserID)
	assert.ErrorIs(t, err, domain.ErrUserHasParcels)

	f.counter.received[e.UserID] = 0
	require.NoError(t, f.svc.DeleteEmployee(ctx, admin, e.UserID))
	_, err = f.users.FindByID(ctx, e.UserID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDirectoryService_Organization(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.CreateCompany(ctx, client, domain.Company{Name: "X", Bulstat: "1", AddressID: 1})
	assert.ErrorIs(t, err, access.ErrForbidden)

	company, err := f.svc.CreateCompany(ctx, admin, domain.Company{Name: " Express Logistics BG ", Bulstat: "bg123456789", AddressID: 1})
	require.NoError(t, err)
	assert.Equal(t, "BG123456789", company.Bulstat)

	_, err = f.svc.CreateCompany(ctx, admin, domain.Company{Name: "Copy", Bulstat: "BG123456789", AddressID: 1})
	assert.ErrorIs(t, err, domain.ErrBulstatTaken)

	office, err := f.svc.CreateOffice(ctx, admin, domain.Office{CompanyID: company.ID, Name: "Plovdiv", Code: "plv-1", AddressID: 3})
	require.NoError(t, err)
	assert.Equal(t, "PLV-1", office.Code)

	_, err = f.svc.CreateOffice(ctx, admin, domain.Office{CompanyID: company.ID, Name: "Plovdiv 2", Code: "PLV-1", AddressID: 3})
	assert.ErrorIs(t, err, domain.ErrOfficeCodeTaken)

	_, err = f.svc.CreateOffice(ctx, admin, domain.Office{CompanyID: 999, Name: "Nowhere", Code: "NOW-1", AddressID: 3})
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)

	hours := "Mon-Fri 09:00-18:00"
	office, err = f.svc.UpdateOffice(ctx, employee, office.ID, ports.OfficePatch{WorkingHours: &hours})
	require.NoError(t, err)
	assert.Equal(t, hours, office.WorkingHours)

	offices, err := f.svc.ListOffices(ctx, client, company.ID)
	require.NoError(t, err)
	assert.Len(t, offices, 1)

	err = f.svc.DeleteCompany(ctx, admin, company.ID)
	assert.ErrorIs(t, err, domain.ErrCompanyHasOffices)

	require.NoError(t, f.svc.DeleteOffice(ctx, admin, office.ID))
	require.NoError(t, f.svc.DeleteCompany(ctx, admin, company.ID))

	_, err = f.svc.GetOffice(ctx, admin, office.ID)
	assert.ErrorIs(t, err, domain.ErrOfficeNotFound)
}

func mustDetails(t *testing.T, err error) map[string]any {
	t.Helper()
	e, ok := apperr.As(err)
	require.True(t, ok)
	return e.Details
}
