package access

import (
	"testing"

	"parcel-ledger/internal/core/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin     = &Actor{UserID: 1, Role: RoleAdmin}
	employee  = &Actor{UserID: 2, Role: RoleEmployee}
	superuser = &Actor{UserID: 3, Role: RoleClient, Superuser: true}
	client    = &Actor{UserID: 4, Role: RoleClient}
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" employee ")
	require.NoError(t, err)
	assert.Equal(t, RoleEmployee, r)

	_, err = ParseRole("courier")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAuthorize(t *testing.T) {
	all := []Capability{
		CreateParcel, ChangeParcelStatus, UpdateParcel, DeleteParcel, AddParcelNote,
		ViewAllParcels, ManageEmployees, ManageOffices, ManageCompanies, ManageTariffs,
		ManageClients, ViewReports,
	}

	for _, c := range all {
		t.Run(c.String(), func(t *testing.T) {
			assert.NoError(t, Authorize(admin, c))
			assert.NoError(t, Authorize(employee, c))
			assert.NoError(t, Authorize(superuser, c))
			assert.ErrorIs(t, Authorize(client, c), ErrForbidden)
			assert.ErrorIs(t, Authorize(nil, c), ErrUnauthenticated)
		})
	}
}

func TestAuthorize_UnknownCapability(t *testing.T) {
	assert.ErrorIs(t, Authorize(admin, Capability(999)), ErrForbidden)
	assert.ErrorIs(t, Authorize(nil, Capability(999)), ErrUnauthenticated)
}

func TestCanViewParcel(t *testing.T) {
	tests := []struct {
		name    string
		actor   *Actor
		wantErr error
	}{
		{"staff sees everything", employee, nil},
		{"sender", &Actor{UserID: 10, Role: RoleClient}, nil},
		{"receiver", &Actor{UserID: 11, Role: RoleClient}, nil},
		{"stranger", &Actor{UserID: 12, Role: RoleClient}, ErrNotParty},
		{"anonymous", nil, ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanViewParcel(tt.actor, 10, 11)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCanAccessProfile(t *testing.T) {
	assert.NoError(t, CanAccessProfile(client, client.UserID))
	assert.ErrorIs(t, CanAccessProfile(client, 99), ErrNotOwner)
	assert.NoError(t, CanAccessProfile(admin, 99))
	assert.ErrorIs(t, CanAccessProfile(nil, 1), ErrUnauthenticated)
}

func TestActor_Can(t *testing.T) {
	assert.True(t, employee.Can(ViewReports))
	assert.False(t, client.Can(ViewReports))

	var nobody *Actor
	assert.False(t, nobody.IsStaff())
	assert.False(t, nobody.Can(CreateParcel))
}
