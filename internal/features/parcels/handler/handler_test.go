package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/core/server"
	"parcel-ledger/internal/features/parcels/domain"
	"parcel-ledger/internal/features/parcels/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockParcelService is a mock implementation of ports.ParcelService
type MockParcelService struct {
	mock.Mock
}

func (m *MockParcelService) view(args mock.Arguments) (*domain.ParcelView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParcelView), args.Error(1)
}

func (m *MockParcelService) Create(ctx context.Context, actor *access.Actor, in ports.CreateInput) (*domain.ParcelView, error) {
	return m.view(m.Called(ctx, actor, in))
}

func (m *MockParcelService) ChangeStatus(ctx context.Context, actor *access.Actor, id uint64, change ports.StatusChange) (*domain.ParcelView, error) {
	return m.view(m.Called(ctx, actor, id, change))
}

func (m *MockParcelService) Update(ctx context.Context, actor *access.Actor, id uint64, patch ports.UpdatePatch) (*domain.ParcelView, error) {
	return m.view(m.Called(ctx, actor, id, patch))
}

func (m *MockParcelService) Delete(ctx context.Context, actor *access.Actor, id uint64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockParcelService) AddNote(ctx context.Context, actor *access.Actor, id uint64, noteType, content string) (*domain.Note, error) {
	args := m.Called(ctx, actor, id, noteType, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockParcelService) Get(ctx context.Context, actor *access.Actor, id uint64) (*domain.ParcelView, error) {
	return m.view(m.Called(ctx, actor, id))
}

func (m *MockParcelService) List(ctx context.Context, actor *access.Actor, filter ports.ListFilter) ([]domain.ParcelView, error) {
	args := m.Called(ctx, actor, filter)
	return args.Get(0).([]domain.ParcelView), args.Error(1)
}

func (m *MockParcelService) Track(ctx context.Context, trackingNumber string) (*domain.TrackingView, error) {
	args := m.Called(ctx, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrackingView), args.Error(1)
}

func (m *MockParcelService) Statuses() []domain.Status {
	return domain.Statuses()
}

var employee = &access.Actor{UserID: 201, Role: access.RoleEmployee}

func setupApp(svc ports.ParcelService, actor *access.Actor) *fiber.App {
	h := NewParcelHandler(svc)
	app := fiber.New(fiber.Config{ErrorHandler: server.ErrorHandler})
	app.Get("/tracking/:number", h.Track)
	app.Get("/parcel-statuses", h.ListStatuses)
	app.Use(func(c *fiber.Ctx) error {
		if actor != nil {
			auth.WithActor(c, actor)
		}
		return c.Next()
	})
	app.Use(auth.RequireActor())
	app.Post("/parcels", h.CreateParcel)
	app.Get("/parcels", h.ListParcels)
	app.Get("/parcels/:id", h.GetParcel)
	app.Patch("/parcels/:id", h.UpdateParcel)
	app.Delete("/parcels/:id", h.DeleteParcel)
	app.Post("/parcels/:id/status", h.ChangeStatus)
	app.Post("/parcels/:id/notes", h.AddNote)
	return app
}

func rawRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, resp *http.Response) server.ErrorResponse {
	t.Helper()
	var body server.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestWeight_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Weight
	}{
		{"Number", `{"weight_kg": 2.5}`, "2.5"},
		{"String", `{"weight_kg": "2.500"}`, "2.500"},
		{"Integer", `{"weight_kg": 3}`, "3"},
		{"Null", `{"weight_kg": null}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateParcelRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.WeightKg)
		})
	}
}

func TestCreateParcel(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockParcelService)
		app := setupApp(svc, employee)

		office := uint64(11)
		svc.On("Create", mock.Anything, employee, ports.CreateInput{
			SenderID:       101,
			ReceiverID:     102,
			WeightKg:       "2.5",
			DeliveryType:   "STANDARD",
			SenderOfficeID: &office,
		}).Return(&domain.ParcelView{ID: 1, TrackingNumber: "PX-20260302-00000001", Price: "12.50"}, nil).Once()

		resp, err := app.Test(rawRequest("POST", "/parcels",
			`{"sender_id":101,"receiver_id":102,"weight_kg":2.5,"delivery_type":"STANDARD","sender_office_id":11}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var view domain.ParcelView
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
		assert.Equal(t, "12.50", view.Price)
		svc.AssertExpectations(t)
	})

	t.Run("MissingWeight", func(t *testing.T) {
		svc := new(MockParcelService)
		app := setupApp(svc, employee)

		resp, err := app.Test(rawRequest("POST", "/parcels",
			`{"sender_id":101,"receiver_id":102,"delivery_type":"STANDARD"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "weight_kg", decodeError(t, resp).Field)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		svc := new(MockParcelService)
		app := setupApp(svc, employee)

		resp, err := app.Test(rawRequest("POST", "/parcels", `{"sender_id":`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "invalid_body", decodeError(t, resp).Code)
	})

	t.Run("Forbidden", func(t *testing.T) {
		svc := new(MockParcelService)
		client := &access.Actor{UserID: 101, Role: access.RoleClient}
		app := setupApp(svc, client)

		svc.On("Create", mock.Anything, client, mock.Anything).Return(nil, access.ErrForbidden).Once()

		resp, err := app.Test(rawRequest("POST", "/parcels",
			`{"sender_id":101,"receiver_id":102,"weight_kg":"1","delivery_type":"STANDARD"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestListParcels(t *testing.T) {
	t.Run("Filters", func(t *testing.T) {
		svc := new(MockParcelService)
		app := setupApp(svc, employee)

		svc.On("List", mock.Anything, employee, ports.ListFilter{
			SenderID: 101,
			Statuses: []domain.StatusCode{domain.StatusInTransit, domain.StatusDelivered},
			Limit:    20,
		}).Return([]domain.ParcelView{{ID: 1}, {ID: 2}}, nil).Once()

		resp, err := app.Test(httptest.NewRequest("GET", "/parcels?sender_id=101&status=in_transit,DELIVERED&limit=20", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var views []domain.ParcelView
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
		assert.Len(t, views, 2)
		svc.AssertExpectations(t)
	})

	t.Run("BadStatus", func(t *testing.T) {
		svc := new(MockParcelService)
		app := setupApp(svc, employee)

		resp, err := app.Test(httptest.NewRequest("GET", "/parcels?status=LOST", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "status", decodeError(t, resp).Field)
	})

	t.Run("BadLimit", func(t *testing.T) {
		svc := new(MockParcelService)
		app := setupApp(svc, employee)

		resp, err := app.Test(httptest.NewRequest("GET", "/parcels?limit=5000", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "limit", decodeError(t, resp).Field)
	})
}

func TestGetParcel(t *testing.T) {
	svc := new(MockParcelService)
	app := setupApp(svc, employee)

	svc.On("Get", mock.Anything, employee, uint64(7)).Return(&domain.ParcelView{ID: 7}, nil).Once()
	svc.On("Get", mock.Anything, employee, uint64(8)).Return(nil, domain.ErrParcelNotFound).Once()

	resp, err := app.Test(httptest.NewRequest("GET", "/parcels/7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/parcels/8", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "parcel_not_found", decodeError(t, resp).Code)

	resp, err = app.Test(httptest.NewRequest("GET", "/parcels/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUpdateParcel(t *testing.T) {
	svc := new(MockParcelService)
	app := setupApp(svc, employee)

	svc.On("Update", mock.Anything, employee, uint64(3), mock.MatchedBy(func(p ports.UpdatePatch) bool {
		return p.WeightKg != nil && *p.WeightKg == "4.25" &&
			p.ReceiverOfficeID != nil && *p.ReceiverOfficeID == 0 &&
			p.Version != nil && *p.Version == 2 &&
			p.SenderID == nil
	})).Return(&domain.ParcelView{ID: 3, Version: 3}, nil).Once()

	resp, err := app.Test(rawRequest("PATCH", "/parcels/3", `{"weight_kg":4.25,"receiver_office_id":0,"version":2}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)

	svc.On("Update", mock.Anything, employee, uint64(4), mock.Anything).
		Return(nil, domain.ErrVersionConflict).Once()

	resp, err = app.Test(rawRequest("PATCH", "/parcels/4", `{"version":1}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestDeleteParcel(t *testing.T) {
	svc := new(MockParcelService)
	app := setupApp(svc, employee)

	svc.On("Delete", mock.Anything, employee, uint64(5)).Return(nil).Once()
	svc.On("Delete", mock.Anything, employee, uint64(6)).
		Return(domain.ErrNotDeletable.WithDetails(map[string]any{"status": "IN_TRANSIT"})).Once()

	resp, err := app.Test(httptest.NewRequest("DELETE", "/parcels/5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("DELETE", "/parcels/6", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "parcel_not_deletable", body.Code)
	assert.Equal(t, "IN_TRANSIT", body.Details["status"])
}

func TestChangeStatus(t *testing.T) {
	svc := new(MockParcelService)
	app := setupApp(svc, employee)

	office := uint64(12)
	svc.On("ChangeStatus", mock.Anything, employee, uint64(1), ports.StatusChange{
		Status:   "IN_TRANSIT",
		OfficeID: &office,
		Note:     "Left Sofia",
	}).Return(&domain.ParcelView{ID: 1, Status: domain.StatusInTransit}, nil).Once()
	svc.On("ChangeStatus", mock.Anything, employee, uint64(2), mock.Anything).
		Return(nil, domain.ErrParcelTerminal).Once()

	resp, err := app.Test(rawRequest("POST", "/parcels/1/status", `{"status":"IN_TRANSIT","office_id":12,"note":"Left Sofia"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(rawRequest("POST", "/parcels/2/status", `{"status":"RETURNED"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "parcel_terminal", decodeError(t, resp).Code)

	resp, err = app.Test(rawRequest("POST", "/parcels/1/status", `{}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "status", decodeError(t, resp).Field)
	svc.AssertExpectations(t)
}

func TestAddNote(t *testing.T) {
	svc := new(MockParcelService)
	app := setupApp(svc, employee)

	svc.On("AddNote", mock.Anything, employee, uint64(1), "ISSUE", "Box damaged").
		Return(&domain.Note{ID: 9, ParcelID: 1, Type: domain.NoteIssue, Content: "Box damaged"}, nil).Once()

	resp, err := app.Test(rawRequest("POST", "/parcels/1/notes", `{"note_type":"ISSUE","content":"Box damaged"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(rawRequest("POST", "/parcels/1/notes", `{"note_type":"URGENT","content":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "note_type", decodeError(t, resp).Field)
	svc.AssertExpectations(t)
}

func TestProtectedRoutes_RejectAnonymousBeforeBinding(t *testing.T) {
	svc := new(MockParcelService)
	app := setupApp(svc, nil)

	for _, path := range []string{"/parcels", "/parcels/1/status", "/parcels/1/notes"} {
		t.Run(path, func(t *testing.T) {
			resp, err := app.Test(rawRequest("POST", path, `{}`))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/parcels", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublicEndpoints(t *testing.T) {
	svc := new(MockParcelService)
	app := setupApp(svc, nil)

	svc.On("Track", mock.Anything, "px-20260302-00000001").
		Return(&domain.TrackingView{TrackingNumber: "PX-20260302-00000001", Status: domain.StatusCreated}, nil).Once()
	svc.On("Track", mock.Anything, "PX-NOPE").Return(nil, domain.ErrParcelNotFound).Once()

	resp, err := app.Test(httptest.NewRequest("GET", "/tracking/px-20260302-00000001", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.NotContains(t, raw, "sender")
	assert.NotContains(t, raw, "receiver")

	resp, err = app.Test(httptest.NewRequest("GET", "/tracking/PX-NOPE", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/parcel-statuses", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var statuses []domain.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&statuses))
	assert.Len(t, statuses, 6)
	svc.AssertExpectations(t)
}
