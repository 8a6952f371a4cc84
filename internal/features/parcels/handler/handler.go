package handler

import (
	"encoding/json"
	"strings"

	"parcel-ledger/internal/core/apperr"
	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/core/server"
	"parcel-ledger/internal/features/parcels/domain"
	"parcel-ledger/internal/features/parcels/ports"

	"github.com/gofiber/fiber/v2"
)

const maxPageSize = 200

// ParcelHandler handles HTTP requests for the parcel ledger.
type ParcelHandler struct {
	service ports.ParcelService
}

// NewParcelHandler creates a new ParcelHandler.
func NewParcelHandler(service ports.ParcelService) *ParcelHandler {
	return &ParcelHandler{
		service: service,
	}
}

// Weight accepts a JSON number or a JSON string and keeps its literal text.
type Weight string

// UnmarshalJSON implements json.Unmarshaler.
func (w *Weight) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		return nil
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*w = Weight(s)
	default:
		*w = Weight(raw)
	}
	return nil
}

// CreateParcelRequest represents the request body for registering a parcel.
type CreateParcelRequest struct {
	SenderID         uint64  `json:"sender_id" validate:"required"`
	ReceiverID       uint64  `json:"receiver_id" validate:"required"`
	WeightKg         Weight  `json:"weight_kg" validate:"required" swaggertype:"string" example:"2.5"`
	DeliveryType     string  `json:"delivery_type" validate:"required" example:"STANDARD"`
	SenderOfficeID   *uint64 `json:"sender_office_id"`
	ReceiverOfficeID *uint64 `json:"receiver_office_id"`
}

// UpdateParcelRequest represents the request body for editing a parcel. An office id
// of 0 clears the office.
type UpdateParcelRequest struct {
	SenderID         *uint64 `json:"sender_id"`
	ReceiverID       *uint64 `json:"receiver_id"`
	WeightKg         *Weight `json:"weight_kg" swaggertype:"string"`
	DeliveryType     *string `json:"delivery_type"`
	SenderOfficeID   *uint64 `json:"sender_office_id"`
	ReceiverOfficeID *uint64 `json:"receiver_office_id"`
	Version          *int64  `json:"version"`
}

// ChangeStatusRequest represents the request body for a status transition.
type ChangeStatusRequest struct {
	Status   string  `json:"status" validate:"required" example:"IN_TRANSIT"`
	OfficeID *uint64 `json:"office_id"`
	Note     string  `json:"note" validate:"max=255"`
}

// AddNoteRequest represents the request body for a parcel note.
type AddNoteRequest struct {
	NoteType string `json:"note_type" validate:"omitempty,oneof=GENERAL DELIVERY ISSUE general delivery issue"`
	Content  string `json:"content" validate:"required"`
}

// CreateParcel handles POST /parcels.
// @Summary Register a parcel
// @Description Creates a parcel in status CREATED with its first history entry. Price is weight × tariff rate.
// @Tags Parcels
// @Accept json
// @Produce json
// @Param parcel body CreateParcelRequest true "Parcel"
// @Success 201 {object} domain.ParcelView
// @Failure 401 {object} server.ErrorResponse
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /parcels [post]
func (h *ParcelHandler) CreateParcel(c *fiber.Ctx) error {
	var req CreateParcelRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.Create(c.UserContext(), auth.ActorFrom(c), ports.CreateInput{
		SenderID:         req.SenderID,
		ReceiverID:       req.ReceiverID,
		WeightKg:         string(req.WeightKg),
		DeliveryType:     req.DeliveryType,
		SenderOfficeID:   req.SenderOfficeID,
		ReceiverOfficeID: req.ReceiverOfficeID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// ListParcels handles GET /parcels.
// @Summary List parcels
// @Description Staff see every parcel; clients only parcels they send or receive.
// @Tags Parcels
// @Produce json
// @Param sender_id query int false "Sender user ID"
// @Param receiver_id query int false "Receiver user ID"
// @Param status query string false "Comma-separated status codes"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} domain.ParcelView
// @Failure 401 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /parcels [get]
func (h *ParcelHandler) ListParcels(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	views, err := h.service.List(c.UserContext(), auth.ActorFrom(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(views)
}

// GetParcel handles GET /parcels/:id.
// @Summary Get a parcel
// @Description Returns the parcel with its status history, and notes for staff.
// @Tags Parcels
// @Produce json
// @Param id path int true "Parcel ID"
// @Success 200 {object} domain.ParcelView
// @Failure 401 {object} server.ErrorResponse
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /parcels/{id} [get]
func (h *ParcelHandler) GetParcel(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.UserContext(), auth.ActorFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// UpdateParcel handles PATCH /parcels/:id.
// @Summary Edit a parcel
// @Description Edits parties, weight, delivery type or offices of a non-terminal parcel.
// @Tags Parcels
// @Accept json
// @Produce json
// @Param id path int true "Parcel ID"
// @Param parcel body UpdateParcelRequest true "Changed fields"
// @Success 200 {object} domain.ParcelView
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /parcels/{id} [patch]
func (h *ParcelHandler) UpdateParcel(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateParcelRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}

	patch := ports.UpdatePatch{
		SenderID:         req.SenderID,
		ReceiverID:       req.ReceiverID,
		DeliveryType:     req.DeliveryType,
		SenderOfficeID:   req.SenderOfficeID,
		ReceiverOfficeID: req.ReceiverOfficeID,
		Version:          req.Version,
	}
	if req.WeightKg != nil {
		w := string(*req.WeightKg)
		patch.WeightKg = &w
	}

	view, err := h.service.Update(c.UserContext(), auth.ActorFrom(c), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// DeleteParcel handles DELETE /parcels/:id.
// @Summary Delete a parcel
// @Description Only parcels in status CREATED or CANCELLED can be deleted.
// @Tags Parcels
// @Param id path int true "Parcel ID"
// @Success 204
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /parcels/{id} [delete]
func (h *ParcelHandler) DeleteParcel(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), auth.ActorFrom(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ChangeStatus handles POST /parcels/:id/status.
// @Summary Change parcel status
// @Description Moves a non-terminal parcel to another status and appends a history entry.
// @Tags Parcels
// @Accept json
// @Produce json
// @Param id path int true "Parcel ID"
// @Param change body ChangeStatusRequest true "Target status"
// @Success 200 {object} domain.ParcelView
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /parcels/{id}/status [post]
func (h *ParcelHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req ChangeStatusRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.ChangeStatus(c.UserContext(), auth.ActorFrom(c), id, ports.StatusChange{
		Status:   req.Status,
		OfficeID: req.OfficeID,
		Note:     req.Note,
	})
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// AddNote handles POST /parcels/:id/notes.
// @Summary Add a parcel note
// @Tags Parcels
// @Accept json
// @Produce json
// @Param id path int true "Parcel ID"
// @Param note body AddNoteRequest true "Note"
// @Success 201 {object} domain.Note
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /parcels/{id}/notes [post]
func (h *ParcelHandler) AddNote(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req AddNoteRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}

	note, err := h.service.AddNote(c.UserContext(), auth.ActorFrom(c), id, req.NoteType, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// ListStatuses handles GET /parcel-statuses.
// @Summary List parcel statuses
// @Tags Parcels
// @Produce json
// @Success 200 {array} domain.Status
// @Router /parcel-statuses [get]
func (h *ParcelHandler) ListStatuses(c *fiber.Ctx) error {
	return c.JSON(h.service.Statuses())
}

// Track handles GET /tracking/:number.
// @Summary Track a parcel
// @Description Public lookup by tracking number (case-insensitive). Sender and receiver are never disclosed.
// @Tags Tracking
// @Produce json
// @Param number path string true "Tracking number"
// @Success 200 {object} domain.TrackingView
// @Failure 404 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Router /tracking/{number} [get]
func (h *ParcelHandler) Track(c *fiber.Ctx) error {
	view, err := h.service.Track(c.UserContext(), c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func parseFilter(c *fiber.Ctx) (ports.ListFilter, error) {
	var (
		f   ports.ListFilter
		err error
	)
	if f.SenderID, err = server.QueryID(c, "sender_id"); err != nil {
		return f, err
	}
	if f.ReceiverID, err = server.QueryID(c, "receiver_id"); err != nil {
		return f, err
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			code, err := domain.ParseStatusCode(part)
			if err != nil {
				return f, err
			}
			f.Statuses = append(f.Statuses, code)
		}
	}

	f.Limit = c.QueryInt("limit", 0)
	f.Offset = c.QueryInt("offset", 0)
	if f.Limit < 0 || f.Limit > maxPageSize {
		return f, apperr.Validation("limit", "limit must be between 0 and 200")
	}
	if f.Offset < 0 {
		return f, apperr.Validation("offset", "offset must not be negative")
	}
	return f, nil
}
