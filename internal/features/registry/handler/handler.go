package handler

import (
	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/core/server"
	"parcel-ledger/internal/features/registry/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// RegistryHandler handles HTTP requests for addresses and tariffs.
type RegistryHandler struct {
	service ports.RegistryService
}

// NewRegistryHandler creates a new RegistryHandler.
func NewRegistryHandler(service ports.RegistryService) *RegistryHandler {
	return &RegistryHandler{
		service: service,
	}
}

// CreateAddressRequest represents the request body for creating an address.
type CreateAddressRequest struct {
	// OwnerID links the address to a user; defaults to the caller.
	OwnerID    uint64 `json:"owner_id"`
	Country    string `json:"country" validate:"required,max=45"`
	City       string `json:"city" validate:"required,max=45"`
	PostalCode string `json:"postal_code" validate:"required,max=45"`
	Street     string `json:"street" validate:"required,max=45"`
	Details    string `json:"details" validate:"max=45"`
}

// UpsertTariffRequest represents the request body for setting a tariff.
type UpsertTariffRequest struct {
	CompanyID    uint64          `json:"company_id" validate:"required"`
	DeliveryType string          `json:"delivery_type" validate:"required"`
	PricePerKg   decimal.Decimal `json:"price_per_kg"`
}

// CreateAddress handles POST /addresses.
// @Summary Create an address
// @Description Stores a postal address linked to the caller (or, for staff, to owner_id).
// @Tags Registry
// @Accept json
// @Produce json
// @Param address body CreateAddressRequest true "Address"
// @Success 201 {object} domain.Address
// @Failure 401 {object} server.ErrorResponse
// @Failure 403 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /addresses [post]
func (h *RegistryHandler) CreateAddress(c *fiber.Ctx) error {
	var req CreateAddressRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}

	address, err := h.service.CreateAddress(c.UserContext(), auth.ActorFrom(c), req.OwnerID, ports.AddressInput{
		Country:    req.Country,
		City:       req.City,
		PostalCode: req.PostalCode,
		Street:     req.Street,
		Details:    req.Details,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

// ListAddresses handles GET /addresses.
// @Summary List addresses
// @Description Staff see every address; clients see their own.
// @Tags Registry
// @Produce json
// @Success 200 {array} domain.Address
// @Failure 401 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /addresses [get]
func (h *RegistryHandler) ListAddresses(c *fiber.Ctx) error {
	addresses, err := h.service.ListAddresses(c.UserContext(), auth.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(addresses)
}

// UpsertTariff handles PUT /tariffs.
// @Summary Set a tariff
// @Description Creates or updates the price per kilogram of a company for a delivery type.
// @Tags Registry
// @Accept json
// @Produce json
// @Param tariff body UpsertTariffRequest true "Tariff"
// @Success 200 {object} domain.Tariff
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /tariffs [put]
func (h *RegistryHandler) UpsertTariff(c *fiber.Ctx) error {
	var req UpsertTariffRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}

	tariff, err := h.service.UpsertTariff(c.UserContext(), auth.ActorFrom(c), req.CompanyID, req.DeliveryType, req.PricePerKg)
	if err != nil {
		return err
	}
	return c.JSON(tariff)
}

// ListTariffs handles GET /tariffs.
// @Summary List tariffs
// @Tags Registry
// @Produce json
// @Param company_id query int false "Filter by company"
// @Success 200 {array} domain.Tariff
// @Failure 401 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /tariffs [get]
func (h *RegistryHandler) ListTariffs(c *fiber.Ctx) error {
	companyID, err := server.QueryID(c, "company_id")
	if err != nil {
		return err
	}

	tariffs, err := h.service.ListTariffs(c.UserContext(), auth.ActorFrom(c), companyID)
	if err != nil {
		return err
	}
	return c.JSON(tariffs)
}

// DeleteTariff handles DELETE /tariffs/:id.
// @Summary Delete a tariff
// @Tags Registry
// @Param id path int true "Tariff ID"
// @Success 204
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /tariffs/{id} [delete]
func (h *RegistryHandler) DeleteTariff(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteTariff(c.UserContext(), auth.ActorFrom(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
