package handler

import (
	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/core/server"
	"parcel-ledger/internal/features/directory/domain"
	"parcel-ledger/internal/features/directory/ports"

	"github.com/gofiber/fiber/v2"
)

// OrganizationHandler handles HTTP requests for companies and offices.
type OrganizationHandler struct {
	service ports.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(service ports.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		service: service,
	}
}

// CompanyRequest represents the request body for creating a company.
type CompanyRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Bulstat   string `json:"bulstat" validate:"required,max=20"`
	Phone     string `json:"phone" validate:"max=32"`
	AddressID uint64 `json:"address_id" validate:"required"`
}

// UpdateCompanyRequest represents the request body for a company edit.
type UpdateCompanyRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	AddressID *uint64 `json:"address_id"`
}

// OfficeRequest represents the request body for creating an office.
type OfficeRequest struct {
	CompanyID    uint64 `json:"company_id" validate:"required"`
	Name         string `json:"name" validate:"required,max=100"`
	Code         string `json:"code" validate:"required,max=20"`
	Phone        string `json:"phone" validate:"max=32"`
	AddressID    uint64 `json:"address_id" validate:"required"`
	WorkingHours string `json:"working_hours" validate:"max=60"`
}

// UpdateOfficeRequest represents the request body for an office edit.
type UpdateOfficeRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=100"`
	Phone        *string `json:"phone" validate:"omitempty,max=32"`
	AddressID    *uint64 `json:"address_id"`
	WorkingHours *string `json:"working_hours" validate:"omitempty,max=60"`
}

// CreateCompany handles POST /companies.
// @Summary Create a company
// @Tags Organization
// @Accept json
// @Produce json
// @Param company body CompanyRequest true "Company"
// @Success 201 {object} domain.Company
// @Failure 403 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /companies [post]
func (h *OrganizationHandler) CreateCompany(c *fiber.Ctx) error {
	var req CompanyRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}
	company, err := h.service.CreateCompany(c.UserContext(), auth.ActorFrom(c), domain.Company{
		Name:      req.Name,
		Bulstat:   req.Bulstat,
		Phone:     req.Phone,
		AddressID: req.AddressID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(company)
}

// UpdateCompany handles PATCH /companies/:id.
// @Summary Edit a company
// @Tags Organization
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Param company body UpdateCompanyRequest true "Changed fields"
// @Success 200 {object} domain.Company
// @Security BearerAuth
// @Router /companies/{id} [patch]
func (h *OrganizationHandler) UpdateCompany(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateCompanyRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}
	company, err := h.service.UpdateCompany(c.UserContext(), auth.ActorFrom(c), id, ports.CompanyPatch{
		Name:      req.Name,
		Phone:     req.Phone,
		AddressID: req.AddressID,
	})
	if err != nil {
		return err
	}
	return c.JSON(company)
}

// ListCompanies handles GET /companies.
// @Summary List companies
// @Tags Organization
// @Produce json
// @Success 200 {array} domain.Company
// @Security BearerAuth
// @Router /companies [get]
func (h *OrganizationHandler) ListCompanies(c *fiber.Ctx) error {
	companies, err := h.service.ListCompanies(c.UserContext(), auth.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(companies)
}

// DeleteCompany handles DELETE /companies/:id.
// @Summary Delete a company
// @Description Fails with 409 while the company owns offices.
// @Tags Organization
// @Param id path int true "Company ID"
// @Success 204
// @Failure 409 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /companies/{id} [delete]
func (h *OrganizationHandler) DeleteCompany(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteCompany(c.UserContext(), auth.ActorFrom(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateOffice handles POST /offices.
// @Summary Create an office
// @Tags Organization
// @Accept json
// @Produce json
// @Param office body OfficeRequest true "Office"
// @Success 201 {object} domain.Office
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /offices [post]
func (h *OrganizationHandler) CreateOffice(c *fiber.Ctx) error {
	var req OfficeRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}
	office, err := h.service.CreateOffice(c.UserContext(), auth.ActorFrom(c), domain.Office{
		CompanyID:    req.CompanyID,
		Name:         req.Name,
		Code:         req.Code,
		Phone:        req.Phone,
		AddressID:    req.AddressID,
		WorkingHours: req.WorkingHours,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(office)
}

// UpdateOffice handles PATCH /offices/:id.
// @Summary Edit an office
// @Tags Organization
// @Accept json
// @Produce json
// @Param id path int true "Office ID"
// @Param office body UpdateOfficeRequest true "Changed fields"
// @Success 200 {object} domain.Office
// @Security BearerAuth
// @Router /offices/{id} [patch]
func (h *OrganizationHandler) UpdateOffice(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateOfficeRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}
	office, err := h.service.UpdateOffice(c.UserContext(), auth.ActorFrom(c), id, ports.OfficePatch{
		Name:         req.Name,
		Phone:        req.Phone,
		AddressID:    req.AddressID,
		WorkingHours: req.WorkingHours,
	})
	if err != nil {
		return err
	}
	return c.JSON(office)
}

// ListOffices handles GET /offices.
// @Summary List offices
// @Tags Organization
// @Produce json
// @Param company_id query int false "Filter by company"
// @Success 200 {array} domain.Office
// @Security BearerAuth
// @Router /offices [get]
func (h *OrganizationHandler) ListOffices(c *fiber.Ctx) error {
	companyID, err := server.QueryID(c, "company_id")
	if err != nil {
		return err
	}
	offices, err := h.service.ListOffices(c.UserContext(), auth.ActorFrom(c), companyID)
	if err != nil {
		return err
	}
	return c.JSON(offices)
}

// GetOffice handles GET /offices/:id.
// @Summary Get an office
// @Tags Organization
// @Produce json
// @Param id path int true "Office ID"
// @Success 200 {object} domain.Office
// @Failure 404 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /offices/{id} [get]
func (h *OrganizationHandler) GetOffice(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	office, err := h.service.GetOffice(c.UserContext(), auth.ActorFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(office)
}

// DeleteOffice handles DELETE /offices/:id.
// @Summary Delete an office
// @Description Fails with 409 while employees are assigned to the office.
// @Tags Organization
// @Param id path int true "Office ID"
// @Success 204
// @Failure 409 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /offices/{id} [delete]
func (h *OrganizationHandler) DeleteOffice(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteOffice(c.UserContext(), auth.ActorFrom(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
