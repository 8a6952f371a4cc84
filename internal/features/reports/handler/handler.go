package handler

import (
	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/core/server"
	"parcel-ledger/internal/features/reports/domain"
	"parcel-ledger/internal/features/reports/ports"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles HTTP requests for reporting views.
type ReportHandler struct {
	service ports.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// AllParcels handles GET /reports/parcels.
// @Summary All parcels report
// @Tags Reports
// @Produce json
// @Success 200 {object} domain.ParcelReport
// @Failure 401 {object} server.ErrorResponse
// @Failure 403 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /reports/parcels [get]
func (h *ReportHandler) AllParcels(c *fiber.Ctx) error {
	report, err := h.service.AllParcels(c.UserContext(), auth.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// ParcelsByClient handles GET /reports/client-parcels.
// @Summary Parcels by client
// @Description Parcels a client sent, received, or either. client_id is required unless role is all.
// @Tags Reports
// @Produce json
// @Param client_id query int false "Client user ID"
// @Param role query string false "sent, received or all" default(all)
// @Success 200 {object} domain.ParcelReport
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /reports/client-parcels [get]
func (h *ReportHandler) ParcelsByClient(c *fiber.Ctx) error {
	clientID, err := server.QueryID(c, "client_id")
	if err != nil {
		return err
	}
	role, err := domain.ParseClientRole(c.Query("role"))
	if err != nil {
		return err
	}

	report, err := h.service.ParcelsByClient(c.UserContext(), auth.ActorFrom(c), clientID, role)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// ParcelsByEmployee handles GET /reports/employees/:id/parcels.
// @Summary Parcels registered by an employee
// @Tags Reports
// @Produce json
// @Param id path int true "Employee user ID"
// @Success 200 {object} domain.ParcelReport
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /reports/employees/{id}/parcels [get]
func (h *ReportHandler) ParcelsByEmployee(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	report, err := h.service.ParcelsByEmployee(c.UserContext(), auth.ActorFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// PendingDeliveries handles GET /reports/pending-deliveries.
// @Summary Parcels not yet in a terminal status
// @Tags Reports
// @Produce json
// @Success 200 {object} domain.ParcelReport
// @Failure 403 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /reports/pending-deliveries [get]
func (h *ReportHandler) PendingDeliveries(c *fiber.Ctx) error {
	report, err := h.service.PendingDeliveries(c.UserContext(), auth.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// Income handles GET /reports/income.
// @Summary Income over a period
// @Description Sums the price of parcels delivered between from and to, both inclusive (UTC days).
// @Tags Reports
// @Produce json
// @Param from query string true "First day, YYYY-MM-DD"
// @Param to query string true "Last day, YYYY-MM-DD"
// @Success 200 {object} domain.IncomeReport
// @Failure 403 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /reports/income [get]
func (h *ReportHandler) Income(c *fiber.Ctx) error {
	period, err := domain.ParsePeriod(c.Query("from"), c.Query("to"))
	if err != nil {
		return err
	}
	report, err := h.service.Income(c.UserContext(), auth.ActorFrom(c), period)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// Employees handles GET /reports/employees.
// @Summary Employees report
// @Tags Reports
// @Produce json
// @Success 200 {array} object
// @Failure 403 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /reports/employees [get]
func (h *ReportHandler) Employees(c *fiber.Ctx) error {
	employees, err := h.service.Employees(c.UserContext(), auth.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(employees)
}

// Clients handles GET /reports/clients.
// @Summary Clients report
// @Tags Reports
// @Produce json
// @Success 200 {array} object
// @Failure 403 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /reports/clients [get]
func (h *ReportHandler) Clients(c *fiber.Ctx) error {
	clients, err := h.service.Clients(c.UserContext(), auth.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(clients)
}
