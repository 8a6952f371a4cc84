package handler

import (
	"time"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/apperr"
	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/core/server"
	"parcel-ledger/internal/features/directory/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// StaffHandler handles HTTP requests for employees.
type StaffHandler struct {
	service ports.StaffService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(service ports.StaffService) *StaffHandler {
	return &StaffHandler{
		service: service,
	}
}

// CreateEmployeeRequest represents the request body for provisioning an employee.
type CreateEmployeeRequest struct {
	Username  string          `json:"username" validate:"required,max=150"`
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=8"`
	FirstName string          `json:"first_name" validate:"max=150"`
	LastName  string          `json:"last_name" validate:"max=150"`
	Phone     string          `json:"phone" validate:"max=45"`
	Role      string          `json:"role" validate:"omitempty,oneof=EMPLOYEE ADMIN"`
	Code      string          `json:"employee_code" validate:"required,max=20"`
	Type      string          `json:"employee_type" validate:"required"`
	OfficeID  uint64          `json:"office_id" validate:"required"`
	HireDate  string          `json:"hire_date" validate:"required"`
	Salary    decimal.Decimal `json:"salary"`
}

// UpdateEmployeeRequest represents the request body for an employee edit.
type UpdateEmployeeRequest struct {
	Type      *string          `json:"employee_type"`
	OfficeID  *uint64          `json:"office_id"`
	Salary    *decimal.Decimal `json:"salary"`
	FirstName *string          `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string          `json:"last_name" validate:"omitempty,max=150"`
	Phone     *string          `json:"phone" validate:"omitempty,max=45"`
}

// CreateEmployee handles POST /employees.
// @Summary Create an employee
// @Description Creates the user account and the employee record atomically.
// @Tags Employees
// @Accept json
// @Produce json
// @Param employee body CreateEmployeeRequest true "Employee"
// @Success 201 {object} domain.Employee
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /employees [post]
func (h *StaffHandler) CreateEmployee(c *fiber.Ctx) error {
	var req CreateEmployeeRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}
	hireDate, err := time.Parse(dateLayout, req.HireDate)
	if err != nil {
		return apperr.Validation("hire_date", "hire_date must be a YYYY-MM-DD date")
	}

	employee, err := h.service.CreateEmployee(c.UserContext(), auth.ActorFrom(c), ports.EmployeeInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      access.Role(req.Role),
		Code:      req.Code,
		Type:      req.Type,
		OfficeID:  req.OfficeID,
		HireDate:  hireDate,
		Salary:    req.Salary,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(employee)
}

// UpdateEmployee handles PATCH /employees/:id.
// @Summary Edit an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path int true "Employee user ID"
// @Param employee body UpdateEmployeeRequest true "Changed fields"
// @Success 200 {object} domain.Employee
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /employees/{id} [patch]
func (h *StaffHandler) UpdateEmployee(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateEmployeeRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}

	employee, err := h.service.UpdateEmployee(c.UserContext(), auth.ActorFrom(c), id, ports.EmployeePatch{
		Type:      req.Type,
		OfficeID:  req.OfficeID,
		Salary:    req.Salary,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(employee)
}

// ListEmployees handles GET /employees.
// @Summary List employees
// @Tags Employees
// @Produce json
// @Param office_id query int false "Filter by office"
// @Success 200 {array} domain.Employee
// @Failure 403 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /employees [get]
func (h *StaffHandler) ListEmployees(c *fiber.Ctx) error {
	officeID, err := server.QueryID(c, "office_id")
	if err != nil {
		return err
	}
	employees, err := h.service.ListEmployees(c.UserContext(), auth.ActorFrom(c), officeID)
	if err != nil {
		return err
	}
	return c.JSON(employees)
}

// GetEmployee handles GET /employees/:id.
// @Summary Get an employee
// @Tags Employees
// @Produce json
// @Param id path int true "Employee user ID"
// @Success 200 {object} domain.Employee
// @Failure 404 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /employees/{id} [get]
func (h *StaffHandler) GetEmployee(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	employee, err := h.service.GetEmployee(c.UserContext(), auth.ActorFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(employee)
}

// DeleteEmployee handles DELETE /employees/:id.
// @Summary Delete an employee
// @Tags Employees
// @Param id path int true "Employee user ID"
// @Success 204
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /employees/{id} [delete]
func (h *StaffHandler) DeleteEmployee(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteEmployee(c.UserContext(), auth.ActorFrom(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
