package domain

import (
	"fmt"
	"strings"
	"time"

	"parcel-ledger/internal/core/apperr"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmployeeNotFound is returned when an employee id does not resolve.
	ErrEmployeeNotFound = apperr.New(apperr.KindNotFound, "employee_not_found", "employee not found")
	// ErrEmployeeCodeTaken is returned when the employee code is already used.
	ErrEmployeeCodeTaken = apperr.New(apperr.KindConflict, "employee_code_taken", "an employee with this code already exists")
	// ErrCompanyNotFound is returned when a company id does not resolve.
	ErrCompanyNotFound = apperr.New(apperr.KindNotFound, "company_not_found", "company not found")
	// ErrBulstatTaken is returned when the company registration number is already used.
	ErrBulstatTaken = apperr.New(apperr.KindConflict, "bulstat_taken", "a company with this bulstat already exists")
	// ErrCompanyHasOffices blocks deleting a company that still owns offices.
	ErrCompanyHasOffices = apperr.New(apperr.KindState, "company_has_offices", "company still owns offices")
	// ErrCompanyInUse is returned when parcels still reference the company.
	ErrCompanyInUse = apperr.New(apperr.KindState, "company_in_use", "company is referenced by parcels")
	// ErrOfficeNotFound is returned when an office id does not resolve.
	ErrOfficeNotFound = apperr.New(apperr.KindNotFound, "office_not_found", "office not found")
	// ErrOfficeCodeTaken is returned when the office code is already used.
	ErrOfficeCodeTaken = apperr.New(apperr.KindConflict, "office_code_taken", "an office with this code already exists")
	// ErrOfficeHasEmployees blocks deleting an office with assigned employees.
	ErrOfficeHasEmployees = apperr.New(apperr.KindState, "office_has_employees", "office has assigned employees")
	// ErrAddressNotFound is returned when an address id does not resolve.
	ErrAddressNotFound = apperr.New(apperr.KindNotFound, "address_not_found", "address not found")
)

// EmployeeType is the job of an employee.
type EmployeeType string

const (
	EmployeeCourier EmployeeType = "COURIER"
	EmployeeOffice  EmployeeType = "OFFICE"
	EmployeeManager EmployeeType = "MANAGER"
)

// ParseEmployeeType validates an employee type string (case-insensitive).
func ParseEmployeeType(s string) (EmployeeType, error) {
	switch t := EmployeeType(strings.ToUpper(strings.TrimSpace(s))); t {
	case EmployeeCourier, EmployeeOffice, EmployeeManager:
		return t, nil
	default:
		return "", apperr.Validation("employee_type", fmt.Sprintf("unknown employee type %q", s))
	}
}

// Employee is the staff record of a user; it shares the user's id.
type Employee struct {
	UserID   uint64          `json:"user_id"`
	Code     string          `json:"employee_code"`
	Type     EmployeeType    `json:"employee_type"`
	OfficeID uint64          `json:"office_id"`
	HireDate time.Time       `json:"hire_date"`
	Salary   decimal.Decimal `json:"salary"`
	User     *User           `json:"user,omitempty"`
}

// Validate checks the employee fields that are not enforced by the store.
func (e *Employee) Validate() error {
	switch {
	case strings.TrimSpace(e.Code) == "":
		return apperr.Validation("employee_code", "employee_code is required")
	case e.OfficeID == 0:
		return apperr.Validation("office_id", "office_id is required")
	case e.HireDate.IsZero():
		return apperr.Validation("hire_date", "hire_date is required")
	case e.Salary.IsNegative():
		return apperr.Validation("salary", "salary must not be negative")
	}
	if _, err := ParseEmployeeType(string(e.Type)); err != nil {
		return err
	}
	return nil
}

// Company owns offices and tariffs.
type Company struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Bulstat   string `json:"bulstat"`
	Phone     string `json:"phone,omitempty"`
	AddressID uint64 `json:"address_id"`
}

// Validate checks the mandatory company fields.
func (c *Company) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return apperr.Validation("name", "name is required")
	case strings.TrimSpace(c.Bulstat) == "":
		return apperr.Validation("bulstat", "bulstat is required")
	case c.AddressID == 0:
		return apperr.Validation("address_id", "address_id is required")
	}
	return nil
}

// Office is a branch of a company; parcels start and end at offices.
type Office struct {
	ID           uint64 `json:"id"`
	CompanyID    uint64 `json:"company_id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Phone        string `json:"phone,omitempty"`
	AddressID    uint64 `json:"address_id"`
	WorkingHours string `json:"working_hours,omitempty"`
}

// Validate checks the mandatory office fields.
func (o *Office) Validate() error {
	switch {
	case o.CompanyID == 0:
		return apperr.Validation("company_id", "company_id is required")
	case strings.TrimSpace(o.Name) == "":
		return apperr.Validation("name", "name is required")
	case strings.TrimSpace(o.Code) == "":
		return apperr.Validation("code", "code is required")
	case o.AddressID == 0:
		return apperr.Validation("address_id", "address_id is required")
	}
	return nil
}
