package service

import (
	"context"
	"fmt"
	"strings"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/apperr"
	"parcel-ledger/internal/features/directory/domain"
	"parcel-ledger/internal/features/directory/ports"

	"go.uber.org/zap"
)

// CreateEmployee provisions a user account and its employee record in one transaction.
func (s *DirectoryServiceImpl) CreateEmployee(ctx context.Context, actor *access.Actor, in ports.EmployeeInput) (*domain.Employee, error) {
	if err := access.Authorize(actor, access.ManageEmployees); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = access.RoleEmployee
	}
	switch role {
	case access.RoleEmployee:
	case access.RoleAdmin:
		if !actor.Superuser && actor.Role != access.RoleAdmin {
			return nil, access.ErrForbidden.WithMessage("only admins may create admin accounts")
		}
	default:
		return nil, apperr.Validation("role", "employee role must be EMPLOYEE or ADMIN")
	}

	email := domain.NormalizeEmail(in.Email)
	if err := validateAccount(in.Username, email, in.Password); err != nil {
		return nil, err
	}
	employeeType, err := domain.ParseEmployeeType(in.Type)
	if err != nil {
		return nil, err
	}

	employee := &domain.Employee{
		Code:     strings.ToUpper(strings.TrimSpace(in.Code)),
		Type:     employeeType,
		OfficeID: in.OfficeID,
		HireDate: in.HireDate,
		Salary:   in.Salary.Round(2),
	}
	if err := employee.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.org.FindOffice(ctx, in.OfficeID); err != nil {
		return nil, fmt.Errorf("service: failed to resolve office: %w", err)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	employee.User = &domain.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         role,
		PasswordHash: hash,
	}

	if err := s.employees.CreateWithUser(ctx, employee); err != nil {
		return nil, fmt.Errorf("service: failed to create employee: %w", err)
	}

	s.log.Info("Employee created",
		zap.Uint64("user_id", employee.UserID),
		zap.String("employee_code", employee.Code),
		zap.Uint64("office_id", employee.OfficeID),
		zap.Uint64("actor_id", actor.UserID),
	)
	return employee, nil
}

// UpdateEmployee edits the job data and names of an employee.
func (s *DirectoryServiceImpl) UpdateEmployee(ctx context.Context, actor *access.Actor, id uint64, patch ports.EmployeePatch) (*domain.Employee, error) {
	if err := access.Authorize(actor, access.ManageEmployees); err != nil {
		return nil, err
	}
	employee, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get employee: %w", err)
	}

	if patch.Type != nil {
		t, err := domain.ParseEmployeeType(*patch.Type)
		if err != nil {
			return nil, err
		}
		employee.Type = t
	}
	if patch.OfficeID != nil && *patch.OfficeID != employee.OfficeID {
		if _, err := s.org.FindOffice(ctx, *patch.OfficeID); err != nil {
			return nil, fmt.Errorf("service: failed to resolve office: %w", err)
		}
		employee.OfficeID = *patch.OfficeID
	}
	if patch.Salary != nil {
		employee.Salary = patch.Salary.Round(2)
	}
	if employee.User != nil {
		applyString(&employee.User.FirstName, patch.FirstName)
		applyString(&employee.User.LastName, patch.LastName)
		applyString(&employee.User.Phone, patch.Phone)
	}
	if err := employee.Validate(); err != nil {
		return nil, err
	}

	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("service: failed to update employee: %w", err)
	}

	s.log.Info("Employee updated", zap.Uint64("user_id", id), zap.Uint64("actor_id", actor.UserID))
	return employee, nil
}

// ListEmployees returns the employees of an office, or all of them for office zero.
func (s *DirectoryServiceImpl) ListEmployees(ctx context.Context, actor *access.Actor, officeID uint64) ([]domain.Employee, error) {
	if err := access.Authorize(actor, access.ManageEmployees); err != nil {
		return nil, err
	}
	employees, err := s.employees.List(ctx, officeID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list employees: %w", err)
	}
	return employees, nil
}

// GetEmployee returns one employee; staff only.
func (s *DirectoryServiceImpl) GetEmployee(ctx context.Context, actor *access.Actor, id uint64) (*domain.Employee, error) {
	if err := access.Authorize(actor, access.ManageEmployees); err != nil {
		return nil, err
	}
	employee, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get employee: %w", err)
	}
	return employee, nil
}

// DeleteEmployee removes the employee and its user account, under the same parcel
// party guard as any other user.
func (s *DirectoryServiceImpl) DeleteEmployee(ctx context.Context, actor *access.Actor, id uint64) error {
	if err := access.Authorize(actor, access.ManageEmployees); err != nil {
		return err
	}
	if actor.UserID == id {
		return apperr.New(apperr.KindState, "self_delete", "employees cannot delete their own account")
	}
	if _, err := s.employees.FindByID(ctx, id); err != nil {
		return fmt.Errorf("service: failed to get employee: %w", err)
	}
	if err := s.ensureNoParcels(ctx, id); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete employee: %w", err)
	}
	s.log.Info("Employee deleted", zap.Uint64("user_id", id), zap.Uint64("actor_id", actor.UserID))

	s.cleanupAddresses(ctx, "employee_delete")
	return nil
}
