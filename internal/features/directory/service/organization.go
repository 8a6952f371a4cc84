package service

import (
	"context"
	"fmt"
	"strings"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/features/directory/domain"
	"parcel-ledger/internal/features/directory/ports"

	"go.uber.org/zap"
)

// CreateCompany registers a company.
func (s *DirectoryServiceImpl) CreateCompany(ctx context.Context, actor *access.Actor, company domain.Company) (*domain.Company, error) {
	if err := access.Authorize(actor, access.ManageCompanies); err != nil {
		return nil, err
	}
	company.ID = 0
	company.Name = strings.TrimSpace(company.Name)
	company.Bulstat = strings.ToUpper(strings.TrimSpace(company.Bulstat))
	company.Phone = strings.TrimSpace(company.Phone)
	if err := company.Validate(); err != nil {
		return nil, err
	}

	if err := s.org.CreateCompany(ctx, &company); err != nil {
		return nil, fmt.Errorf("service: failed to create company: %w", err)
	}

	s.log.Info("Company created", zap.Uint64("company_id", company.ID), zap.Uint64("actor_id", actor.UserID))
	return &company, nil
}

// UpdateCompany edits a company.
func (s *DirectoryServiceImpl) UpdateCompany(ctx context.Context, actor *access.Actor, id uint64, patch ports.CompanyPatch) (*domain.Company, error) {
	if err := access.Authorize(actor, access.ManageCompanies); err != nil {
		return nil, err
	}
	company, err := s.org.FindCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get company: %w", err)
	}

	applyString(&company.Name, patch.Name)
	applyString(&company.Phone, patch.Phone)
	if patch.AddressID != nil {
		company.AddressID = *patch.AddressID
	}
	if err := company.Validate(); err != nil {
		return nil, err
	}

	if err := s.org.UpdateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("service: failed to update company: %w", err)
	}
	s.cleanupAddresses(ctx, "company_update")
	return company, nil
}

// ListCompanies returns every company.
func (s *DirectoryServiceImpl) ListCompanies(ctx context.Context, actor *access.Actor) ([]domain.Company, error) {
	if actor == nil {
		return nil, access.ErrUnauthenticated
	}
	companies, err := s.org.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list companies: %w", err)
	}
	return companies, nil
}

// DeleteCompany removes a company that owns no offices.
func (s *DirectoryServiceImpl) DeleteCompany(ctx context.Context, actor *access.Actor, id uint64) error {
	if err := access.Authorize(actor, access.ManageCompanies); err != nil {
		return err
	}
	if _, err := s.org.FindCompany(ctx, id); err != nil {
		return fmt.Errorf("service: failed to get company: %w", err)
	}

	offices, err := s.org.CountOffices(ctx, id)
	if err != nil {
		return fmt.Errorf("service: failed to count offices: %w", err)
	}
	if offices > 0 {
		return domain.ErrCompanyHasOffices.
			WithMessage(fmt.Sprintf("company still owns %d offices", offices)).
			WithDetails(map[string]any{"offices": offices})
	}

	if err := s.org.DeleteCompany(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete company: %w", err)
	}
	s.log.Info("Company deleted", zap.Uint64("company_id", id), zap.Uint64("actor_id", actor.UserID))

	s.cleanupAddresses(ctx, "company_delete")
	return nil
}

// CreateOffice opens an office of an existing company. Office codes are unique.
func (s *DirectoryServiceImpl) CreateOffice(ctx context.Context, actor *access.Actor, office domain.Office) (*domain.Office, error) {
	if err := access.Authorize(actor, access.ManageOffices); err != nil {
		return nil, err
	}
	office.ID = 0
	office.Name = strings.TrimSpace(office.Name)
	office.Code = strings.ToUpper(strings.TrimSpace(office.Code))
	office.Phone = strings.TrimSpace(office.Phone)
	office.WorkingHours = strings.TrimSpace(office.WorkingHours)
	if err := office.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.org.FindCompany(ctx, office.CompanyID); err != nil {
		return nil, fmt.Errorf("service: failed to resolve company: %w", err)
	}

	if err := s.org.CreateOffice(ctx, &office); err != nil {
		return nil, fmt.Errorf("service: failed to create office: %w", err)
	}

	s.log.Info("Office created",
		zap.Uint64("office_id", office.ID),
		zap.String("code", office.Code),
		zap.Uint64("actor_id", actor.UserID),
	)
	return &office, nil
}

// UpdateOffice edits an office. Its code and company are fixed.
func (s *DirectoryServiceImpl) UpdateOffice(ctx context.Context, actor *access.Actor, id uint64, patch ports.OfficePatch) (*domain.Office, error) {
	if err := access.Authorize(actor, access.ManageOffices); err != nil {
		return nil, err
	}
	office, err := s.org.FindOffice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get office: %w", err)
	}

	applyString(&office.Name, patch.Name)
	applyString(&office.Phone, patch.Phone)
	applyString(&office.WorkingHours, patch.WorkingHours)
	if patch.AddressID != nil {
		office.AddressID = *patch.AddressID
	}
	if err := office.Validate(); err != nil {
		return nil, err
	}

	if err := s.org.UpdateOffice(ctx, office); err != nil {
		return nil, fmt.Errorf("service: failed to update office: %w", err)
	}
	s.cleanupAddresses(ctx, "office_update")
	return office, nil
}

// ListOffices returns the offices of a company, or all offices for company zero.
func (s *DirectoryServiceImpl) ListOffices(ctx context.Context, actor *access.Actor, companyID uint64) ([]domain.Office, error) {
	if actor == nil {
		return nil, access.ErrUnauthenticated
	}
	offices, err := s.org.ListOffices(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list offices: %w", err)
	}
	return offices, nil
}

// GetOffice returns one office.
func (s *DirectoryServiceImpl) GetOffice(ctx context.Context, actor *access.Actor, id uint64) (*domain.Office, error) {
	if actor == nil {
		return nil, access.ErrUnauthenticated
	}
	office, err := s.org.FindOffice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get office: %w", err)
	}
	return office, nil
}

// DeleteOffice removes an office without assigned employees.
func (s *DirectoryServiceImpl) DeleteOffice(ctx context.Context, actor *access.Actor, id uint64) error {
	if err := access.Authorize(actor, access.ManageOffices); err != nil {
		return err
	}
	if _, err := s.org.FindOffice(ctx, id); err != nil {
		return fmt.Errorf("service: failed to get office: %w", err)
	}

	employees, err := s.employees.CountByOffice(ctx, id)
	if err != nil {
		return fmt.Errorf("service: failed to count employees: %w", err)
	}
	if employees > 0 {
		return domain.ErrOfficeHasEmployees.
			WithMessage(fmt.Sprintf("office has %d assigned employees", employees)).
			WithDetails(map[string]any{"employees": employees})
	}

	if err := s.org.DeleteOffice(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete office: %w", err)
	}
	s.log.Info("Office deleted", zap.Uint64("office_id", id), zap.Uint64("actor_id", actor.UserID))

	s.cleanupAddresses(ctx, "office_delete")
	return nil
}
