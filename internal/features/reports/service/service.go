package service

import (
	"context"
	"errors"
	"fmt"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/logger"
	directory "parcel-ledger/internal/features/directory/domain"
	parcels "parcel-ledger/internal/features/parcels/domain"
	parcelports "parcel-ledger/internal/features/parcels/ports"
	"parcel-ledger/internal/features/reports/domain"
	"parcel-ledger/internal/features/reports/ports"

	"go.uber.org/zap"
)

// ReportServiceImpl implements ports.ReportService on top of the ledger read contract.
type ReportServiceImpl struct {
	parcels   parcelports.ParcelQuery
	users     ports.UserReader
	employees ports.EmployeeReader
	log       *zap.Logger
}

// NewReportService creates a new ReportServiceImpl.
func NewReportService(parcels parcelports.ParcelQuery, users ports.UserReader, employees ports.EmployeeReader) *ReportServiceImpl {
	return &ReportServiceImpl{
		parcels:   parcels,
		users:     users,
		employees: employees,
		log:       logger.Named("reports"),
	}
}

// AllParcels lists every parcel, newest first.
func (s *ReportServiceImpl) AllParcels(ctx context.Context, actor *access.Actor) (*domain.ParcelReport, error) {
	if err := access.Authorize(actor, access.ViewReports); err != nil {
		return nil, err
	}
	return s.report(ctx, parcelports.ListFilter{})
}

// ParcelsByClient lists the parcels a client sent, received, or either. Without a
// client the "all" role covers every parcel.
func (s *ReportServiceImpl) ParcelsByClient(ctx context.Context, actor *access.Actor, clientID uint64, role domain.ClientRole) (*domain.ParcelReport, error) {
	if err := access.Authorize(actor, access.ViewReports); err != nil {
		return nil, err
	}
	if clientID == 0 {
		if role != domain.RoleAll {
			return nil, domain.ErrClientRequired
		}
		return s.report(ctx, parcelports.ListFilter{})
	}
	if err := s.client(ctx, clientID); err != nil {
		return nil, err
	}

	var filter parcelports.ListFilter
	switch role {
	case domain.RoleSent:
		filter.SenderID = clientID
	case domain.RoleReceived:
		filter.ReceiverID = clientID
	default:
		filter.PartyID = clientID
	}
	return s.report(ctx, filter)
}

// ParcelsByEmployee lists the parcels an employee registered.
func (s *ReportServiceImpl) ParcelsByEmployee(ctx context.Context, actor *access.Actor, employeeID uint64) (*domain.ParcelReport, error) {
	if err := access.Authorize(actor, access.ViewReports); err != nil {
		return nil, err
	}
	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.report(ctx, parcelports.ListFilter{RegisteredByID: employeeID})
}

// PendingDeliveries lists the parcels that have not reached a terminal status.
func (s *ReportServiceImpl) PendingDeliveries(ctx context.Context, actor *access.Actor) (*domain.ParcelReport, error) {
	if err := access.Authorize(actor, access.ViewReports); err != nil {
		return nil, err
	}
	return s.report(ctx, parcelports.ListFilter{Statuses: domain.PendingStatuses()})
}

// Income totals the price of parcels delivered within the period.
func (s *ReportServiceImpl) Income(ctx context.Context, actor *access.Actor, period domain.Period) (*domain.IncomeReport, error) {
	if err := access.Authorize(actor, access.ViewReports); err != nil {
		return nil, err
	}
	from, to := period.Bounds()
	list, err := s.parcels.List(ctx, parcelports.ListFilter{
		Statuses:      []parcels.StatusCode{parcels.StatusDelivered},
		DeliveredFrom: &from,
		DeliveredTo:   &to,
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list delivered parcels: %w", err)
	}

	report := domain.NewIncomeReport(period, list)
	s.log.Debug("Income report built",
		zap.String("from", report.From),
		zap.String("to", report.To),
		zap.Int("parcels", report.Count),
		zap.String("total", report.Total),
		zap.Uint64("actor_id", actor.UserID),
	)
	return &report, nil
}

// Employees lists every employee.
func (s *ReportServiceImpl) Employees(ctx context.Context, actor *access.Actor) ([]directory.Employee, error) {
	if err := access.Authorize(actor, access.ViewReports); err != nil {
		return nil, err
	}
	employees, err := s.employees.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list employees: %w", err)
	}
	return employees, nil
}

// Clients lists every client account.
func (s *ReportServiceImpl) Clients(ctx context.Context, actor *access.Actor) ([]directory.User, error) {
	if err := access.Authorize(actor, access.ViewReports); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, access.RoleClient)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list clients: %w", err)
	}
	return users, nil
}

func (s *ReportServiceImpl) report(ctx context.Context, filter parcelports.ListFilter) (*domain.ParcelReport, error) {
	list, err := s.parcels.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list parcels: %w", err)
	}
	report := domain.NewParcelReport(list)
	return &report, nil
}

func (s *ReportServiceImpl) client(ctx context.Context, id uint64) error {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, directory.ErrUserNotFound) {
		return domain.ErrClientNotFound
	}
	if err != nil {
		return fmt.Errorf("service: failed to load client %d: %w", id, err)
	}
	if user.Role != access.RoleClient {
		return domain.ErrClientNotFound
	}
	return nil
}
