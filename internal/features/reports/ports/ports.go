package ports

import (
	"context"

	"parcel-ledger/internal/core/access"
	directory "parcel-ledger/internal/features/directory/domain"
	"parcel-ledger/internal/features/reports/domain"
)

// ReportService is the primary port for read-only aggregations over the ledger.
type ReportService interface {
	AllParcels(ctx context.Context, actor *access.Actor) (*domain.ParcelReport, error)
	ParcelsByClient(ctx context.Context, actor *access.Actor, clientID uint64, role domain.ClientRole) (*domain.ParcelReport, error)
	ParcelsByEmployee(ctx context.Context, actor *access.Actor, employeeID uint64) (*domain.ParcelReport, error)
	PendingDeliveries(ctx context.Context, actor *access.Actor) (*domain.ParcelReport, error)
	Income(ctx context.Context, actor *access.Actor, period domain.Period) (*domain.IncomeReport, error)
	Employees(ctx context.Context, actor *access.Actor) ([]directory.Employee, error)
	Clients(ctx context.Context, actor *access.Actor) ([]directory.User, error)
}

// UserReader reads accounts from the directory.
type UserReader interface {
	FindByID(ctx context.Context, id uint64) (*directory.User, error)
	List(ctx context.Context, role access.Role) ([]directory.User, error)
}

// EmployeeReader reads staff from the directory.
type EmployeeReader interface {
	FindByID(ctx context.Context, id uint64) (*directory.Employee, error)
	List(ctx context.Context, officeID uint64) ([]directory.Employee, error)
}
