package ports

import (
	"context"
	"time"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/features/directory/domain"

	"github.com/shopspring/decimal"
)

// AddressInput carries an inline address given at registration.
type AddressInput struct {
	Country    string
	City       string
	PostalCode string
	Street     string
	Details    string
}

// RegisterInput carries a self-registration.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	// Address becomes the client's default address when set.
	Address *AddressInput
}

// ProfilePatch lists the profile fields to change; nil means unchanged.
type ProfilePatch struct {
	Email            *string
	Password         *string
	FirstName        *string
	LastName         *string
	Phone            *string
	DefaultAddressID *uint64
}

// Session is the result of a successful login.
type Session struct {
	Token     string       `json:"access_token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// EmployeeInput carries a new employee and the user account behind it.
type EmployeeInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	// Role is RoleEmployee unless RoleAdmin is requested.
	Role     access.Role
	Code     string
	Type     string
	OfficeID uint64
	HireDate time.Time
	Salary   decimal.Decimal
}

// EmployeePatch lists the employee fields to change; nil means unchanged.
type EmployeePatch struct {
	Type      *string
	OfficeID  *uint64
	Salary    *decimal.Decimal
	FirstName *string
	LastName  *string
	Phone     *string
}

// CompanyPatch lists the company fields to change; nil means unchanged.
type CompanyPatch struct {
	Name      *string
	Phone     *string
	AddressID *uint64
}

// OfficePatch lists the office fields to change; nil means unchanged.
type OfficePatch struct {
	Name         *string
	Phone        *string
	AddressID    *uint64
	WorkingHours *string
}

// AccountService defines the primary port for user accounts.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	GetUser(ctx context.Context, actor *access.Actor, id uint64) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor *access.Actor, id uint64, patch ProfilePatch) (*domain.User, error)
	ListClients(ctx context.Context, actor *access.Actor) ([]domain.User, error)
	DeleteUser(ctx context.Context, actor *access.Actor, id uint64) error
}

// StaffService defines the primary port for employees.
type StaffService interface {
	CreateEmployee(ctx context.Context, actor *access.Actor, in EmployeeInput) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, actor *access.Actor, id uint64, patch EmployeePatch) (*domain.Employee, error)
	ListEmployees(ctx context.Context, actor *access.Actor, officeID uint64) ([]domain.Employee, error)
	GetEmployee(ctx context.Context, actor *access.Actor, id uint64) (*domain.Employee, error)
	DeleteEmployee(ctx context.Context, actor *access.Actor, id uint64) error
}

// OrganizationService defines the primary port for companies and offices.
type OrganizationService interface {
	CreateCompany(ctx context.Context, actor *access.Actor, company domain.Company) (*domain.Company, error)
	UpdateCompany(ctx context.Context, actor *access.Actor, id uint64, patch CompanyPatch) (*domain.Company, error)
	ListCompanies(ctx context.Context, actor *access.Actor) ([]domain.Company, error)
	DeleteCompany(ctx context.Context, actor *access.Actor, id uint64) error
	CreateOffice(ctx context.Context, actor *access.Actor, office domain.Office) (*domain.Office, error)
	UpdateOffice(ctx context.Context, actor *access.Actor, id uint64, patch OfficePatch) (*domain.Office, error)
	ListOffices(ctx context.Context, actor *access.Actor, companyID uint64) ([]domain.Office, error)
	GetOffice(ctx context.Context, actor *access.Actor, id uint64) (*domain.Office, error)
	DeleteOffice(ctx context.Context, actor *access.Actor, id uint64) error
}

// UserRepository defines the secondary port for user storage.
type UserRepository interface {
	// Create stores the user; a non-nil address is stored, linked and made the
	// default address in the same transaction.
	Create(ctx context.Context, user *domain.User, address *AddressInput) error
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns users with the role, or every user for the empty role.
	List(ctx context.Context, role access.Role) ([]domain.User, error)
	// HasAddress reports whether the address is linked to the user.
	HasAddress(ctx context.Context, userID, addressID uint64) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uint64) error
}

// EmployeeRepository defines the secondary port for employee storage.
type EmployeeRepository interface {
	// CreateWithUser stores employee.User and the employee row atomically.
	CreateWithUser(ctx context.Context, employee *domain.Employee) error
	FindByID(ctx context.Context, id uint64) (*domain.Employee, error)
	// List returns the employees of an office, or all employees for office zero.
	List(ctx context.Context, officeID uint64) ([]domain.Employee, error)
	Update(ctx context.Context, employee *domain.Employee) error
	CountByOffice(ctx context.Context, officeID uint64) (int64, error)
}

// OrganizationRepository defines the secondary port for companies and offices.
type OrganizationRepository interface {
	CreateCompany(ctx context.Context, company *domain.Company) error
	FindCompany(ctx context.Context, id uint64) (*domain.Company, error)
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	UpdateCompany(ctx context.Context, company *domain.Company) error
	DeleteCompany(ctx context.Context, id uint64) error
	CountOffices(ctx context.Context, companyID uint64) (int64, error)

	CreateOffice(ctx context.Context, office *domain.Office) error
	FindOffice(ctx context.Context, id uint64) (*domain.Office, error)
	ListOffices(ctx context.Context, companyID uint64) ([]domain.Office, error)
	UpdateOffice(ctx context.Context, office *domain.Office) error
	DeleteOffice(ctx context.Context, id uint64) error
}

// ParcelCounter reports how many parcels a user is party to.
type ParcelCounter interface {
	CountByParty(ctx context.Context, userID uint64) (sent, received int64, err error)
}

// AddressCleaner removes addresses left unreferenced by a deletion.
type AddressCleaner interface {
	CleanupOrphanAddresses(ctx context.Context) (int64, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(subject auth.Subject) (string, time.Time, error)
}
