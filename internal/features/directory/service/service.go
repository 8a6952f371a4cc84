package service

import (
	"context"
	"fmt"
	"strings"

	"parcel-ledger/internal/core/apperr"
	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/core/logger"
	"parcel-ledger/internal/features/directory/domain"
	"parcel-ledger/internal/features/directory/ports"

	"go.uber.org/zap"
)

const minPasswordLength = 8

// DirectoryServiceImpl implements ports.AccountService, ports.StaffService and
// ports.OrganizationService.
type DirectoryServiceImpl struct {
	users     ports.UserRepository
	employees ports.EmployeeRepository
	org       ports.OrganizationRepository
	parcels   ports.ParcelCounter
	cleaner   ports.AddressCleaner
	tokens    ports.TokenIssuer
	hash      func(password string) (string, error)
	check     func(hash, password string) bool
	log       *zap.Logger
}

// Dependencies groups the collaborators of the directory service.
type Dependencies struct {
	Users         ports.UserRepository
	Employees     ports.EmployeeRepository
	Organizations ports.OrganizationRepository
	Parcels       ports.ParcelCounter
	Addresses     ports.AddressCleaner
	Tokens        ports.TokenIssuer
	// HashPassword and CheckPassword default to bcrypt when nil.
	HashPassword  func(password string) (string, error)
	CheckPassword func(hash, password string) bool
}

// NewDirectoryService creates a new DirectoryServiceImpl.
func NewDirectoryService(deps Dependencies) *DirectoryServiceImpl {
	s := &DirectoryServiceImpl{
		users:     deps.Users,
		employees: deps.Employees,
		org:       deps.Organizations,
		parcels:   deps.Parcels,
		cleaner:   deps.Addresses,
		tokens:    deps.Tokens,
		hash:      deps.HashPassword,
		check:     deps.CheckPassword,
		log:       logger.Named("directory"),
	}
	if s.hash == nil {
		s.hash = auth.HashPassword
	}
	if s.check == nil {
		s.check = auth.CheckPassword
	}
	return s
}

// ensureNoParcels blocks deleting a user that is sender or receiver of any parcel.
func (s *DirectoryServiceImpl) ensureNoParcels(ctx context.Context, userID uint64) error {
	sent, received, err := s.parcels.CountByParty(ctx, userID)
	if err != nil {
		return fmt.Errorf("service: failed to count parcels of user %d: %w", userID, err)
	}
	counts := domain.PartyCounts{Sent: sent, Received: received}
	if !counts.Any() {
		return nil
	}
	return domain.ErrUserHasParcels.
		WithMessage(fmt.Sprintf("user is sender of %d and receiver of %d parcels", sent, received)).
		WithDetails(map[string]any{"sent": sent, "received": received})
}

// cleanupAddresses runs after a committed delete. Its failure leaves stray addresses
// behind but must not turn the delete into an error.
func (s *DirectoryServiceImpl) cleanupAddresses(ctx context.Context, reason string) {
	if s.cleaner == nil {
		return
	}
	if _, err := s.cleaner.CleanupOrphanAddresses(ctx); err != nil {
		s.log.Error("Orphan address cleanup failed", zap.String("after", reason), zap.Error(err))
	}
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperr.Validation("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}

func validateAccount(username, email, password string) error {
	if strings.TrimSpace(username) == "" {
		return apperr.Validation("username", "username is required")
	}
	if !strings.Contains(email, "@") {
		return apperr.Validation("email", "email must be a valid email address")
	}
	return validatePassword(password)
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
