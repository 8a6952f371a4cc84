package service

import (
	"context"
	"fmt"
	"strings"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/apperr"
	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/features/directory/domain"
	"parcel-ledger/internal/features/directory/ports"

	"go.uber.org/zap"
)

// Register creates a client account. It is the only anonymous write.
func (s *DirectoryServiceImpl) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if err := validateAccount(in.Username, email, in.Password); err != nil {
		return nil, err
	}
	if in.Address != nil {
		a := in.Address
		if strings.TrimSpace(a.Country) == "" || strings.TrimSpace(a.City) == "" ||
			strings.TrimSpace(a.PostalCode) == "" || strings.TrimSpace(a.Street) == "" {
			return nil, apperr.Validation("address", "address needs country, city, postal_code and street")
		}
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &domain.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         access.RoleClient,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user, in.Address); err != nil {
		return nil, fmt.Errorf("service: failed to register user: %w", err)
	}

	s.log.Info("Client registered", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login checks the credentials and issues an access token. The email is matched
// case-insensitively; unknown emails and wrong passwords fail the same way.
func (s *DirectoryServiceImpl) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service: failed to load user: %w", err)
	}
	if !s.check(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(auth.Subject{
		UserID:    user.ID,
		Role:      user.Role,
		Superuser: user.Superuser,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info("User logged in", zap.Uint64("user_id", user.ID))
	return &ports.Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// GetUser returns a profile; clients may only read their own.
func (s *DirectoryServiceImpl) GetUser(ctx context.Context, actor *access.Actor, id uint64) (*domain.User, error) {
	if err := access.CanAccessProfile(actor, id); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile edits a profile; clients may only edit their own.
func (s *DirectoryServiceImpl) UpdateProfile(ctx context.Context, actor *access.Actor, id uint64, patch ports.ProfilePatch) (*domain.User, error) {
	if err := access.CanAccessProfile(actor, id); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get user: %w", err)
	}

	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		if !strings.Contains(email, "@") {
			return nil, apperr.Validation("email", "email must be a valid email address")
		}
		user.Email = email
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := s.hash(*patch.Password)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		user.PasswordHash = hash
	}
	applyString(&user.FirstName, patch.FirstName)
	applyString(&user.LastName, patch.LastName)
	applyString(&user.Phone, patch.Phone)
	if patch.DefaultAddressID != nil {
		addressID := *patch.DefaultAddressID
		if err := s.checkAddressOwner(ctx, actor, user, addressID); err != nil {
			return nil, err
		}
		user.DefaultAddressID = &addressID
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service: failed to update user: %w", err)
	}

	s.log.Info("Profile updated", zap.Uint64("user_id", user.ID), zap.Uint64("actor_id", actor.UserID))
	return user, nil
}

// checkAddressOwner lets clients pick only an address already linked to them.
// Foreign addresses are reported as missing so ids cannot be probed.
func (s *DirectoryServiceImpl) checkAddressOwner(ctx context.Context, actor *access.Actor, user *domain.User, addressID uint64) error {
	if actor.IsStaff() {
		return nil
	}
	if user.DefaultAddressID != nil && *user.DefaultAddressID == addressID {
		return nil
	}
	owned, err := s.users.HasAddress(ctx, user.ID, addressID)
	if err != nil {
		return fmt.Errorf("service: failed to check address owner: %w", err)
	}
	if !owned {
		return domain.ErrAddressNotFound.WithField("default_address_id")
	}
	return nil
}

// ListClients returns every client account.
func (s *DirectoryServiceImpl) ListClients(ctx context.Context, actor *access.Actor) ([]domain.User, error) {
	if err := access.Authorize(actor, access.ManageClients); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, access.RoleClient)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list clients: %w", err)
	}
	return users, nil
}

// DeleteUser removes an account that is party to no parcel, then drops the
// addresses it leaves unreferenced.
func (s *DirectoryServiceImpl) DeleteUser(ctx context.Context, actor *access.Actor, id uint64) error {
	if err := access.Authorize(actor, access.ManageClients); err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return fmt.Errorf("service: failed to get user: %w", err)
	}
	if err := s.ensureNoParcels(ctx, id); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete user: %w", err)
	}
	s.log.Info("User deleted", zap.Uint64("user_id", id), zap.Uint64("actor_id", actor.UserID))

	s.cleanupAddresses(ctx, "user_delete")
	return nil
}
