package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"parcel-ledger/internal/core/access"
	"parcel-ledger/internal/core/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for malformed, expired or foreign tokens.
var ErrInvalidToken = apperr.New(apperr.KindUnauthenticated, "invalid_token", "invalid or expired access token")

// Subject is the identity a token is issued for.
type Subject struct {
	UserID    uint64
	Role      access.Role
	Superuser bool
}

// claims is the JWT payload.
type claims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	Superuser bool   `json:"su,omitempty"`
}

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer.
func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for the subject and returns it with its expiry.
func (i *Issuer) Issue(s Subject) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   strconv.FormatUint(s.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role:      string(s.Role),
		Superuser: s.Superuser,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses the token and returns the actor it represents.
func (i *Issuer) Verify(token string) (*access.Actor, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrInvalidToken.WithMessage("access token expired")
		}
		return nil, ErrInvalidToken.Wrap(err)
	}

	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken.Wrap(err)
	}
	role, err := access.ParseRole(c.Role)
	if err != nil {
		return nil, ErrInvalidToken.Wrap(err)
	}

	return &access.Actor{UserID: id, Role: role, Superuser: c.Superuser}, nil
}
