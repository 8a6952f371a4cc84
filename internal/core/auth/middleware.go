package auth

import (
	"strings"

	"parcel-ledger/internal/core/access"

	"github.com/gofiber/fiber/v2"
)

const actorLocalsKey = "actor"

// Middleware resolves the bearer token into an actor stored in the request locals.
// Requests without an Authorization header continue anonymously; the services decide
// whether anonymous access is allowed. A present but invalid token is rejected.
func Middleware(issuer *Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return ErrInvalidToken.WithMessage("authorization header must be 'Bearer <token>'")
		}

		actor, err := issuer.Verify(strings.TrimSpace(token))
		if err != nil {
			return err
		}

		c.Locals(actorLocalsKey, actor)
		return c.Next()
	}
}

// RequireActor rejects anonymous requests before any handler binds the body.
// It must run after Middleware.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ActorFrom(c) == nil {
			return access.ErrUnauthenticated
		}
		return c.Next()
	}
}

// ActorFrom returns the authenticated actor, or nil for anonymous requests.
func ActorFrom(c *fiber.Ctx) *access.Actor {
	actor, _ := c.Locals(actorLocalsKey).(*access.Actor)
	return actor
}

// WithActor stores an actor in the request locals. Used by tests and internal callers.
func WithActor(c *fiber.Ctx, actor *access.Actor) {
	c.Locals(actorLocalsKey, actor)
}
