package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
)

const authContextLocal = "auth_context"

type authContextKey struct{}

// AuthContext is the request-scoped result of a successful authorization.
type AuthContext struct {
	Identity domain.Identity
	RawToken string
}

// WithAuthContext returns ctx carrying ac. A nil ac marks the request as anonymous.
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, ac)
}

// FromContext returns the AuthContext bound to ctx, if any.
func FromContext(ctx context.Context) (*AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey{}).(*AuthContext)
	return ac, ok && ac != nil
}

// AuthContextFrom returns the AuthContext bound to the fiber request, if any.
func AuthContextFrom(c *fiber.Ctx) (*AuthContext, bool) {
	ac, ok := c.Locals(authContextLocal).(*AuthContext)
	return ac, ok && ac != nil
}

// IdentityFrom returns the authenticated identity of the fiber request.
func IdentityFrom(c *fiber.Ctx) (domain.Identity, bool) {
	ac, ok := AuthContextFrom(c)
	if !ok {
		return domain.Identity{}, false
	}
	return ac.Identity, true
}

// SubjectOf returns the bound subject or an empty string for anonymous requests.
func SubjectOf(c *fiber.Ctx) string {
	identity, _ := IdentityFrom(c)
	return identity.Subject
}

func bind(c *fiber.Ctx, ac *AuthContext) {
	c.Locals(authContextLocal, ac)
	c.SetUserContext(WithAuthContext(c.UserContext(), ac))
}
