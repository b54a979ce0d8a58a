package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/store"
)

// Guard resolves bearer tokens to users and checks roles.
type Guard struct {
	tokens *TokenService
	users  UserStore
}

func NewGuard(tokens *TokenService, users UserStore) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate returns the user named by the bearer token in header. A
// missing header, a bad or expired token and a token for a user that no
// longer exists all produce ErrUnauthenticated.
func (g *Guard) Authenticate(ctx context.Context, header string) (*models.User, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, ErrUnauthenticated
	}

	username, err := g.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	u, err := g.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return u, nil
}

// Authorize runs Authenticate and then requires the given role.
func (g *Guard) Authorize(ctx context.Context, header string, role models.Role) (*models.User, error) {
	u, err := g.Authenticate(ctx, header)
	if err != nil {
		return nil, err
	}
	if err := RequireRole(u, role); err != nil {
		return nil, err
	}
	return u, nil
}

// RequireRole returns ErrForbidden unless u holds role.
func RequireRole(u *models.User, role models.Role) error {
	if u == nil || u.Role != role {
		return ErrForbidden
	}
	return nil
}

type ctxKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	return u, ok && u != nil
}
