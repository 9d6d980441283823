// Package identity turns a bearer token into the caller of a request.
// Users are owned by the identity service; this package only reads them.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
)

type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

type Resolver struct {
	Verifier Verifier
	Users    UserLookup
}

// Resolve authenticates an Authorization header value. Every failure wraps
// domain.ErrUnauthenticated except lookup errors, which are internal.
func (r *Resolver) Resolve(ctx context.Context, authorization string) (domain.Caller, error) {
	token, err := extractToken(authorization)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	sub, err := r.Verifier.Subject(token)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	u, err := r.Users.GetUserByID(ctx, sub)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("failed to load caller: %w", err)
	}
	if u == nil {
		return domain.Caller{}, fmt.Errorf("%w: unknown subject", domain.ErrUnauthenticated)
	}

	return domain.Caller{ID: u.ID, Handle: u.Handle, Profile: u.Profile}, nil
}

func extractToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("%w: invalid token format", ErrInvalidToken)
	}
	return parts[1], nil
}
