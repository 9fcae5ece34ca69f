package auth

import (
	"context"
	"errors"

	"github.com/adaptive-quiz/backend/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier checks a bearer token and returns the identity it asserts.
type Verifier interface {
	Verify(ctx context.Context, token string) (models.Identity, error)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by the auth middleware. Requests
// that never passed through it are treated as anonymous.
func IdentityFrom(ctx context.Context) models.Identity {
	if id, ok := ctx.Value(identityKey{}).(models.Identity); ok {
		return id
	}
	return models.Identity{UserID: models.AnonymousUserID}
}
