package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adaptive-quiz/backend/internal/models"
)

type localClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// LocalIdentity issues and verifies HS256 tokens for accounts kept in the
// attempt store. The subject is the numeric user id.
type LocalIdentity struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewLocalIdentity(secret string, ttl time.Duration) *LocalIdentity {
	return &LocalIdentity{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (l *LocalIdentity) IssueToken(user *models.User) (string, error) {
	now := l.now()
	claims := localClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(l.secret)
}

func (l *LocalIdentity) Verify(_ context.Context, tokenString string) (models.Identity, error) {
	var claims localClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return l.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return models.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return models.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
