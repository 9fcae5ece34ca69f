package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/adaptive-quiz/backend/internal/models"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

// AttemptStore persists graded feedback submissions.
type AttemptStore interface {
	RecordAttempt(ctx context.Context, a models.Attempt) (models.Attempt, error)
	CountAttempts(ctx context.Context, userID string) (models.AttemptCounts, error)
	ListAttempts(ctx context.Context, userID string, limit int) ([]models.Attempt, error)
}

// UserStore backs the local email/password identity mode.
type UserStore interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// SQLStore implements both stores over database/sql. Queries use $N
// placeholders, which lib/pq and modernc sqlite both accept.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}
