package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adaptive-quiz/backend/internal/models"
)

func (s *SQLStore) CreateUser(ctx context.Context, email, name, passwordHash string) (*models.User, error) {
	user := models.User{Email: email, Name: name, CreatedAt: s.now().UTC().Truncate(time.Millisecond)}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, name, password, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		email, name, passwordHash, user.CreatedAt.UnixMilli(),
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail includes the password hash for credential checks.
func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, email, name, password, created_at FROM users WHERE email = $1`, email)
}

func (s *SQLStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, email, name, password, created_at FROM users WHERE id = $1`, id)
}

func (s *SQLStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	var createdMs int64
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.Name, &user.Password, &createdMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &user, nil
}

// postgres reports "duplicate key", sqlite "UNIQUE constraint failed"
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
