package store

import (
	"context"
	"fmt"
	"time"

	"github.com/adaptive-quiz/backend/internal/models"
	"github.com/google/uuid"
)

// RecordAttempt appends a. The id and timestamp are assigned here; any
// values the caller set are ignored.
func (s *SQLStore) RecordAttempt(ctx context.Context, a models.Attempt) (models.Attempt, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = s.now().UTC().Truncate(time.Millisecond)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, user_id, question, user_answer, correct_answer, correctness, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.UserID, a.QuestionStem, a.UserAnswer, a.CorrectAnswer, a.Correctness, a.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return models.Attempt{}, fmt.Errorf("record attempt: %w", err)
	}
	return a, nil
}

func (s *SQLStore) CountAttempts(ctx context.Context, userID string) (models.AttemptCounts, error) {
	var counts models.AttemptCounts
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN correctness THEN 1 ELSE 0 END), 0)
		 FROM attempts WHERE user_id = $1`,
		userID,
	).Scan(&counts.Attempts, &counts.Correct)
	if err != nil {
		return models.AttemptCounts{}, fmt.Errorf("count attempts: %w", err)
	}
	return counts, nil
}

// ListAttempts returns the user's most recent attempts, newest first.
func (s *SQLStore) ListAttempts(ctx context.Context, userID string, limit int) ([]models.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, question, user_answer, correct_answer, correctness, created_at
		 FROM attempts WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	attempts := []models.Attempt{}
	for rows.Next() {
		var a models.Attempt
		var createdMs int64
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuestionStem, &a.UserAnswer, &a.CorrectAnswer, &a.Correctness, &createdMs); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.CreatedAt = time.UnixMilli(createdMs).UTC()
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
