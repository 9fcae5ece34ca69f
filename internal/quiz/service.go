package quiz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/adaptive-quiz/backend/internal/answer"
	"github.com/adaptive-quiz/backend/internal/avail"
	"github.com/adaptive-quiz/backend/internal/generator"
	"github.com/adaptive-quiz/backend/internal/metrics"
	"github.com/adaptive-quiz/backend/internal/models"
	"github.com/adaptive-quiz/backend/internal/store"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

var ErrHistoryUnavailable = errors.New("attempt history not available")

type Service struct {
	generator *generator.Generator
	attempts  avail.Handle[store.AttemptStore]
	persist   bool
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewService(gen *generator.Generator, attempts avail.Handle[store.AttemptStore], persist bool, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		generator: gen,
		attempts:  attempts,
		persist:   persist,
		logger:    logger,
		metrics:   m,
	}
}

func (s *Service) GenerateQuestions(ctx context.Context, req models.GenerateQuestionsRequest) (*models.GenerateQuestionsResponse, error) {
	level := SelectLevel(req.RequestedDifficulty(), req.Accuracy())

	res, err := s.generator.Generate(ctx, generator.Request{
		Subject: req.Subject,
		Topic:   req.Topic,
		Level:   level,
		Count:   req.Count(),
	})
	if err != nil {
		return nil, err
	}

	return &models.GenerateQuestionsResponse{
		Items:     res.Items,
		UsedModel: res.UsedModel,
		Level:     level,
	}, nil
}

// Feedback grades a submission and, when history is enabled, appends it to
// the caller's attempts. A persistence failure never changes the verdict.
func (s *Service) Feedback(ctx context.Context, id models.Identity, req models.FeedbackRequest) models.FeedbackResponse {
	v := answer.Grade(req.Question, req.UserAnswer)
	s.metrics.AnswersGraded.WithLabelValues(strconv.FormatBool(v.Correct)).Inc()

	if !v.Resolved {
		s.logger.Warn("stored answer does not resolve to an option",
			zap.String("answer", string(req.Question.Answer)),
			zap.Int("options", len(req.Question.Options)),
		)
	}

	s.recordAttempt(ctx, id, req.Question, v)

	if v.Correct {
		return models.FeedbackResponse{Correctness: true, Message: "Correct! Great job.", NextHint: "Try a harder one."}
	}
	return models.FeedbackResponse{Correctness: false, Message: "Not quite. Check the explanation.", NextHint: "Review the key concept."}
}

func (s *Service) recordAttempt(ctx context.Context, id models.Identity, q models.Question, v answer.Verdict) {
	if !s.persist {
		return
	}
	st, ok := s.attempts.Get()
	if !ok {
		s.metrics.AttemptsRecorded.WithLabelValues("skipped").Inc()
		return
	}
	// An attempt needs a question and a submitted option letter.
	if strings.TrimSpace(q.Stem) == "" || answer.IndexOf(v.UserLetter) < 0 {
		s.metrics.AttemptsRecorded.WithLabelValues("skipped").Inc()
		s.logger.Debug("submission not recorded",
			zap.String("uid", id.UserID),
			zap.Bool("has_stem", strings.TrimSpace(q.Stem) != ""),
			zap.String("user_letter", v.UserLetter),
		)
		return
	}

	_, err := st.RecordAttempt(ctx, models.Attempt{
		UserID:        id.UserID,
		QuestionStem:  q.Stem,
		UserAnswer:    v.UserLetter,
		CorrectAnswer: v.CorrectLetter,
		Correctness:   v.Correct,
	})
	if err != nil {
		s.metrics.AttemptsRecorded.WithLabelValues("error").Inc()
		s.logger.Error("failed to record attempt", zap.String("uid", id.UserID), zap.Error(err))
		return
	}
	s.metrics.AttemptsRecorded.WithLabelValues("ok").Inc()
}

// Analytics aggregates the caller's attempts. Accuracy is a percentage
// rounded to two decimals, zero when there are no attempts.
func (s *Service) Analytics(ctx context.Context, userID string) (models.AnalyticsResponse, error) {
	st, ok := s.attempts.Get()
	if !ok {
		return models.AnalyticsResponse{}, ErrHistoryUnavailable
	}

	counts, err := st.CountAttempts(ctx, userID)
	if err != nil {
		return models.AnalyticsResponse{}, fmt.Errorf("analytics: %w", err)
	}

	return models.AnalyticsResponse{
		Attempts: counts.Attempts,
		Correct:  counts.Correct,
		Accuracy: Accuracy(counts),
	}, nil
}

func Accuracy(c models.AttemptCounts) float64 {
	if c.Attempts == 0 {
		return 0
	}
	pct := float64(c.Correct) / float64(c.Attempts) * 100
	return math.Round(pct*100) / 100
}

// ListAttempts returns the caller's most recent attempts. limit is clamped
// to [1, MaxHistoryLimit].
func (s *Service) ListAttempts(ctx context.Context, userID string, limit int) ([]models.Attempt, error) {
	st, ok := s.attempts.Get()
	if !ok {
		return nil, ErrHistoryUnavailable
	}
	return st.ListAttempts(ctx, userID, ClampLimit(limit))
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}
