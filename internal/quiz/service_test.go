package quiz

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/adaptive-quiz/backend/internal/avail"
	"github.com/adaptive-quiz/backend/internal/generator"
	"github.com/adaptive-quiz/backend/internal/metrics"
	"github.com/adaptive-quiz/backend/internal/models"
	"github.com/adaptive-quiz/backend/internal/store"
)

type memStore struct {
	mu       sync.Mutex
	attempts []models.Attempt
	err      error
}

func (m *memStore) RecordAttempt(_ context.Context, a models.Attempt) (models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.Attempt{}, m.err
	}
	m.attempts = append(m.attempts, a)
	return a, nil
}

func (m *memStore) CountAttempts(_ context.Context, userID string) (models.AttemptCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.AttemptCounts{}, m.err
	}
	var c models.AttemptCounts
	for _, a := range m.attempts {
		if a.UserID != userID {
			continue
		}
		c.Attempts++
		if a.Correctness {
			c.Correct++
		}
	}
	return c, nil
}

func (m *memStore) ListAttempts(_ context.Context, userID string, limit int) ([]models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Attempt{}
	for i := len(m.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if m.attempts[i].UserID == userID {
			out = append(out, m.attempts[i])
		}
	}
	return out, nil
}

type fakeLLM struct {
	content string
	err     error
	prompt  string
}

func (f *fakeLLM) Generate(_ context.Context, _ string, userPrompt string) (*generator.LLMResponse, error) {
	f.prompt = userPrompt
	if f.err != nil {
		return nil, f.err
	}
	return &generator.LLMResponse{Content: f.content}, nil
}

type fixture struct {
	service *Service
	store   *memStore
	metrics *metrics.Metrics
}

func newFixture(llm generator.LLMClient, st *memStore, persist bool) fixture {
	m := metrics.NewUnregistered()
	llmHandle := avail.Unavailable[generator.LLMClient]("no key")
	if llm != nil {
		llmHandle = avail.Ready(llm)
	}
	storeHandle := avail.Unavailable[store.AttemptStore]("no database")
	if st != nil {
		storeHandle = avail.Ready[store.AttemptStore](st)
	}
	gen := generator.NewGenerator(llmHandle, "test-model", zap.NewNop(), m)
	return fixture{
		service: NewService(gen, storeHandle, persist, zap.NewNop(), m),
		store:   st,
		metrics: m,
	}
}

func intPtr(n int) *int { return &n }

func TestGenerateQuestions_MockMode(t *testing.T) {
	f := newFixture(nil, nil, true)
	resp, err := f.service.GenerateQuestions(context.Background(), models.GenerateQuestionsRequest{
		Subject: "Physics", Topic: "Optics", NumQuestions: intPtr(3),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 3 || resp.UsedModel != "mock" || resp.Level != models.DifficultyEasy {
		t.Errorf("got %d items model=%q level=%q", len(resp.Items), resp.UsedModel, resp.Level)
	}
	for i, q := range resp.Items {
		if q.Answer != "A" || len(q.Options) != 4 {
			t.Errorf("item %d not a mock item: %+v", i, q)
		}
	}
}

func TestGenerateQuestions_AccuracyOverridesDifficulty(t *testing.T) {
	llm := &fakeLLM{content: `{"items":[]}`}
	f := newFixture(llm, nil, true)

	resp, err := f.service.GenerateQuestions(context.Background(), models.GenerateQuestionsRequest{
		Subject: "Physics", Topic: "Optics", Difficulty: models.DifficultyEasy,
		Profile: &models.Profile{LastAccuracy: ptr(0.9)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Level != models.DifficultyHard {
		t.Errorf("level = %q, want hard", resp.Level)
	}
	if resp.UsedModel != "test-model" {
		t.Errorf("usedModel = %q", resp.UsedModel)
	}
	if want := "Generate 5 multiple-choice questions"; !strings.Contains(llm.prompt, want) || !strings.Contains(llm.prompt, "hard difficulty") {
		t.Errorf("prompt does not carry count and level: %s", llm.prompt)
	}
}

func TestGenerateQuestions_OracleFailure(t *testing.T) {
	f := newFixture(&fakeLLM{err: errors.New("connection refused")}, nil, true)
	_, err := f.service.GenerateQuestions(context.Background(), models.GenerateQuestionsRequest{Subject: "Physics", Topic: "Optics"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestFeedback_GradesAndPersists(t *testing.T) {
	st := &memStore{}
	f := newFixture(nil, st, true)
	id := models.Identity{UserID: "u1"}
	q := models.Question{Stem: "Capital of France?", Options: []string{"Berlin", "Madrid", "Paris", "Rome"}, Answer: "Paris"}

	resp := f.service.Feedback(context.Background(), id, models.FeedbackRequest{Question: q, UserAnswer: "c"})
	if !resp.Correctness || resp.Message != "Correct! Great job." || resp.NextHint != "Try a harder one." {
		t.Errorf("unexpected response %+v", resp)
	}

	resp = f.service.Feedback(context.Background(), id, models.FeedbackRequest{Question: q, UserAnswer: "A"})
	if resp.Correctness || resp.Message != "Not quite. Check the explanation." || resp.NextHint != "Review the key concept." {
		t.Errorf("unexpected response %+v", resp)
	}

	if len(st.attempts) != 2 {
		t.Fatalf("expected 2 recorded attempts, got %d", len(st.attempts))
	}
	first := st.attempts[0]
	if first.UserID != "u1" || first.QuestionStem != q.Stem || first.UserAnswer != "C" || first.CorrectAnswer != "C" || !first.Correctness {
		t.Errorf("unexpected attempt %+v", first)
	}
	if got := testutil.ToFloat64(f.metrics.AttemptsRecorded.WithLabelValues("ok")); got != 2 {
		t.Errorf("recorded counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(f.metrics.AnswersGraded.WithLabelValues("true")); got != 1 {
		t.Errorf("graded(true) counter = %v, want 1", got)
	}
}

func TestFeedback_PersistenceFailureDoesNotChangeVerdict(t *testing.T) {
	st := &memStore{err: errors.New("disk full")}
	f := newFixture(nil, st, true)
	q := models.Question{Stem: "2+2?", Options: []string{"3", "4"}, Answer: "B"}

	resp := f.service.Feedback(context.Background(), models.Identity{UserID: "u1"}, models.FeedbackRequest{Question: q, UserAnswer: "B"})
	if !resp.Correctness {
		t.Error("grading must not depend on persistence")
	}
	if got := testutil.ToFloat64(f.metrics.AttemptsRecorded.WithLabelValues("error")); got != 1 {
		t.Errorf("error counter = %v, want 1", got)
	}
}

func TestFeedback_PersistDisabled(t *testing.T) {
	st := &memStore{}
	f := newFixture(nil, st, false)
	f.service.Feedback(context.Background(), models.Identity{UserID: "u1"}, models.FeedbackRequest{
		Question: models.Question{Options: []string{"x", "y"}, Answer: "A"}, UserAnswer: "A",
	})
	if len(st.attempts) != 0 {
		t.Errorf("expected nothing recorded, got %d", len(st.attempts))
	}
}

func TestFeedback_MalformedInputNeverCorrect(t *testing.T) {
	f := newFixture(nil, nil, true)
	tests := []struct {
		name string
		req  models.FeedbackRequest
	}{
		{"no question", models.FeedbackRequest{UserAnswer: "A"}},
		{"full text answer without options", models.FeedbackRequest{Question: models.Question{Answer: "Paris"}, UserAnswer: "P"}},
		{"answer not among options", models.FeedbackRequest{Question: models.Question{Options: []string{"a", "b"}, Answer: "Zebra"}, UserAnswer: "Z"}},
		{"no user answer", models.FeedbackRequest{Question: models.Question{Options: []string{"a", "b"}, Answer: "A"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := f.service.Feedback(context.Background(), models.Identity{UserID: "u"}, tt.req); resp.Correctness {
				t.Error("expected incorrect")
			}
		})
	}
}

func TestFeedback_IncompleteSubmissionsNotRecorded(t *testing.T) {
	st := &memStore{}
	f := newFixture(nil, st, true)
	id := models.Identity{UserID: "u1"}
	q := models.Question{Stem: "Capital of France?", Options: []string{"Berlin", "Madrid", "Paris", "Rome"}, Answer: "C"}

	tests := []struct {
		name string
		req  models.FeedbackRequest
	}{
		{"empty body", models.FeedbackRequest{}},
		{"no stem", models.FeedbackRequest{Question: models.Question{Options: q.Options, Answer: "C"}, UserAnswer: "C"}},
		{"blank stem", models.FeedbackRequest{Question: models.Question{Stem: "  ", Options: q.Options, Answer: "C"}, UserAnswer: "C"}},
		{"no user answer", models.FeedbackRequest{Question: q}},
		{"numeric user answer", models.FeedbackRequest{Question: q, UserAnswer: float64(1)}},
		{"blank user answer", models.FeedbackRequest{Question: q, UserAnswer: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := f.service.Feedback(context.Background(), id, tt.req); resp.Correctness {
				t.Error("expected incorrect")
			}
		})
	}

	if len(st.attempts) != 0 {
		t.Errorf("expected nothing recorded, got %+v", st.attempts)
	}
	if got := testutil.ToFloat64(f.metrics.AttemptsRecorded.WithLabelValues("skipped")); got != float64(len(tests)) {
		t.Errorf("skipped counter = %v, want %d", got, len(tests))
	}

	f.service.Feedback(context.Background(), id, models.FeedbackRequest{Question: q, UserAnswer: "c"})
	counts, _ := st.CountAttempts(context.Background(), "u1")
	if counts.Attempts != 1 || counts.Correct != 1 {
		t.Errorf("counts = %+v, want one correct attempt", counts)
	}
}

func TestAnalytics(t *testing.T) {
	st := &memStore{attempts: []models.Attempt{
		{UserID: "u1", Correctness: true},
		{UserID: "u1", Correctness: false},
		{UserID: "u1", Correctness: true},
		{UserID: "u2", Correctness: true},
	}}
	f := newFixture(nil, st, true)

	resp, err := f.service.Analytics(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Attempts != 3 || resp.Correct != 2 || resp.Accuracy != 66.67 {
		t.Errorf("got %+v, want 3/2/66.67", resp)
	}

	resp, err = f.service.Analytics(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != (models.AnalyticsResponse{}) {
		t.Errorf("expected zeros, got %+v", resp)
	}
}

func TestAnalytics_StoreUnavailable(t *testing.T) {
	f := newFixture(nil, nil, true)
	if _, err := f.service.Analytics(context.Background(), "u1"); !errors.Is(err, ErrHistoryUnavailable) {
		t.Errorf("expected ErrHistoryUnavailable, got %v", err)
	}
	if _, err := f.service.ListAttempts(context.Background(), "u1", 5); !errors.Is(err, ErrHistoryUnavailable) {
		t.Errorf("expected ErrHistoryUnavailable, got %v", err)
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		attempts, correct int
		want              float64
	}{
		{0, 0, 0},
		{1, 1, 100},
		{3, 1, 33.33},
		{3, 2, 66.67},
		{8, 1, 12.5},
		{7, 0, 0},
	}
	for _, tt := range tests {
		if got := Accuracy(models.AttemptCounts{Attempts: tt.attempts, Correct: tt.correct}); got != tt.want {
			t.Errorf("Accuracy(%d/%d) = %v, want %v", tt.correct, tt.attempts, got, tt.want)
		}
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultHistoryLimit},
		{-3, DefaultHistoryLimit},
		{1, 1},
		{100, 100},
		{500, MaxHistoryLimit},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

var errBoom = errors.New("boom")

// staticVerifier accepts any non-empty token and uses it as the user id.
type staticVerifier struct{}

func (staticVerifier) Verify(_ context.Context, token string) (models.Identity, error) {
	return models.Identity{UserID: token}, nil
}
