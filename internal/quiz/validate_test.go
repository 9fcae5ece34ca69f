package quiz

import (
	"errors"
	"strings"
	"testing"

	"github.com/adaptive-quiz/backend/internal/models"
)

func issuePaths(t *testing.T, err error) map[string]Issue {
	t.Helper()
	var vi *ValidationIssues
	if !errors.As(err, &vi) {
		t.Fatalf("expected *ValidationIssues, got %T (%v)", err, err)
	}
	out := make(map[string]Issue, len(vi.Issues))
	for _, is := range vi.Issues {
		out[strings.Join(is.Path, ".")] = is
	}
	return out
}

func TestDecodeGenerateRequest_Defaults(t *testing.T) {
	req, err := DecodeGenerateRequest(strings.NewReader(`{"subject":"Biology","topic":"Cells"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Count() != 5 {
		t.Errorf("Count() = %d, want 5", req.Count())
	}
	if req.RequestedDifficulty() != models.DifficultyEasy {
		t.Errorf("RequestedDifficulty() = %q, want easy", req.RequestedDifficulty())
	}
	if req.Accuracy() != nil {
		t.Errorf("Accuracy() = %v, want nil", *req.Accuracy())
	}
}

func TestDecodeGenerateRequest_FullBody(t *testing.T) {
	body := `{"subject":"Math","topic":"Fractions","difficulty":"hard","numQuestions":10,
		"profile":{"lastAccuracy":0.9,"avgTimeSecs":12.5}}`
	req, err := DecodeGenerateRequest(strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Count() != 10 || req.RequestedDifficulty() != models.DifficultyHard {
		t.Errorf("got count=%d difficulty=%q", req.Count(), req.RequestedDifficulty())
	}
	if a := req.Accuracy(); a == nil || *a != 0.9 {
		t.Errorf("Accuracy() = %v, want 0.9", a)
	}
}

func TestDecodeGenerateRequest_MissingSubject(t *testing.T) {
	_, err := DecodeGenerateRequest(strings.NewReader(`{"topic":"Cells"}`))
	issues := issuePaths(t, err)

	is, ok := issues["subject"]
	if !ok {
		t.Fatalf("expected an issue for subject, got %v", issues)
	}
	if !strings.Contains(is.Message, "subject") {
		t.Errorf("message %q should mention the field", is.Message)
	}
	if len(issues) != 1 {
		t.Errorf("expected only the subject issue, got %v", issues)
	}
}

func TestDecodeGenerateRequest_ListsEveryViolation(t *testing.T) {
	body := `{"subject":"B","topic":"","difficulty":"extreme","numQuestions":11,"profile":{"lastAccuracy":1.5,"avgTimeSecs":-1}}`
	_, err := DecodeGenerateRequest(strings.NewReader(body))
	issues := issuePaths(t, err)

	for _, path := range []string{"subject", "topic", "difficulty", "numQuestions", "profile.lastAccuracy", "profile.avgTimeSecs"} {
		if _, ok := issues[path]; !ok {
			t.Errorf("missing issue for %s (got %v)", path, issues)
		}
	}
	if issues["difficulty"].Code != "invalid_enum_value" {
		t.Errorf("difficulty code = %q", issues["difficulty"].Code)
	}
	if issues["numQuestions"].Code != "too_big" {
		t.Errorf("numQuestions code = %q", issues["numQuestions"].Code)
	}
}

func TestDecodeGenerateRequest_ZeroQuestionsRejected(t *testing.T) {
	_, err := DecodeGenerateRequest(strings.NewReader(`{"subject":"Art","topic":"Color","numQuestions":0}`))
	issues := issuePaths(t, err)
	if issues["numQuestions"].Code != "too_small" {
		t.Errorf("expected too_small for numQuestions, got %v", issues)
	}
}

func TestDecodeGenerateRequest_WrongType(t *testing.T) {
	_, err := DecodeGenerateRequest(strings.NewReader(`{"subject":"Art","topic":"Color","numQuestions":"five"}`))
	issues := issuePaths(t, err)
	is, ok := issues["numQuestions"]
	if !ok || is.Code != "invalid_type" {
		t.Errorf("expected invalid_type for numQuestions, got %v", issues)
	}
}

func TestDecodeGenerateRequest_EmptyAndMalformedBodies(t *testing.T) {
	_, err := DecodeGenerateRequest(strings.NewReader(""))
	issues := issuePaths(t, err)
	if _, ok := issues["subject"]; !ok {
		t.Errorf("empty body should report subject, got %v", issues)
	}
	if _, ok := issues["topic"]; !ok {
		t.Errorf("empty body should report topic, got %v", issues)
	}

	_, err = DecodeGenerateRequest(strings.NewReader("{not json"))
	issues = issuePaths(t, err)
	if issues[""].Code != "invalid_json" {
		t.Errorf("malformed body should yield invalid_json, got %v", issues)
	}
}

func TestDecodeGenerateRequest_ExplicitNullRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
	}{
		{"lastAccuracy", `{"subject":"Art","topic":"Color","profile":{"lastAccuracy":null}}`, "profile.lastAccuracy"},
		{"avgTimeSecs", `{"subject":"Art","topic":"Color","profile":{"avgTimeSecs":null}}`, "profile.avgTimeSecs"},
		{"profile", `{"subject":"Art","topic":"Color","profile":null}`, "profile"},
		{"numQuestions", `{"subject":"Art","topic":"Color","numQuestions":null}`, "numQuestions"},
		{"subject", `{"subject":null,"topic":"Color"}`, "subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeGenerateRequest(strings.NewReader(tt.body))
			issues := issuePaths(t, err)
			is, ok := issues[tt.path]
			if !ok {
				t.Fatalf("expected an issue for %s, got %v", tt.path, issues)
			}
			if is.Code != "invalid_type" || !strings.Contains(is.Message, "received null") {
				t.Errorf("issue = %+v", is)
			}
			if len(issues) != 1 {
				t.Errorf("expected a single issue, got %v", issues)
			}
		})
	}
}

func TestDecodeGenerateRequest_AbsentProfileFieldsAccepted(t *testing.T) {
	req, err := DecodeGenerateRequest(strings.NewReader(`{"subject":"Art","topic":"Color","profile":{}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Accuracy() != nil {
		t.Errorf("Accuracy() = %v, want nil", *req.Accuracy())
	}
}
