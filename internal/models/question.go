package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// MaxOptions is the number of letters available for option labels.
const MaxOptions = 26

// AnswerText is a stored answer. Clients sometimes send it as a bare number
// or boolean; those decode to their literal text.
type AnswerText string

func (a *AnswerText) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*a = ""
	case string:
		*a = AnswerText(t)
	case float64:
		*a = AnswerText(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*a = AnswerText(strconv.FormatBool(t))
	default:
		return fmt.Errorf("answer must be a string, number or boolean, got %T", v)
	}
	return nil
}

// Question is a generated multiple-choice item. Answer is either a single
// letter or the full text of one of the options.
type Question struct {
	Stem        string     `json:"stem"`
	Options     []string   `json:"options"`
	Answer      AnswerText `json:"answer"`
	Explanation string     `json:"explanation,omitempty"`
	Hint        string     `json:"hint,omitempty"`
}

// ── Request Types ────────────────────────────────────────

type Profile struct {
	LastAccuracy *float64 `json:"lastAccuracy,omitempty" validate:"omitnil,gte=0,lte=1"`
	AvgTimeSecs  *float64 `json:"avgTimeSecs,omitempty" validate:"omitnil,gte=0"`
}

type GenerateQuestionsRequest struct {
	Subject      string     `json:"subject" validate:"required,min=2"`
	Topic        string     `json:"topic" validate:"required,min=2"`
	Difficulty   Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	NumQuestions *int       `json:"numQuestions" validate:"omitnil,min=1,max=10"`
	Profile      *Profile   `json:"profile,omitempty"`
}

// Count returns the requested number of questions, applying the default.
func (r GenerateQuestionsRequest) Count() int {
	if r.NumQuestions == nil {
		return 5
	}
	return *r.NumQuestions
}

// RequestedDifficulty returns the requested tier, applying the default.
func (r GenerateQuestionsRequest) RequestedDifficulty() Difficulty {
	if r.Difficulty == "" {
		return DifficultyEasy
	}
	return r.Difficulty
}

// Accuracy returns the rolling accuracy signal, if the caller sent one.
func (r GenerateQuestionsRequest) Accuracy() *float64 {
	if r.Profile == nil {
		return nil
	}
	return r.Profile.LastAccuracy
}

type FeedbackRequest struct {
	Question   Question `json:"question"`
	UserAnswer any      `json:"userAnswer"`
	Context    any      `json:"context,omitempty"`
}

// ── Response Types ────────────────────────────────────────

type GenerateQuestionsResponse struct {
	Items     []Question `json:"items"`
	UsedModel string     `json:"usedModel"`
	Level     Difficulty `json:"level"`
}

type FeedbackResponse struct {
	Correctness bool   `json:"correctness"`
	Message     string `json:"message"`
	NextHint    string `json:"nextHint"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}
