package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/adaptive-quiz/backend/internal/models"
)

// ExtractionStage names the step at which recovering items from oracle text failed.
type ExtractionStage string

const (
	StageLocate ExtractionStage = "locate"
	StageDecode ExtractionStage = "decode"
)

var ErrNoJSONObject = errors.New("no JSON object found in response text")

// ExtractionError reports that oracle text could not be turned into items.
type ExtractionError struct {
	Stage ExtractionStage
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract items (%s): %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

type generatedBatch struct {
	Items []models.Question `json:"items"`
}

// ExtractJSONObject returns the substring from the first '{' through the
// last '}' of text. Prose or code fences around the object are discarded.
func ExtractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || end <= start {
		return "", ErrNoJSONObject
	}
	return text[start : end+1], nil
}

// ParseItems recovers the items array from oracle text. An object without
// an items field yields an empty, non-nil slice.
func ParseItems(text string) ([]models.Question, error) {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return nil, &ExtractionError{Stage: StageLocate, Err: err}
	}

	var batch generatedBatch
	if err := json.Unmarshal([]byte(obj), &batch); err != nil {
		return nil, &ExtractionError{Stage: StageDecode, Err: err}
	}

	if batch.Items == nil {
		return []models.Question{}, nil
	}
	return batch.Items, nil
}
