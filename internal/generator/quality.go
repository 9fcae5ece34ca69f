package generator

import (
	"fmt"
	"strings"

	"github.com/adaptive-quiz/backend/internal/answer"
	"github.com/adaptive-quiz/backend/internal/models"
)

// CheckItems inspects generated items for structural problems. Items are
// returned to the caller regardless; the warnings only feed the log.
func CheckItems(items []models.Question) []string {
	var warnings []string

	for i, q := range items {
		qNum := i + 1

		if strings.TrimSpace(q.Stem) == "" {
			warnings = append(warnings, fmt.Sprintf("item %d: empty stem", qNum))
		}

		if n := len(q.Options); n < 2 || n > models.MaxOptions {
			warnings = append(warnings, fmt.Sprintf("item %d: expected 2-%d options, got %d", qNum, models.MaxOptions, n))
		}

		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				warnings = append(warnings, fmt.Sprintf("item %d: option %s is empty", qNum, answer.LetterFor(j)))
			}
		}

		if _, ok := answer.CorrectLetter(q); !ok {
			warnings = append(warnings, fmt.Sprintf("item %d: answer %q matches neither a letter nor an option", qNum, q.Answer))
		}
	}

	return warnings
}

// MockItems builds deterministic placeholder questions for use when no
// oracle is configured.
func MockItems(subject, topic string, count int) []models.Question {
	items := make([]models.Question, count)
	for i := range items {
		items[i] = models.Question{
			Stem:        fmt.Sprintf("Mock %s question #%d on %s?", subject, i+1, topic),
			Options:     []string{"A", "B", "C", "D"},
			Answer:      "A",
			Explanation: "This is mock data",
			Hint:        "Think about the basics",
		}
	}
	return items
}
