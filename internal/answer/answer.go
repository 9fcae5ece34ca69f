package answer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/adaptive-quiz/backend/internal/models"
)

// defaultOptionCount applies when a question arrives without its options.
const defaultOptionCount = 4

// Normalize reduces an answer token to its canonical letter: the first
// character of the trimmed, upper-cased text. Absent or empty values
// normalize to "".
func Normalize(token any) string {
	var s string
	switch v := token.(type) {
	case nil:
		return ""
	case string:
		s = v
	case bool:
		if !v {
			return ""
		}
		s = "true"
	case float64:
		if v == 0 {
			return ""
		}
		s = fmt.Sprint(v)
	default:
		s = fmt.Sprint(v)
	}

	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}

// LetterFor maps a zero-based option index to its label: 0 → "A", 1 → "B".
func LetterFor(index int) string {
	return string(rune('A' + index))
}

// IndexOf is the inverse of LetterFor; it returns -1 for anything that is not
// a single upper-case letter.
func IndexOf(letter string) int {
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return -1
	}
	return int(letter[0] - 'A')
}

func optionCount(q models.Question) int {
	n := len(q.Options)
	if n == 0 {
		return defaultOptionCount
	}
	if n > models.MaxOptions {
		return models.MaxOptions
	}
	return n
}

// CorrectLetter resolves the question's stored answer to a canonical letter.
//
// A stored answer that is a single letter within the option range is taken
// as-is. Anything else is matched as full option text (trimmed, case
// insensitive), first match wins. When neither applies the normalized
// stored answer is returned with ok=false and the question cannot be
// answered correctly.
func CorrectLetter(q models.Question) (letter string, ok bool) {
	stored := strings.TrimSpace(string(q.Answer))
	n := optionCount(q)

	if utf8.RuneCountInString(stored) == 1 {
		letter = Normalize(stored)
		if idx := IndexOf(letter); idx >= 0 && idx < n {
			return letter, true
		}
	}

	for i, opt := range q.Options {
		if i >= models.MaxOptions {
			break
		}
		if stored != "" && strings.EqualFold(strings.TrimSpace(opt), stored) {
			return LetterFor(i), true
		}
	}

	return Normalize(string(q.Answer)), false
}

// Verdict is the outcome of grading one submission.
type Verdict struct {
	UserLetter    string
	CorrectLetter string
	Resolved      bool
	Correct       bool
}

// Grade compares the submitted token against the question's canonical
// letter. Equality is exact; an unresolvable stored answer never matches.
func Grade(q models.Question, userAnswer any) Verdict {
	user := Normalize(userAnswer)
	correct, ok := CorrectLetter(q)
	return Verdict{
		UserLetter:    user,
		CorrectLetter: correct,
		Resolved:      ok,
		Correct:       ok && user != "" && user == correct,
	}
}
