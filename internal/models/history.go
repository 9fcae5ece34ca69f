package models

import "time"

// Attempt is one graded answer submission. Attempts are append-only.
type Attempt struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	QuestionStem  string    `json:"question"`
	UserAnswer    string    `json:"userAnswer"`
	CorrectAnswer string    `json:"correctAnswer"`
	Correctness   bool      `json:"correctness"`
	CreatedAt     time.Time `json:"timestamp"`
}

type AttemptCounts struct {
	Attempts int
	Correct  int
}

type AnalyticsResponse struct {
	Attempts int     `json:"attempts"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

type AttemptListResponse struct {
	Attempts []Attempt `json:"attempts"`
	Limit    int       `json:"limit"`
}
