package generator

import (
	"fmt"

	"github.com/adaptive-quiz/backend/internal/models"
)

const systemPrompt = `You write multiple-choice quiz questions for students.
Every question has exactly one correct option. Explanations are one or two sentences.
Hints point toward the concept without giving the answer away.
Respond with JSON only. No markdown, no commentary.`

var levelGuidance = map[models.Difficulty]string{
	models.DifficultyEasy:   "Easy questions check recall of a single fact or definition.",
	models.DifficultyMedium: "Medium questions require applying a concept to a short scenario.",
	models.DifficultyHard:   "Hard questions combine two or more concepts or require multi-step reasoning.",
}

func SystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt produces the instruction for one batch. The answer is
// requested as a single uppercase letter, but the caller must still cope
// with full option text coming back.
func BuildUserPrompt(req Request) string {
	prompt := fmt.Sprintf(`Generate %d multiple-choice questions for the subject %q on the topic %q at a %s difficulty.
Return ONLY a single, valid JSON object that matches this exact structure:
{ "items": [{ "stem": "...", "options": ["...","...","...","..."], "answer": "A", "explanation": "...", "hint": "..." }] }
Important: The "answer" field MUST be only a single uppercase letter: "A", "B", "C", or "D".`,
		req.Count, req.Subject, req.Topic, req.Level)

	if g, ok := levelGuidance[req.Level]; ok {
		prompt += "\n" + g
	}
	return prompt
}
