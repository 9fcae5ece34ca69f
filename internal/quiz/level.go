package quiz

import "github.com/adaptive-quiz/backend/internal/models"

const (
	hardAbove = 0.85
	easyBelow = 0.5
)

// SelectLevel picks the difficulty tier for a generation request. When a
// rolling accuracy is supplied it always overrides the requested tier:
// above 0.85 is hard, below 0.5 is easy, and the closed range between them
// (both bounds included) is medium.
func SelectLevel(requested models.Difficulty, accuracy *float64) models.Difficulty {
	if accuracy == nil {
		if requested == "" {
			return models.DifficultyEasy
		}
		return requested
	}

	switch a := *accuracy; {
	case a > hardAbove:
		return models.DifficultyHard
	case a < easyBelow:
		return models.DifficultyEasy
	default:
		return models.DifficultyMedium
	}
}
