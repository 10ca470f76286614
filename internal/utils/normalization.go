package utils

import (
	"strings"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

// NormalizeDifficulty maps model spellings ("easy", " HARD ") onto the
// canonical labels. Anything else becomes Medium.
func NormalizeDifficulty(difficulty string) string {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy":
		return models.DifficultyEasy
	case "hard":
		return models.DifficultyHard
	}
	return models.DifficultyMedium
}

// NormalizeLetter returns the upper-cased option letter, stripping
// decorations such as "B)" or "(c)".
func NormalizeLetter(letter string) string {
	l := strings.Trim(strings.TrimSpace(letter), "().: ")
	return strings.ToUpper(l)
}

func NormalizeCategory(category string) string {
	return strings.Join(strings.Fields(category), " ")
}
