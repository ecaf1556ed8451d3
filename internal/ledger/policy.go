package ledger

import (
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

type AttemptInfo struct {
	MaxAttempts       int `json:"maxAttempts"`
	UsedAttempts      int `json:"usedAttempts"`
	RemainingAttempts int `json:"remainingAttempts"`
}

// EffectiveMaxAttempts coerces any stored maxAttempts value to a positive
// integer, falling back to 1.
func EffectiveMaxAttempts(v any) int {
	return models.CoerceMaxAttempts(v)
}

// AttemptInfoFor computes the attempt allowance of a quiz from a summary.
// It accepts a nil quiz and a nil summary.
func AttemptInfoFor(quiz *models.Quiz, summary Summary) AttemptInfo {
	maxAttempts := models.DefaultMaxAttempts
	used := 0
	if quiz != nil {
		maxAttempts = quiz.MaxAttempts.Effective()
		used = summary.Count(quiz.ID)
	}

	remaining := maxAttempts - used
	if remaining < 0 {
		remaining = 0
	}

	return AttemptInfo{
		MaxAttempts:       maxAttempts,
		UsedAttempts:      used,
		RemainingAttempts: remaining,
	}
}

// Startable reports whether a new attempt may begin.
func Startable(quiz *models.Quiz, info AttemptInfo) bool {
	if quiz == nil {
		return false
	}
	return info.RemainingAttempts > 0 && !quiz.IsLocked
}
