// Package progress owns the durable per-user record of quiz activity:
// per-question counters, session history, rolling aggregates, and the
// user directory. It is the only writer of persisted records.
package progress

import (
	"errors"
	"fmt"
	"time"
)

// ErrValidation reports a stored record that failed structural checks.
// Such records are discarded and replaced, never repaired.
var ErrValidation = errors.New("progress: invalid stored record")

// QuestionProgress is the lifetime counter set for one question.
// Seen always equals Correct + Incorrect.
type QuestionProgress struct {
	Seen      int        `json:"seen"`
	Correct   int        `json:"correct"`
	Incorrect int        `json:"incorrect"`
	LastSeen  *time.Time `json:"lastSeen"`
}

// SessionRecord summarizes one completed attempt at a module.
// Records are append-only; they are never mutated after being stored.
type SessionRecord struct {
	ModuleID       string    `json:"moduleId"`
	Mode           string    `json:"mode"`
	CorrectCount   int       `json:"correctCount"`
	IncorrectCount int       `json:"incorrectCount"`
	TotalQuestions int       `json:"totalQuestions"`
	TimeSpent      int       `json:"timeSpent"` // seconds
	Score          int       `json:"score"`     // 0-100
	CompletedAt    time.Time `json:"completedAt"`
}

// Statistics is the rolling aggregate maintained alongside the
// per-question counters, so coarse dashboards avoid rescanning
// sessions. TotalQuestions always equals the sum of Seen across all
// QuestionProgress entries.
type Statistics struct {
	TotalQuestions int        `json:"totalQuestions"`
	TotalCorrect   int        `json:"totalCorrect"`
	TotalIncorrect int        `json:"totalIncorrect"`
	TotalTime      int        `json:"totalTime"` // seconds
	LastActivity   *time.Time `json:"lastActivity"`
	StreakDays     int        `json:"streakDays"`
	LongestStreak  int        `json:"longestStreak"`
}

// UserRecord is the full persisted state for one user.
type UserRecord struct {
	UserID string `json:"userId"`

	// Progress maps module id -> question key -> counters.
	Progress map[string]map[string]QuestionProgress `json:"progress"`

	// Sessions is chronological and capped at MaxSessions entries;
	// the oldest are evicted first.
	Sessions []SessionRecord `json:"sessions"`

	Statistics Statistics `json:"statistics"`

	// Resume position: the most recent module and question index,
	// overwritten on every answer. An empty LastModule means none.
	LastModule        string `json:"lastModule"`
	LastQuestionIndex int    `json:"lastQuestionIndex"`

	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// MaxSessions caps the stored session history.
const MaxSessions = 100

// QuestionKey builds the identity of a question slot within a module.
func QuestionKey(moduleID string, questionIndex int) string {
	return fmt.Sprintf("%s_%d", moduleID, questionIndex)
}

func emptyRecord(userID string, now time.Time) *UserRecord {
	return &UserRecord{
		UserID:    userID,
		Progress:  make(map[string]map[string]QuestionProgress),
		Sessions:  []SessionRecord{},
		CreatedAt: now,
	}
}

// validate runs the structural checks a stored record must pass.
func (r *UserRecord) validate() error {
	if r.UserID == "" {
		return fmt.Errorf("%w: missing userId", ErrValidation)
	}
	if r.Progress == nil {
		return fmt.Errorf("%w: missing progress", ErrValidation)
	}
	return nil
}
