package stats

import (
	"fmt"
	"sort"
	"time"
)

// Achievement is one unlocked badge. UnlockedAt carries the record's
// last-activity timestamp; the moment a threshold was first crossed is
// not tracked.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	UnlockedAt  *time.Time
}

// questionMilestones are the answered-question count badges.
var questionMilestones = []int{10, 50, 100, 250, 500, 1000, 2500}

// Achievements evaluates the fixed badge set against the current
// record, newest unlock first.
func (e *Engine) Achievements(userID string) ([]Achievement, error) {
	rec, err := e.store.Load(userID)
	if err != nil {
		return nil, err
	}

	st := rec.Statistics
	overview, err := e.Overview(userID)
	if err != nil {
		return nil, err
	}
	streaks := streaksOf(rec, e.now())

	unlockedAt := st.LastActivity
	var out []Achievement
	add := func(id, name, description, icon string) {
		out = append(out, Achievement{
			ID:          id,
			Name:        name,
			Description: description,
			Icon:        icon,
			UnlockedAt:  unlockedAt,
		})
	}

	for _, m := range questionMilestones {
		if st.TotalQuestions >= m {
			add(
				fmt.Sprintf("questions_%d", m),
				fmt.Sprintf("%d Questions", m),
				fmt.Sprintf("Answered %d questions", m),
				"📚",
			)
		}
	}

	// Accuracy badges need a minimum sample before they count.
	if overview.Accuracy >= 90 && overview.TotalQuestions >= 50 {
		add("accuracy_90", "Master", "90% accuracy over 50+ questions", "🏆")
	}
	if overview.Accuracy >= 80 && overview.TotalQuestions >= 100 {
		add("accuracy_80", "Expert", "80% accuracy over 100+ questions", "⭐")
	}

	if streaks.CurrentStreak >= 7 {
		add("streak_7", "Full Week", "7 consecutive days of study", "🔥")
	}
	if streaks.CurrentStreak >= 30 {
		add("streak_30", "Dedicated Month", "30 consecutive days of study", "💎")
	}

	totalHours := st.TotalTime / 3600
	if totalHours >= 10 {
		add("time_10h", "Dedication", "10 hours of study", "⏱️")
	}
	if totalHours >= 50 {
		add("time_50h", "Commitment", "50 hours of study", "📖")
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].UnlockedAt, out[j].UnlockedAt
		if ti == nil || tj == nil {
			return ti != nil
		}
		return ti.After(*tj)
	})
	return out, nil
}
