package stats

import (
	"sort"
	"time"

	"github.com/medquiz/medquiz/internal/progress"
)

// Streaks describes consecutive-day activity.
type Streaks struct {
	CurrentStreak   int
	LongestStreak   int
	TotalActiveDays int
	History         []string // last 30 active dates, ascending
}

// Streaks derives day-streak metrics from session completion dates.
// The current streak survives only while the most recent active day is
// today or yesterday; one fully skipped day breaks it.
func (e *Engine) Streaks(userID string) (Streaks, error) {
	rec, err := e.store.Load(userID)
	if err != nil {
		return Streaks{}, err
	}
	return streaksOf(rec, e.now()), nil
}

func streaksOf(rec *progress.UserRecord, now time.Time) Streaks {
	if len(rec.Sessions) == 0 {
		return Streaks{}
	}

	seen := make(map[string]bool)
	for _, sess := range rec.Sessions {
		seen[dateKey(sess.CompletedAt)] = true
	}
	days := make([]string, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Strings(days)

	longest, run := 0, 1
	for i := 1; i < len(days); i++ {
		if dayDiff(days[i-1], days[i]) == 1 {
			run++
			continue
		}
		if run > longest {
			longest = run
		}
		run = 1
	}
	if run > longest {
		longest = run
	}

	// The trailing run only counts as current while the streak is alive.
	current := 0
	last := days[len(days)-1]
	today := dateKey(now)
	yesterday := dateKey(now.AddDate(0, 0, -1))
	if last == today || last == yesterday {
		current = run
	}

	history := days
	if len(history) > 30 {
		history = history[len(history)-30:]
	}

	return Streaks{
		CurrentStreak:   current,
		LongestStreak:   longest,
		TotalActiveDays: len(days),
		History:         history,
	}
}

// dayDiff returns the whole-day gap between two YYYY-MM-DD keys.
func dayDiff(a, b string) int {
	ta, errA := time.Parse(time.DateOnly, a)
	tb, errB := time.Parse(time.DateOnly, b)
	if errA != nil || errB != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}
