package stats

import (
	"math"
	"sort"
)

// EvolutionPoint is the daily mean score within a trailing window.
type EvolutionPoint struct {
	Date         string // YYYY-MM-DD
	AverageScore int
	Sessions     int
	Questions    int
}

// EvolutionSeries buckets the trailing windowDays of sessions by
// calendar date and averages each day's scores, ascending by date.
// Days with no sessions produce no point.
func (e *Engine) EvolutionSeries(userID string, windowDays int) ([]EvolutionPoint, error) {
	rec, err := e.store.Load(userID)
	if err != nil {
		return nil, err
	}

	start := e.now().AddDate(0, 0, -windowDays)
	type bucket struct {
		scoreSum  int
		sessions  int
		questions int
	}
	buckets := make(map[string]*bucket)
	for _, sess := range rec.Sessions {
		if sess.CompletedAt.Before(start) {
			continue
		}
		key := dateKey(sess.CompletedAt)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.scoreSum += sess.Score
		b.sessions++
		b.questions += sess.TotalQuestions
	}

	out := make([]EvolutionPoint, 0, len(buckets))
	for date, b := range buckets {
		out = append(out, EvolutionPoint{
			Date:         date,
			AverageScore: int(math.Round(float64(b.scoreSum) / float64(b.sessions))),
			Sessions:     b.sessions,
			Questions:    b.questions,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Dashboard bundles every section a rendering layer needs, each built
// by one synchronous call.
type Dashboard struct {
	Overview          Overview
	RecentPerformance RecentPerformance
	ModuleBreakdown   []ModuleStats
	TimeAnalysis      TimeAnalysis
	Streaks           Streaks
	ProblemQuestions  []ProblemQuestion
	Achievements      []Achievement
}

// Dashboard assembles the full statistics view for one user.
func (e *Engine) Dashboard(userID string) (Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.Overview, err = e.Overview(userID); err != nil {
		return d, err
	}
	if d.RecentPerformance, err = e.RecentPerformance(userID); err != nil {
		return d, err
	}
	if d.ModuleBreakdown, err = e.ModuleBreakdown(userID); err != nil {
		return d, err
	}
	if d.TimeAnalysis, err = e.TimeAnalysis(userID); err != nil {
		return d, err
	}
	if d.Streaks, err = e.Streaks(userID); err != nil {
		return d, err
	}
	if d.ProblemQuestions, err = e.ProblemQuestions(userID); err != nil {
		return d, err
	}
	if d.Achievements, err = e.Achievements(userID); err != nil {
		return d, err
	}
	return d, nil
}
