// Package stats derives dashboard metrics from a user's stored record.
// Every method is a pure function of the record at call time: nothing
// here caches between calls or mutates what it reads.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/medquiz/medquiz/internal/progress"
	"github.com/medquiz/medquiz/internal/questions"
)

// Engine computes statistics over records loaded from the progress
// store. names and provider may be nil; naming then degrades to raw
// module ids and per-type analysis reports nothing.
type Engine struct {
	store    *progress.Store
	names    questions.NameResolver
	provider questions.Provider
	now      func() time.Time
}

// New creates an Engine.
func New(store *progress.Store, names questions.NameResolver, provider questions.Provider) *Engine {
	return NewWithClock(store, names, provider, time.Now)
}

// NewWithClock creates an Engine with an injected clock, for tests.
func NewWithClock(store *progress.Store, names questions.NameResolver, provider questions.Provider, now func() time.Time) *Engine {
	return &Engine{store: store, names: names, provider: provider, now: now}
}

func (e *Engine) moduleName(moduleID string) string {
	if e.names == nil {
		return moduleID
	}
	return e.names.ResolveModuleName(moduleID)
}

// dateKey is the calendar-date portion of a timestamp, in UTC.
func dateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// Overview is the headline metric set.
type Overview struct {
	TotalQuestions   int
	TotalCorrect     int
	TotalIncorrect   int
	Accuracy         int // 0-100
	TotalSessions    int
	TotalTimeMinutes int
	CurrentStreak    int
	LongestStreak    int
	LastActivity     *time.Time
}

// Overview returns the headline metrics for a user.
func (e *Engine) Overview(userID string) (Overview, error) {
	rec, err := e.store.Load(userID)
	if err != nil {
		return Overview{}, err
	}

	st := rec.Statistics
	streaks := streaksOf(rec, e.now())
	return Overview{
		TotalQuestions:   st.TotalQuestions,
		TotalCorrect:     st.TotalCorrect,
		TotalIncorrect:   st.TotalIncorrect,
		Accuracy:         roundPct(st.TotalCorrect, st.TotalCorrect+st.TotalIncorrect),
		TotalSessions:    len(rec.Sessions),
		TotalTimeMinutes: int(math.Round(float64(st.TotalTime) / 60)),
		CurrentStreak:    streaks.CurrentStreak,
		LongestStreak:    streaks.LongestStreak,
		LastActivity:     st.LastActivity,
	}, nil
}

// DailyBucket aggregates one calendar day of recent activity.
type DailyBucket struct {
	Date      string // YYYY-MM-DD
	Sessions  int
	Correct   int
	Incorrect int
	TotalTime int
}

// RecentPerformance is the trailing 7-day series. Daily always has
// exactly 7 buckets, oldest first, empty days included.
type RecentPerformance struct {
	TotalSessions int
	Daily         []DailyBucket
	AverageScore  int
}

// RecentPerformance buckets the last 7 days of sessions by calendar
// date. AverageScore is the unweighted mean of session scores in the
// window, 0 when there are none.
func (e *Engine) RecentPerformance(userID string) (RecentPerformance, error) {
	rec, err := e.store.Load(userID)
	if err != nil {
		return RecentPerformance{}, err
	}

	today := e.now()
	index := make(map[string]int, 7)
	daily := make([]DailyBucket, 0, 7)
	for i := 6; i >= 0; i-- {
		key := dateKey(today.AddDate(0, 0, -i))
		index[key] = len(daily)
		daily = append(daily, DailyBucket{Date: key})
	}

	out := RecentPerformance{Daily: daily}
	scoreSum := 0
	for _, sess := range rec.Sessions {
		i, ok := index[dateKey(sess.CompletedAt)]
		if !ok {
			continue
		}
		b := &out.Daily[i]
		b.Sessions++
		b.Correct += sess.CorrectCount
		b.Incorrect += sess.IncorrectCount
		b.TotalTime += sess.TimeSpent
		out.TotalSessions++
		scoreSum += sess.Score
	}
	if out.TotalSessions > 0 {
		out.AverageScore = int(math.Round(float64(scoreSum) / float64(out.TotalSessions)))
	}
	return out, nil
}

// ModuleStats aggregates all sessions of one module.
type ModuleStats struct {
	ModuleID       string
	ModuleName     string
	Sessions       int
	TotalQuestions int
	CorrectCount   int
	IncorrectCount int
	TotalTime      int
	BestScore      int
	AverageScore   int
}

// ModuleBreakdown groups sessions by module, most-played first.
func (e *Engine) ModuleBreakdown(userID string) ([]ModuleStats, error) {
	rec, err := e.store.Load(userID)
	if err != nil {
		return nil, err
	}

	byModule := make(map[string]*ModuleStats)
	var order []string
	for _, sess := range rec.Sessions {
		ms, ok := byModule[sess.ModuleID]
		if !ok {
			ms = &ModuleStats{
				ModuleID:   sess.ModuleID,
				ModuleName: e.moduleName(sess.ModuleID),
			}
			byModule[sess.ModuleID] = ms
			order = append(order, sess.ModuleID)
		}
		ms.Sessions++
		ms.TotalQuestions += sess.TotalQuestions
		ms.CorrectCount += sess.CorrectCount
		ms.IncorrectCount += sess.IncorrectCount
		ms.TotalTime += sess.TimeSpent
		if sess.Score > ms.BestScore {
			ms.BestScore = sess.Score
		}
	}

	out := make([]ModuleStats, 0, len(order))
	for _, id := range order {
		ms := byModule[id]
		ms.AverageScore = roundPct(ms.CorrectCount, ms.TotalQuestions)
		out = append(out, *ms)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sessions > out[j].Sessions
	})
	return out, nil
}

// TimeAnalysis summarizes session durations.
type TimeAnalysis struct {
	AverageSessionTime     int // seconds
	FastestSession         int
	LongestSession         int
	TotalTimeMinutes       int
	AverageTimePerQuestion int
}

// TimeAnalysis computes duration aggregates across all sessions.
// All-zero when there are none.
func (e *Engine) TimeAnalysis(userID string) (TimeAnalysis, error) {
	rec, err := e.store.Load(userID)
	if err != nil {
		return TimeAnalysis{}, err
	}
	if len(rec.Sessions) == 0 {
		return TimeAnalysis{}, nil
	}

	totalTime, totalQuestions := 0, 0
	fastest, longest := rec.Sessions[0].TimeSpent, rec.Sessions[0].TimeSpent
	for _, sess := range rec.Sessions {
		totalTime += sess.TimeSpent
		totalQuestions += sess.TotalQuestions
		if sess.TimeSpent < fastest {
			fastest = sess.TimeSpent
		}
		if sess.TimeSpent > longest {
			longest = sess.TimeSpent
		}
	}

	ta := TimeAnalysis{
		AverageSessionTime: int(math.Round(float64(totalTime) / float64(len(rec.Sessions)))),
		FastestSession:     fastest,
		LongestSession:     longest,
		TotalTimeMinutes:   int(math.Round(float64(totalTime) / 60)),
	}
	if totalQuestions > 0 {
		ta.AverageTimePerQuestion = int(math.Round(float64(totalTime) / float64(totalQuestions)))
	}
	return ta, nil
}

// roundPct returns round(100 * part / whole), 0 when whole is 0.
func roundPct(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
