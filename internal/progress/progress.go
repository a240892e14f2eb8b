package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/medquiz/medquiz/internal/store"
)

// Key layout in the medium. Everything the app owns carries the prefix,
// so a full wipe is a prefix scan.
const (
	keyPrefix     = "medquiz_"
	userKeyPrefix = keyPrefix + "user_"
	usersListKey  = keyPrefix + "users"
	activeUserKey = keyPrefix + "activeUser"
)

func userKey(userID string) string {
	return userKeyPrefix + userID
}

// Store is the progress store: the single writer of per-user records
// over a KV medium. All operations are synchronous.
type Store struct {
	kv  store.KV
	now func() time.Time
}

// New creates a Store over the given medium.
func New(kv store.KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// NewWithClock creates a Store with an injected clock, for tests.
func NewWithClock(kv store.KV, now func() time.Time) *Store {
	return &Store{kv: kv, now: now}
}

// Load returns the record for userID. A missing record, or one that
// fails structural validation, yields a fresh empty record; corrupt
// data is discarded, not repaired.
func (s *Store) Load(userID string) (*UserRecord, error) {
	raw, ok, err := s.kv.Get(userKey(userID))
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	if !ok {
		return emptyRecord(userID, s.now()), nil
	}

	var rec UserRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return emptyRecord(userID, s.now()), nil
	}
	if err := rec.validate(); err != nil {
		return emptyRecord(userID, s.now()), nil
	}
	return &rec, nil
}

// Save persists the full record with LastUpdated refreshed. When the
// medium reports capacity exhaustion, a single best-effort cleanup pass
// runs and the failure is still returned; the save is not retried.
func (s *Store) Save(userID string, rec *UserRecord) error {
	err := s.save(userID, rec)
	if errors.Is(err, store.ErrCapacity) {
		s.CleanOldData()
	}
	return err
}

func (s *Store) save(userID string, rec *UserRecord) error {
	rec.LastUpdated = s.now()
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal user %s: %w", userID, err)
	}
	if err := s.kv.Set(userKey(userID), string(raw)); err != nil {
		return fmt.Errorf("save user %s: %w", userID, err)
	}
	return nil
}

// RecordAnswer increments the counters for one question slot and the
// rolling aggregates, in the same save. This is the sole mutator of
// per-question counters.
func (s *Store) RecordAnswer(userID, moduleID string, questionIndex int, isCorrect bool) (QuestionProgress, error) {
	rec, err := s.Load(userID)
	if err != nil {
		return QuestionProgress{}, err
	}

	if rec.Progress[moduleID] == nil {
		rec.Progress[moduleID] = make(map[string]QuestionProgress)
	}

	key := QuestionKey(moduleID, questionIndex)
	qp := rec.Progress[moduleID][key]
	qp.Seen++
	if isCorrect {
		qp.Correct++
		rec.Statistics.TotalCorrect++
	} else {
		qp.Incorrect++
		rec.Statistics.TotalIncorrect++
	}
	now := s.now()
	qp.LastSeen = &now
	rec.Progress[moduleID][key] = qp

	rec.Statistics.TotalQuestions++
	rec.Statistics.LastActivity = &now

	if err := s.Save(userID, rec); err != nil {
		return QuestionProgress{}, err
	}
	return qp, nil
}

// SessionInput is the caller-supplied part of a session record.
type SessionInput struct {
	ModuleID       string
	Mode           string
	CorrectCount   int
	IncorrectCount int
	TotalQuestions int
	TimeSpent      int // seconds
}

// RecordSession appends a completed session, adds its duration to the
// aggregate, and truncates history to the most recent MaxSessions.
func (s *Store) RecordSession(userID string, in SessionInput) (SessionRecord, error) {
	rec, err := s.Load(userID)
	if err != nil {
		return SessionRecord{}, err
	}

	sess := SessionRecord{
		ModuleID:       in.ModuleID,
		Mode:           in.Mode,
		CorrectCount:   in.CorrectCount,
		IncorrectCount: in.IncorrectCount,
		TotalQuestions: in.TotalQuestions,
		TimeSpent:      in.TimeSpent,
		Score:          percent(in.CorrectCount, in.TotalQuestions),
		CompletedAt:    s.now(),
	}

	rec.Sessions = append(rec.Sessions, sess)
	rec.Statistics.TotalTime += in.TimeSpent

	if len(rec.Sessions) > MaxSessions {
		rec.Sessions = rec.Sessions[len(rec.Sessions)-MaxSessions:]
	}

	if err := s.Save(userID, rec); err != nil {
		return SessionRecord{}, err
	}
	return sess, nil
}

// SavePosition stores the resume position for a module.
func (s *Store) SavePosition(userID, moduleID string, questionIndex int) error {
	rec, err := s.Load(userID)
	if err != nil {
		return err
	}
	rec.LastModule = moduleID
	rec.LastQuestionIndex = questionIndex
	return s.Save(userID, rec)
}

// Position is a saved resume point within a module.
type Position struct {
	QuestionIndex int
	HasPosition   bool
}

// GetPosition returns the saved position for moduleID. A position saved
// for a different module does not count, regardless of its index.
func (s *Store) GetPosition(userID, moduleID string) (Position, error) {
	rec, err := s.Load(userID)
	if err != nil {
		return Position{}, err
	}
	if rec.LastModule == moduleID {
		return Position{QuestionIndex: rec.LastQuestionIndex, HasPosition: true}, nil
	}
	return Position{}, nil
}

// ModuleProgress summarizes coverage of one module's question slots.
type ModuleProgress struct {
	Seen              int
	Correct           int
	Total             int
	SeenPercentage    int
	CorrectPercentage int
}

// ModuleProgressFor counts, over slots [0, totalQuestions), how many
// were ever seen and how many were ever answered correctly at least
// once. This deliberately measures lifetime coverage, not whether the
// most recent answer was correct.
func (s *Store) ModuleProgressFor(userID, moduleID string, totalQuestions int) (ModuleProgress, error) {
	rec, err := s.Load(userID)
	if err != nil {
		return ModuleProgress{}, err
	}

	mod := rec.Progress[moduleID]
	mp := ModuleProgress{Total: totalQuestions}
	for i := 0; i < totalQuestions; i++ {
		qp, ok := mod[QuestionKey(moduleID, i)]
		if !ok {
			continue
		}
		if qp.Seen > 0 {
			mp.Seen++
		}
		if qp.Correct > 0 {
			mp.Correct++
		}
	}
	mp.SeenPercentage = percent(mp.Seen, totalQuestions)
	mp.CorrectPercentage = percent(mp.Correct, totalQuestions)
	return mp, nil
}

// SessionHistory returns the most recent limit sessions, newest first.
func (s *Store) SessionHistory(userID string, limit int) ([]SessionRecord, error) {
	rec, err := s.Load(userID)
	if err != nil {
		return nil, err
	}

	n := len(rec.Sessions)
	if limit > n {
		limit = n
	}
	out := make([]SessionRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, rec.Sessions[i])
	}
	return out, nil
}

// UserSummary is the rolling aggregate plus a few cheap derivations.
type UserSummary struct {
	Statistics
	TotalSessions  int
	AverageScore   int
	RecentSessions int // sessions completed in the last 7 days
}

// Summary returns the aggregate view for one user.
func (s *Store) Summary(userID string) (UserSummary, error) {
	rec, err := s.Load(userID)
	if err != nil {
		return UserSummary{}, err
	}

	sum := UserSummary{
		Statistics:    rec.Statistics,
		TotalSessions: len(rec.Sessions),
	}
	if n := len(rec.Sessions); n > 0 {
		total := 0
		for _, sess := range rec.Sessions {
			total += sess.Score
		}
		sum.AverageScore = int(math.Round(float64(total) / float64(n)))
	}
	cutoff := s.now().AddDate(0, 0, -7)
	for _, sess := range rec.Sessions {
		if !sess.CompletedAt.Before(cutoff) {
			sum.RecentSessions++
		}
	}
	return sum, nil
}

// CleanOldData drops sessions older than six months for every known
// user. Best effort: individual failures are skipped.
func (s *Store) CleanOldData() {
	users, err := s.ListUsers()
	if err != nil {
		return
	}
	cutoff := s.now().AddDate(0, -6, 0)

	for _, u := range users {
		rec, err := s.Load(u.ID)
		if err != nil {
			continue
		}
		kept := rec.Sessions[:0]
		for _, sess := range rec.Sessions {
			if !sess.CompletedAt.Before(cutoff) {
				kept = append(kept, sess)
			}
		}
		if len(kept) == len(rec.Sessions) {
			continue
		}
		rec.Sessions = kept
		// Plain save here: a second cleanup pass would loop.
		_ = s.save(u.ID, rec)
	}
}

// ClearAll removes every app-owned key from the medium.
func (s *Store) ClearAll() error {
	keys, err := s.kv.Keys()
	if err != nil {
		return fmt.Errorf("clear all: %w", err)
	}
	for _, k := range keys {
		if len(k) >= len(keyPrefix) && k[:len(keyPrefix)] == keyPrefix {
			if err := s.kv.Remove(k); err != nil {
				return fmt.Errorf("clear all: %w", err)
			}
		}
	}
	return nil
}

// percent returns round(100 * part / whole), 0 when whole is 0.
func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
