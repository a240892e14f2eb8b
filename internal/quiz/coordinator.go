// Package quiz orchestrates one quiz attempt: loading questions,
// driving the state container while answering, and writing through the
// progress store on each answer and at completion.
package quiz

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medquiz/medquiz/internal/progress"
	"github.com/medquiz/medquiz/internal/questions"
	"github.com/medquiz/medquiz/internal/state"
)

// ErrNoSession reports an Answer or Finish call with no active attempt.
var ErrNoSession = errors.New("quiz: no active session")

// ResumePrompt decides whether to resume from a saved question index.
// A nil prompt always starts from the beginning.
type ResumePrompt func(savedIndex int) bool

// Coordinator runs quiz attempts against a state container and a
// progress store. One coordinator runs at most one elapsed-time ticker;
// starting a new attempt stops any previous one first.
type Coordinator struct {
	state    *state.Container
	store    *progress.Store
	provider questions.Provider
	now      func() time.Time

	// ResumePrompt is consulted when a saved position with a non-zero
	// index exists for the starting module.
	ResumePrompt ResumePrompt

	mu        sync.Mutex
	sessionID string
	stopTick  chan struct{}
}

// New creates a Coordinator.
func New(st *state.Container, store *progress.Store, provider questions.Provider) *Coordinator {
	return NewWithClock(st, store, provider, time.Now)
}

// NewWithClock creates a Coordinator with an injected clock, for tests.
func NewWithClock(st *state.Container, store *progress.Store, provider questions.Provider, now func() time.Time) *Coordinator {
	return &Coordinator{state: st, store: store, provider: provider, now: now}
}

// Start begins an attempt at moduleID. Provider failures abort the
// whole operation. A saved position for this exact module with a
// non-zero index is offered through ResumePrompt; declined or absent
// positions start at question 0.
func (c *Coordinator) Start(moduleID string, mode state.Mode) error {
	if c.provider == nil {
		return fmt.Errorf("start module %s: %w", moduleID, questions.ErrNotFound)
	}
	qs, err := c.provider.LoadQuestions(moduleID)
	if err != nil {
		return fmt.Errorf("start module %s: %w", moduleID, err)
	}

	userID := c.state.Current().User.ID

	startIndex := 0
	pos, err := c.store.GetPosition(userID, moduleID)
	if err == nil && pos.HasPosition && pos.QuestionIndex > 0 {
		if c.ResumePrompt != nil && c.ResumePrompt(pos.QuestionIndex) {
			startIndex = pos.QuestionIndex
		}
	}

	if err := c.state.ResetQuizSession(); err != nil {
		return err
	}
	if err := c.state.Apply([]state.Update{
		{Path: state.PathSelectionModule, Value: moduleID},
		{Path: state.PathQuizMode, Value: mode},
		{Path: state.PathQuizQuestions, Value: qs},
		{Path: state.PathQuizCurrentIndex, Value: startIndex},
		{Path: state.PathQuizStartTime, Value: c.now()},
		{Path: state.PathQuizElapsedSeconds, Value: 0},
	}); err != nil {
		return err
	}

	c.mu.Lock()
	c.sessionID = uuid.New().String()
	c.mu.Unlock()

	c.startTicker()
	return nil
}

// Answer records the selection for one question: session state first,
// then the durable counters and resume position. Persistence failures
// are returned but never roll back the in-memory session; the attempt
// continues regardless.
func (c *Coordinator) Answer(questionIndex, selectedOption int, isCorrect bool) error {
	snap := c.state.Current()
	if len(snap.Quiz.Questions) == 0 {
		return ErrNoSession
	}

	answers := snap.Session.Answers
	answers[questionIndex] = selectedOption
	statuses := snap.Session.Statuses
	statuses[questionIndex] = state.StatusAnswered

	updates := []state.Update{
		{Path: state.PathSessionAnswers, Value: answers},
		{Path: state.PathSessionStatuses, Value: statuses},
	}
	if snap.Quiz.Mode == state.ModeMentor {
		confirmed := snap.Session.Confirmed
		confirmed[questionIndex] = true
		updates = append(updates, state.Update{Path: state.PathSessionConfirmed, Value: confirmed})
	}
	if err := c.state.Apply(updates); err != nil {
		return err
	}

	userID := snap.User.ID
	moduleID := snap.Selection.Module
	if _, err := c.store.RecordAnswer(userID, moduleID, questionIndex, isCorrect); err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	if err := c.store.SavePosition(userID, moduleID, questionIndex); err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

// Result summarizes a finished attempt.
type Result struct {
	CorrectCount   int
	IncorrectCount int
	TotalQuestions int
	TimeSpent      int // seconds
	Score          int
}

// Finish ends the attempt: stops the ticker, recomputes the counts from
// the stored answers against each question's correct option, records
// the session, and resets the saved position to the module's start.
// Unanswered questions count toward neither tally.
func (c *Coordinator) Finish() (Result, error) {
	c.stopTicker()

	snap := c.state.Current()
	if len(snap.Quiz.Questions) == 0 || snap.Quiz.StartTime.IsZero() {
		return Result{}, ErrNoSession
	}

	correct, incorrect := 0, 0
	for i, q := range snap.Quiz.Questions {
		sel, ok := snap.Session.Answers[i]
		if !ok {
			continue
		}
		if sel == q.CorrectOptionIndex {
			correct++
		} else {
			incorrect++
		}
	}

	timeSpent := int(c.now().Sub(snap.Quiz.StartTime).Seconds())
	userID := snap.User.ID
	moduleID := snap.Selection.Module

	sess, err := c.store.RecordSession(userID, progress.SessionInput{
		ModuleID:       moduleID,
		Mode:           string(snap.Quiz.Mode),
		CorrectCount:   correct,
		IncorrectCount: incorrect,
		TotalQuestions: len(snap.Quiz.Questions),
		TimeSpent:      timeSpent,
	})
	if err != nil {
		return Result{}, err
	}

	if err := c.state.Apply([]state.Update{
		{Path: state.PathSessionCorrectCount, Value: correct},
		{Path: state.PathSessionIncorrectCount, Value: incorrect},
	}); err != nil {
		return Result{}, err
	}

	// Index 0 marks the attempt complete; the module stays recorded so
	// GetPosition reports an explicit zero-progress position.
	if err := c.store.SavePosition(userID, moduleID, 0); err != nil {
		return Result{}, err
	}

	return Result{
		CorrectCount:   correct,
		IncorrectCount: incorrect,
		TotalQuestions: sess.TotalQuestions,
		TimeSpent:      timeSpent,
		Score:          sess.Score,
	}, nil
}

// SessionID returns the id of the current attempt, empty when none.
func (c *Coordinator) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// startTicker begins incrementing quiz.elapsedSeconds once per second,
// replacing any ticker already running.
func (c *Coordinator) startTicker() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTickLocked()
	stop := make(chan struct{})
	c.stopTick = stop

	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				elapsed, _ := c.state.Get(state.PathQuizElapsedSeconds).(int)
				_ = c.state.Set(state.PathQuizElapsedSeconds, elapsed+1)
			}
		}
	}()
}

func (c *Coordinator) stopTicker() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTickLocked()
}

func (c *Coordinator) stopTickLocked() {
	if c.stopTick != nil {
		close(c.stopTick)
		c.stopTick = nil
	}
}
