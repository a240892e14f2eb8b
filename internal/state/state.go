// Package state holds the application state tree: a copy-on-write
// snapshot with path-addressed access and subscriber notification.
// Every screen reads and writes through a single Container.
package state

import (
	"maps"
	"slices"
	"time"

	"github.com/medquiz/medquiz/internal/questions"
)

// Mode selects how a quiz attempt behaves.
type Mode string

const (
	// ModeQuiz hides feedback until the attempt is finished.
	ModeQuiz Mode = "quiz"
	// ModeMentor reveals the explanation after each confirmed answer.
	ModeMentor Mode = "mentor"
)

// Status is the per-question answer state within the current session.
type Status string

const (
	StatusUnanswered Status = "unanswered"
	StatusCurrent    Status = "current"
	StatusAnswered   Status = "answered"
)

// User is the authenticated-user subtree.
type User struct {
	ID            string
	Username      string
	Email         string
	Authenticated bool
}

// Selection is the current content selection subtree.
type Selection struct {
	Specialty   string
	Subcategory string
	Module      string
}

// Quiz is the current quiz attempt subtree.
type Quiz struct {
	Mode           Mode
	Questions      []questions.Question
	CurrentIndex   int
	StartTime      time.Time
	ElapsedSeconds int
}

// Session tracks the in-progress answers of the current attempt.
type Session struct {
	Answers        map[int]int  // question index -> selected option
	Confirmed      map[int]bool // mentor mode confirmations
	Statuses       map[int]Status
	CorrectCount   int
	IncorrectCount int
}

// Navigation is the current screen subtree.
type Navigation struct {
	Screen string
}

// Snapshot is one immutable version of the full state tree. Snapshots
// held by subscribers stay valid after later Sets; every mutation
// produces a fresh Snapshot.
type Snapshot struct {
	User       User
	Selection  Selection
	Quiz       Quiz
	Session    Session
	Navigation Navigation
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Quiz: Quiz{Mode: ModeQuiz},
		Session: Session{
			Answers:   map[int]int{},
			Confirmed: map[int]bool{},
			Statuses:  map[int]Status{},
		},
		Navigation: Navigation{Screen: "login"},
	}
}

// clone produces an independent copy: maps and slices are duplicated so
// writes to the copy never reach the original.
func (s *Snapshot) clone() *Snapshot {
	c := *s
	c.Quiz.Questions = slices.Clone(s.Quiz.Questions)
	c.Session.Answers = maps.Clone(s.Session.Answers)
	c.Session.Confirmed = maps.Clone(s.Session.Confirmed)
	c.Session.Statuses = maps.Clone(s.Session.Statuses)
	return &c
}
