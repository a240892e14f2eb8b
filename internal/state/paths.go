package state

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/medquiz/medquiz/internal/questions"
)

// Path addresses one field (or subtree) of the state tree. Only the
// constants below are valid; free-form strings are not part of the API.
type Path string

const (
	PathUser              Path = "user"
	PathUserID            Path = "user.id"
	PathUserUsername      Path = "user.username"
	PathUserEmail         Path = "user.email"
	PathUserAuthenticated Path = "user.authenticated"

	PathSelection            Path = "selection"
	PathSelectionSpecialty   Path = "selection.specialty"
	PathSelectionSubcategory Path = "selection.subcategory"
	PathSelectionModule      Path = "selection.module"

	PathQuiz               Path = "quiz"
	PathQuizMode           Path = "quiz.mode"
	PathQuizQuestions      Path = "quiz.questions"
	PathQuizCurrentIndex   Path = "quiz.currentIndex"
	PathQuizStartTime      Path = "quiz.startTime"
	PathQuizElapsedSeconds Path = "quiz.elapsedSeconds"

	PathSession               Path = "session"
	PathSessionAnswers        Path = "session.answers"
	PathSessionConfirmed      Path = "session.confirmed"
	PathSessionStatuses       Path = "session.statuses"
	PathSessionCorrectCount   Path = "session.correctCount"
	PathSessionIncorrectCount Path = "session.incorrectCount"

	PathNavigation       Path = "navigation"
	PathNavigationScreen Path = "navigation.screen"
)

// ancestors returns the strict ancestor paths, most specific first.
func (p Path) ancestors() []Path {
	parts := strings.Split(string(p), ".")
	var out []Path
	for i := len(parts) - 1; i > 0; i-- {
		out = append(out, Path(strings.Join(parts[:i], ".")))
	}
	return out
}

// pathSpec binds a Path to its typed accessor pair. Getters return
// copies of map- and slice-valued fields so a returned value can never
// alias the live snapshot.
type pathSpec struct {
	get func(*Snapshot) any
	set func(*Snapshot, any) bool
}

func stringSpec(get func(*Snapshot) *string) pathSpec {
	return pathSpec{
		get: func(s *Snapshot) any { return *get(s) },
		set: func(s *Snapshot, v any) bool {
			sv, ok := v.(string)
			if ok {
				*get(s) = sv
			}
			return ok
		},
	}
}

func intSpec(get func(*Snapshot) *int) pathSpec {
	return pathSpec{
		get: func(s *Snapshot) any { return *get(s) },
		set: func(s *Snapshot, v any) bool {
			iv, ok := v.(int)
			if ok {
				*get(s) = iv
			}
			return ok
		},
	}
}

func boolSpec(get func(*Snapshot) *bool) pathSpec {
	return pathSpec{
		get: func(s *Snapshot) any { return *get(s) },
		set: func(s *Snapshot, v any) bool {
			bv, ok := v.(bool)
			if ok {
				*get(s) = bv
			}
			return ok
		},
	}
}

var pathSpecs = map[Path]pathSpec{
	PathUser: {
		get: func(s *Snapshot) any { return s.User },
		set: func(s *Snapshot, v any) bool {
			u, ok := v.(User)
			if ok {
				s.User = u
			}
			return ok
		},
	},
	PathUserID:       stringSpec(func(s *Snapshot) *string { return &s.User.ID }),
	PathUserUsername: stringSpec(func(s *Snapshot) *string { return &s.User.Username }),
	PathUserEmail:    stringSpec(func(s *Snapshot) *string { return &s.User.Email }),
	PathUserAuthenticated: boolSpec(func(s *Snapshot) *bool {
		return &s.User.Authenticated
	}),

	PathSelection: {
		get: func(s *Snapshot) any { return s.Selection },
		set: func(s *Snapshot, v any) bool {
			sel, ok := v.(Selection)
			if ok {
				s.Selection = sel
			}
			return ok
		},
	},
	PathSelectionSpecialty:   stringSpec(func(s *Snapshot) *string { return &s.Selection.Specialty }),
	PathSelectionSubcategory: stringSpec(func(s *Snapshot) *string { return &s.Selection.Subcategory }),
	PathSelectionModule:      stringSpec(func(s *Snapshot) *string { return &s.Selection.Module }),

	PathQuiz: {
		get: func(s *Snapshot) any {
			q := s.Quiz
			q.Questions = slices.Clone(q.Questions)
			return q
		},
		set: func(s *Snapshot, v any) bool {
			q, ok := v.(Quiz)
			if ok {
				q.Questions = slices.Clone(q.Questions)
				s.Quiz = q
			}
			return ok
		},
	},
	PathQuizMode: {
		get: func(s *Snapshot) any { return s.Quiz.Mode },
		set: func(s *Snapshot, v any) bool {
			m, ok := v.(Mode)
			if ok {
				s.Quiz.Mode = m
			}
			return ok
		},
	},
	PathQuizQuestions: {
		get: func(s *Snapshot) any { return slices.Clone(s.Quiz.Questions) },
		set: func(s *Snapshot, v any) bool {
			qs, ok := v.([]questions.Question)
			if ok {
				s.Quiz.Questions = slices.Clone(qs)
			}
			return ok
		},
	},
	PathQuizCurrentIndex: intSpec(func(s *Snapshot) *int { return &s.Quiz.CurrentIndex }),
	PathQuizStartTime: {
		get: func(s *Snapshot) any { return s.Quiz.StartTime },
		set: func(s *Snapshot, v any) bool {
			t, ok := v.(time.Time)
			if ok {
				s.Quiz.StartTime = t
			}
			return ok
		},
	},
	PathQuizElapsedSeconds: intSpec(func(s *Snapshot) *int { return &s.Quiz.ElapsedSeconds }),

	PathSession: {
		get: func(s *Snapshot) any {
			sess := s.Session
			sess.Answers = maps.Clone(sess.Answers)
			sess.Confirmed = maps.Clone(sess.Confirmed)
			sess.Statuses = maps.Clone(sess.Statuses)
			return sess
		},
		set: func(s *Snapshot, v any) bool {
			sess, ok := v.(Session)
			if ok {
				sess.Answers = maps.Clone(sess.Answers)
				sess.Confirmed = maps.Clone(sess.Confirmed)
				sess.Statuses = maps.Clone(sess.Statuses)
				s.Session = sess
			}
			return ok
		},
	},
	PathSessionAnswers: {
		get: func(s *Snapshot) any { return maps.Clone(s.Session.Answers) },
		set: func(s *Snapshot, v any) bool {
			m, ok := v.(map[int]int)
			if ok {
				s.Session.Answers = maps.Clone(m)
			}
			return ok
		},
	},
	PathSessionConfirmed: {
		get: func(s *Snapshot) any { return maps.Clone(s.Session.Confirmed) },
		set: func(s *Snapshot, v any) bool {
			m, ok := v.(map[int]bool)
			if ok {
				s.Session.Confirmed = maps.Clone(m)
			}
			return ok
		},
	},
	PathSessionStatuses: {
		get: func(s *Snapshot) any { return maps.Clone(s.Session.Statuses) },
		set: func(s *Snapshot, v any) bool {
			m, ok := v.(map[int]Status)
			if ok {
				s.Session.Statuses = maps.Clone(m)
			}
			return ok
		},
	},
	PathSessionCorrectCount:   intSpec(func(s *Snapshot) *int { return &s.Session.CorrectCount }),
	PathSessionIncorrectCount: intSpec(func(s *Snapshot) *int { return &s.Session.IncorrectCount }),

	PathNavigation: {
		get: func(s *Snapshot) any { return s.Navigation },
		set: func(s *Snapshot, v any) bool {
			n, ok := v.(Navigation)
			if ok {
				s.Navigation = n
			}
			return ok
		},
	},
	PathNavigationScreen: stringSpec(func(s *Snapshot) *string { return &s.Navigation.Screen }),
}
