package quiz

import (
	"errors"
	"testing"
	"time"

	"github.com/medquiz/medquiz/internal/progress"
	"github.com/medquiz/medquiz/internal/questions"
	"github.com/medquiz/medquiz/internal/state"
	"github.com/medquiz/medquiz/internal/store"
)

var day0 = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type stubProvider map[string][]questions.Question

func (p stubProvider) LoadQuestions(moduleID string) ([]questions.Question, error) {
	qs, ok := p[moduleID]
	if !ok {
		return nil, questions.ErrNotFound
	}
	return qs, nil
}

func threeQuestions() []questions.Question {
	return []questions.Question{
		{Text: "q1", Options: []string{"a", "b"}, CorrectOptionIndex: 0},
		{Text: "q2", Options: []string{"a", "b", "c"}, CorrectOptionIndex: 2},
		{Text: "q3", Options: []string{"a", "b"}, CorrectOptionIndex: 1},
	}
}

type harness struct {
	now   time.Time
	state *state.Container
	store *progress.Store
	coord *Coordinator
}

func newHarness(t *testing.T, provider questions.Provider) *harness {
	t.Helper()
	h := &harness{now: day0}
	clock := func() time.Time { return h.now }
	h.state = state.New()
	h.store = progress.NewWithClock(store.NewMem(), clock)
	h.coord = NewWithClock(h.state, h.store, provider, clock)
	if err := h.state.Login(state.User{ID: "u1", Username: "ana", Email: "a@b.c"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	t.Cleanup(func() { h.coord.stopTicker() })
	return h
}

func TestStartLoadsQuestionsIntoState(t *testing.T) {
	h := newHarness(t, stubProvider{"m1": threeQuestions()})

	if err := h.coord.Start("m1", state.ModeQuiz); err != nil {
		t.Fatalf("start: %v", err)
	}

	snap := h.state.Current()
	if snap.Selection.Module != "m1" {
		t.Errorf("selection.module = %q", snap.Selection.Module)
	}
	if len(snap.Quiz.Questions) != 3 || snap.Quiz.CurrentIndex != 0 {
		t.Errorf("quiz = %+v", snap.Quiz)
	}
	if !snap.Quiz.StartTime.Equal(day0) {
		t.Errorf("startTime = %v", snap.Quiz.StartTime)
	}
	if h.coord.SessionID() == "" {
		t.Error("no session id after start")
	}
}

func TestStartUnknownModuleAborts(t *testing.T) {
	h := newHarness(t, stubProvider{})

	err := h.coord.Start("ghost", state.ModeQuiz)
	if !errors.Is(err, questions.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(h.state.Current().Quiz.Questions) != 0 {
		t.Error("failed start touched the session")
	}
}

func TestStartNilProvider(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.coord.Start("m1", state.ModeQuiz); !errors.Is(err, questions.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStartResumePrompt(t *testing.T) {
	tests := []struct {
		name       string
		savedIndex int
		accept     bool
		promptRuns bool
		wantIndex  int
	}{
		{"accepted resume", 2, true, true, 2},
		{"declined resume", 2, false, true, 0},
		{"index zero skips the prompt", 0, false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, stubProvider{"m1": threeQuestions()})
			if err := h.store.SavePosition("u1", "m1", tt.savedIndex); err != nil {
				t.Fatal(err)
			}

			prompted := false
			h.coord.ResumePrompt = func(savedIndex int) bool {
				prompted = true
				if savedIndex != tt.savedIndex {
					t.Errorf("prompt saw index %d, want %d", savedIndex, tt.savedIndex)
				}
				return tt.accept
			}

			if err := h.coord.Start("m1", state.ModeQuiz); err != nil {
				t.Fatalf("start: %v", err)
			}
			if prompted != tt.promptRuns {
				t.Errorf("prompted = %v, want %v", prompted, tt.promptRuns)
			}
			if got := h.state.Current().Quiz.CurrentIndex; got != tt.wantIndex {
				t.Errorf("currentIndex = %d, want %d", got, tt.wantIndex)
			}
		})
	}
}

func TestStartOtherModulePositionIgnored(t *testing.T) {
	h := newHarness(t, stubProvider{"m1": threeQuestions(), "m2": threeQuestions()})
	if err := h.store.SavePosition("u1", "m2", 2); err != nil {
		t.Fatal(err)
	}

	h.coord.ResumePrompt = func(int) bool {
		t.Error("prompt ran for a position saved on another module")
		return true
	}
	if err := h.coord.Start("m1", state.ModeQuiz); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestAnswerWithoutSession(t *testing.T) {
	h := newHarness(t, stubProvider{})
	if err := h.coord.Answer(0, 1, false); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestFinishWithoutSession(t *testing.T) {
	h := newHarness(t, stubProvider{})
	if _, err := h.coord.Finish(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestAnswerUpdatesStateAndStore(t *testing.T) {
	h := newHarness(t, stubProvider{"m1": threeQuestions()})
	if err := h.coord.Start("m1", state.ModeQuiz); err != nil {
		t.Fatal(err)
	}

	if err := h.coord.Answer(1, 2, true); err != nil {
		t.Fatalf("answer: %v", err)
	}

	snap := h.state.Current()
	if snap.Session.Answers[1] != 2 {
		t.Errorf("answers = %v", snap.Session.Answers)
	}
	if snap.Session.Statuses[1] != state.StatusAnswered {
		t.Errorf("statuses = %v", snap.Session.Statuses)
	}
	if len(snap.Session.Confirmed) != 0 {
		t.Errorf("quiz mode should not confirm: %v", snap.Session.Confirmed)
	}

	rec, err := h.store.Load("u1")
	if err != nil {
		t.Fatal(err)
	}
	qp := rec.Progress["m1"][progress.QuestionKey("m1", 1)]
	if qp.Seen != 1 || qp.Correct != 1 {
		t.Errorf("stored counters = %+v", qp)
	}
	pos, _ := h.store.GetPosition("u1", "m1")
	if !pos.HasPosition || pos.QuestionIndex != 1 {
		t.Errorf("position = %+v", pos)
	}
}

func TestAnswerMentorModeConfirms(t *testing.T) {
	h := newHarness(t, stubProvider{"m1": threeQuestions()})
	if err := h.coord.Start("m1", state.ModeMentor); err != nil {
		t.Fatal(err)
	}

	if err := h.coord.Answer(0, 0, true); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !h.state.Current().Session.Confirmed[0] {
		t.Error("mentor answer not confirmed")
	}
}

func TestFullAttempt(t *testing.T) {
	h := newHarness(t, stubProvider{"m1": threeQuestions()})
	if err := h.coord.Start("m1", state.ModeQuiz); err != nil {
		t.Fatal(err)
	}

	// Correct answers are 0, 2, 1: get the first two right, miss the last.
	for _, a := range []struct {
		idx, sel int
		correct  bool
	}{{0, 0, true}, {1, 2, true}, {2, 0, false}} {
		if err := h.coord.Answer(a.idx, a.sel, a.correct); err != nil {
			t.Fatalf("answer %d: %v", a.idx, err)
		}
	}

	h.now = day0.Add(95 * time.Second)
	res, err := h.coord.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	want := Result{CorrectCount: 2, IncorrectCount: 1, TotalQuestions: 3, TimeSpent: 95, Score: 67}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}

	snap := h.state.Current()
	if snap.Session.CorrectCount != 2 || snap.Session.IncorrectCount != 1 {
		t.Errorf("session counts = %+v", snap.Session)
	}

	sessions, err := h.store.SessionHistory("u1", 1)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("history: %v %v", sessions, err)
	}
	got := sessions[0]
	if got.ModuleID != "m1" || got.Mode != "quiz" || got.Score != 67 || got.TimeSpent != 95 {
		t.Errorf("stored session = %+v", got)
	}

	// Finishing parks the position at the module start.
	pos, _ := h.store.GetPosition("u1", "m1")
	if !pos.HasPosition || pos.QuestionIndex != 0 {
		t.Errorf("position after finish = %+v", pos)
	}
}

func TestFinishIgnoresUnanswered(t *testing.T) {
	h := newHarness(t, stubProvider{"m1": threeQuestions()})
	if err := h.coord.Start("m1", state.ModeQuiz); err != nil {
		t.Fatal(err)
	}
	if err := h.coord.Answer(0, 0, true); err != nil {
		t.Fatal(err)
	}

	res, err := h.coord.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if res.CorrectCount != 1 || res.IncorrectCount != 0 || res.TotalQuestions != 3 {
		t.Errorf("result = %+v, want 1 correct of 3 with none wrong", res)
	}
	if res.Score != 33 {
		t.Errorf("score = %d, want 33", res.Score)
	}
}

func TestFinishRecomputesFromStoredAnswers(t *testing.T) {
	h := newHarness(t, stubProvider{"m1": threeQuestions()})
	if err := h.coord.Start("m1", state.ModeQuiz); err != nil {
		t.Fatal(err)
	}

	// The caller's correctness flag is advisory; the tally comes from
	// comparing stored selections with each question's correct option.
	if err := h.coord.Answer(0, 1, true); err != nil { // selection 1 is wrong
		t.Fatal(err)
	}

	res, err := h.coord.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if res.CorrectCount != 0 || res.IncorrectCount != 1 {
		t.Errorf("result = %+v, want recomputed 0/1", res)
	}
}

func TestRestartReplacesSession(t *testing.T) {
	h := newHarness(t, stubProvider{"m1": threeQuestions(), "m2": threeQuestions()[:2]})

	if err := h.coord.Start("m1", state.ModeQuiz); err != nil {
		t.Fatal(err)
	}
	if err := h.coord.Answer(0, 0, true); err != nil {
		t.Fatal(err)
	}
	first := h.coord.SessionID()

	if err := h.coord.Start("m2", state.ModeQuiz); err != nil {
		t.Fatal(err)
	}
	if h.coord.SessionID() == first {
		t.Error("session id survived restart")
	}

	snap := h.state.Current()
	if len(snap.Quiz.Questions) != 2 || snap.Selection.Module != "m2" {
		t.Errorf("state after restart = %+v", snap.Quiz)
	}
	if len(snap.Session.Answers) != 0 {
		t.Errorf("answers leaked across attempts: %v", snap.Session.Answers)
	}
}
