package stats

import (
	"sort"
	"strconv"
	"strings"
)

// ProblemQuestion is a question answered wrong more often than right.
type ProblemQuestion struct {
	ModuleID      string
	ModuleName    string
	QuestionIndex int
	Seen          int
	Correct       int
	Incorrect     int
	ErrorRate     int // 0-100
}

// maxProblemQuestions caps the problem-question list.
const maxProblemQuestions = 10

// ProblemQuestions scans every stored question counter and returns the
// worst offenders: incorrect > correct with at least two attempts,
// ranked by error rate. Ties keep scan order (modules sorted by id,
// questions by index) so the result is deterministic.
func (e *Engine) ProblemQuestions(userID string) ([]ProblemQuestion, error) {
	rec, err := e.store.Load(userID)
	if err != nil {
		return nil, err
	}

	moduleIDs := make([]string, 0, len(rec.Progress))
	for id := range rec.Progress {
		moduleIDs = append(moduleIDs, id)
	}
	sort.Strings(moduleIDs)

	var out []ProblemQuestion
	for _, moduleID := range moduleIDs {
		entries := rec.Progress[moduleID]
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return questionIndexOf(keys[i]) < questionIndexOf(keys[j])
		})

		for _, key := range keys {
			qp := entries[key]
			if qp.Incorrect <= qp.Correct || qp.Seen < 2 {
				continue
			}
			out = append(out, ProblemQuestion{
				ModuleID:      moduleID,
				ModuleName:    e.moduleName(moduleID),
				QuestionIndex: questionIndexOf(key),
				Seen:          qp.Seen,
				Correct:       qp.Correct,
				Incorrect:     qp.Incorrect,
				ErrorRate:     roundPct(qp.Incorrect, qp.Seen),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ErrorRate > out[j].ErrorRate
	})
	if len(out) > maxProblemQuestions {
		out = out[:maxProblemQuestions]
	}
	return out, nil
}

// questionIndexOf extracts the question index from a "<module>_<n>" key.
func questionIndexOf(key string) int {
	i := strings.LastIndex(key, "_")
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return 0
	}
	return n
}

// TypeStats accumulates lifetime counters for one question type.
type TypeStats struct {
	Correct   int
	Incorrect int
	Total     int // attempts (seen)
	Accuracy  int // 0-100
}

// PerformanceByType splits lifetime counters by question type, looking
// each answered slot up in the provider's question list. Modules whose
// questions cannot be loaded are skipped.
type PerformanceByType struct {
	Content   TypeStats
	Reasoning TypeStats
}

func (e *Engine) PerformanceByType(userID string) (PerformanceByType, error) {
	rec, err := e.store.Load(userID)
	if err != nil {
		return PerformanceByType{}, err
	}
	if e.provider == nil {
		return PerformanceByType{}, nil
	}

	var out PerformanceByType
	for moduleID, entries := range rec.Progress {
		qs, err := e.provider.LoadQuestions(moduleID)
		if err != nil {
			continue
		}
		for key, qp := range entries {
			idx := questionIndexOf(key)
			if idx < 0 || idx >= len(qs) {
				continue
			}
			ts := &out.Content
			if qs[idx].IsReasoning() {
				ts = &out.Reasoning
			}
			ts.Correct += qp.Correct
			ts.Incorrect += qp.Incorrect
			ts.Total += qp.Seen
		}
	}

	out.Content.Accuracy = roundPct(out.Content.Correct, out.Content.Correct+out.Content.Incorrect)
	out.Reasoning.Accuracy = roundPct(out.Reasoning.Correct, out.Reasoning.Correct+out.Reasoning.Incorrect)
	return out, nil
}
