// Package questions loads and validates module question banks and the
// module catalog. The rest of the system treats loaded questions as
// authoritative and read-only.
package questions

import "errors"

var (
	// ErrNotFound reports a module id absent from the catalog.
	ErrNotFound = errors.New("questions: module not found")

	// ErrInvalid reports a question payload that failed validation.
	ErrInvalid = errors.New("questions: invalid question payload")
)

// Question types as they appear in the question files.
const (
	TypeContent   = "conteudista"
	TypeReasoning = "raciocinio"
)

// Question is one multiple-choice question as stored in a module file.
type Question struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctIndex"`
	Explanation        string   `json:"explanation"`
	Type               string   `json:"type,omitempty"`
	Image              string   `json:"image,omitempty"`
}

// IsReasoning reports whether the question is classified as a reasoning
// question. Anything else, including an empty type, counts as content.
func (q Question) IsReasoning() bool {
	return q.Type == TypeReasoning || q.Type == "raciocínio"
}

// Provider hands out the question list for a module. Implementations
// must return slices the caller can hold without them changing.
type Provider interface {
	LoadQuestions(moduleID string) ([]Question, error)
}

// NameResolver maps a module id to its display name for dashboard rows.
type NameResolver interface {
	ResolveModuleName(moduleID string) string
}
