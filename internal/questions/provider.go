package questions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// questionsSchema constrains a module question file: a non-empty array
// of questions, each with at least two options. Index-range checks that
// cross-reference fields happen after unmarshalling.
var questionsSchema = map[string]any{
	"type":     "array",
	"minItems": 1,
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string", "minLength": 1},
			"options": map[string]any{
				"type":     "array",
				"minItems": 2,
				"items":    map[string]any{"type": "string"},
			},
			"correctIndex": map[string]any{"type": "integer", "minimum": 0},
			"explanation":  map[string]any{"type": "string"},
			"type":         map[string]any{"type": "string"},
			"image":        map[string]any{"type": "string"},
		},
		"required": []any{"text", "options", "correctIndex"},
	},
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compiledQuestionsSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		defBytes, err := json.Marshal(questionsSchema)
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			schemaErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://questions.json"
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// ValidateQuestions checks a raw module payload against the question
// schema plus the in-range constraint on correctIndex.
// Returns ErrInvalid (wrapped) on any failure.
func ValidateQuestions(raw []byte) ([]Question, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrInvalid, err)
	}

	schema, err := compiledQuestionsSchema()
	if err != nil {
		return nil, fmt.Errorf("compile questions schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var qs []Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i, q := range qs {
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			return nil, fmt.Errorf("%w: question %d: correctIndex %d out of range for %d options",
				ErrInvalid, i, q.CorrectOptionIndex, len(q.Options))
		}
	}
	return qs, nil
}

// FileProvider loads module question files from a directory, lazily,
// caching each module after its first successful load.
type FileProvider struct {
	dir     string
	catalog *Catalog

	mu    sync.Mutex
	cache map[string][]Question
}

var _ Provider = (*FileProvider)(nil)

// NewFileProvider creates a provider reading question files from dir,
// resolved through the given catalog.
func NewFileProvider(dir string, catalog *Catalog) *FileProvider {
	return &FileProvider{
		dir:     dir,
		catalog: catalog,
		cache:   make(map[string][]Question),
	}
}

// LoadQuestions returns the question list for moduleID. Results are
// cached; callers must not mutate the returned slice.
func (p *FileProvider) LoadQuestions(moduleID string) ([]Question, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if qs, ok := p.cache[moduleID]; ok {
		return qs, nil
	}

	ref, ok := p.catalog.FindModule(moduleID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, moduleID)
	}

	raw, err := os.ReadFile(filepath.Join(p.dir, ref.File+".json"))
	if err != nil {
		return nil, fmt.Errorf("load module %s: %w", moduleID, err)
	}

	qs, err := ValidateQuestions(raw)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", moduleID, err)
	}

	p.cache[moduleID] = qs
	return qs, nil
}
