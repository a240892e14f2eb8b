package questions

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validPayload = `[
  {"text": "What is 2+2?", "options": ["3", "4", "5"], "correctIndex": 1,
   "explanation": "Basic arithmetic", "type": "conteudista"},
  {"text": "Pick the odd one", "options": ["a", "b"], "correctIndex": 0,
   "type": "raciocinio"}
]`

func TestValidateQuestionsAccepts(t *testing.T) {
	qs, err := ValidateQuestions([]byte(validPayload))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("questions = %d, want 2", len(qs))
	}
	if qs[0].CorrectOptionIndex != 1 || qs[0].Explanation != "Basic arithmetic" {
		t.Errorf("first = %+v", qs[0])
	}
	if !qs[1].IsReasoning() || qs[0].IsReasoning() {
		t.Errorf("type classification wrong: %q %q", qs[0].Type, qs[1].Type)
	}
}

func TestValidateQuestionsRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{nope`},
		{"not an array", `{"text": "q"}`},
		{"empty array", `[]`},
		{"missing text", `[{"options": ["a", "b"], "correctIndex": 0}]`},
		{"missing options", `[{"text": "q", "correctIndex": 0}]`},
		{"single option", `[{"text": "q", "options": ["a"], "correctIndex": 0}]`},
		{"negative index", `[{"text": "q", "options": ["a", "b"], "correctIndex": -1}]`},
		{"index out of range", `[{"text": "q", "options": ["a", "b"], "correctIndex": 2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateQuestions([]byte(tt.raw)); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func testCatalog() *Catalog {
	return &Catalog{
		Specialties: map[string]Specialty{
			"clinica": {
				Name:             "Clínica Médica",
				HasSubcategories: true,
				Subcategories: map[string]Subcategory{
					"cardio": {
						Name:    "Cardiologia",
						Modules: []ModuleRef{{ID: "cardio-1", Name: "Arritmias", File: "cardio_arritmias"}},
					},
				},
			},
			"cirurgia": {
				Name:    "Cirurgia",
				Modules: []ModuleRef{{ID: "cir-1", Name: "Trauma", File: "cirurgia_trauma"}},
			},
		},
	}
}

func TestCatalogFindModule(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		id       string
		wantName string
		wantOK   bool
	}{
		{"cardio-1", "Arritmias", true}, // nested under a subcategory
		{"cir-1", "Trauma", true},       // direct module list
		{"missing", "", false},
	}
	for _, tt := range tests {
		m, ok := c.FindModule(tt.id)
		if ok != tt.wantOK || m.Name != tt.wantName {
			t.Errorf("FindModule(%q) = %+v %v", tt.id, m, ok)
		}
	}
}

func TestResolveModuleNameFallsBackToID(t *testing.T) {
	c := testCatalog()
	if got := c.ResolveModuleName("cardio-1"); got != "Arritmias" {
		t.Errorf("resolved = %q", got)
	}
	if got := c.ResolveModuleName("unknown-id"); got != "unknown-id" {
		t.Errorf("fallback = %q, want the raw id", got)
	}
}

func TestLoadCatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	raw := `{"specialties": {"cirurgia": {"name": "Cirurgia",
	  "modules": [{"id": "cir-1", "name": "Trauma", "file": "cirurgia_trauma"}]}}}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := c.FindModule("cir-1"); !ok {
		t.Error("loaded catalog missing cir-1")
	}

	if _, err := LoadCatalog(filepath.Join(dir, "absent.json")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cirurgia_trauma.json")
	if err := os.WriteFile(file, []byte(validPayload), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewFileProvider(dir, testCatalog())

	qs, err := p.LoadQuestions("cir-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("questions = %d, want 2", len(qs))
	}

	// Cached: a rewrite of the file on disk is not observed.
	if err := os.WriteFile(file, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	again, err := p.LoadQuestions("cir-1")
	if err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if len(again) != 2 {
		t.Errorf("cache bypassed: %d questions", len(again))
	}
}

func TestFileProviderUnknownModule(t *testing.T) {
	p := NewFileProvider(t.TempDir(), testCatalog())
	if _, err := p.LoadQuestions("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFileProviderInvalidFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cirurgia_trauma.json")
	if err := os.WriteFile(file, []byte(`[{"text": "q"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewFileProvider(dir, testCatalog())
	if _, err := p.LoadQuestions("cir-1"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}
