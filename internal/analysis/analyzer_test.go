package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestAnalyzerAnalyze(t *testing.T) {
	stub := &stubGenerator{response: `{"name": "Jane", "skills": ["Go", "SQL"], "is_match": true}`}
	analyzer := NewAnalyzer(stub, zap.NewNop(), 0)

	result, err := analyzer.Analyze(context.Background(), "Jane. Go and SQL.", "Backend engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Name != "Jane" {
		t.Fatalf("unexpected name: %q", result.Name)
	}

	if len(result.Skills) != 2 || result.Skills[0] != "Go" || result.Skills[1] != "SQL" {
		t.Fatalf("unexpected skills: %v", result.Skills)
	}

	if !result.IsMatch {
		t.Fatalf("expected is_match to be true")
	}

	if !strings.Contains(stub.lastPrompt, "Jane. Go and SQL.") {
		t.Fatalf("expected resume text in prompt")
	}

	if !strings.Contains(stub.lastPrompt, "Backend engineer") {
		t.Fatalf("expected job description in prompt")
	}

	if !strings.Contains(stub.lastPrompt, "Output schema:") {
		t.Fatalf("expected format instructions at prompt end")
	}

	for _, field := range []string{`"name"`, `"skills"`, `"is_match"`} {
		if !strings.Contains(stub.lastPrompt, field) {
			t.Fatalf("expected %s in format instructions", field)
		}
	}
}

func TestAnalyzerTransportErrorIsNotSchemaError(t *testing.T) {
	transport := errors.New("connection reset")
	stub := &stubGenerator{err: transport}
	analyzer := NewAnalyzer(stub, zap.NewNop(), 0)

	_, err := analyzer.Analyze(context.Background(), "resume", "job")
	if err == nil {
		t.Fatal("expected error")
	}

	if !errors.Is(err, transport) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		t.Fatalf("transport failure must not be a schema error")
	}
}

func TestAnalyzerRequiresInputs(t *testing.T) {
	analyzer := NewAnalyzer(&stubGenerator{}, zap.NewNop(), 0)

	if _, err := analyzer.Analyze(context.Background(), "", "job"); err == nil {
		t.Fatal("expected error for empty resume text")
	}

	if _, err := analyzer.Analyze(context.Background(), "resume", " "); err == nil {
		t.Fatal("expected error for empty job description")
	}
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    *ResumeAnalysis
		wantErr string
	}{
		{
			name: "valid response",
			raw:  `{"name": "Jane", "skills": ["Go","SQL"], "is_match": true}`,
			want: &ResumeAnalysis{Name: "Jane", Skills: []string{"Go", "SQL"}, IsMatch: true},
		},
		{
			name: "fenced response",
			raw:  "```json\n{\"name\": \"Bob\", \"skills\": [], \"is_match\": false}\n```",
			want: &ResumeAnalysis{Name: "Bob", Skills: []string{}, IsMatch: false},
		},
		{
			name:    "missing is_match",
			raw:     `{"name": "Jane", "skills": ["Go"]}`,
			wantErr: `missing required field "is_match"`,
		},
		{
			name:    "missing name",
			raw:     `{"skills": ["Go"], "is_match": false}`,
			wantErr: `missing required field "name"`,
		},
		{
			name:    "wrong skills type",
			raw:     `{"name": "Jane", "skills": "Go", "is_match": true}`,
			wantErr: `field "skills" is not an array of strings`,
		},
		{
			name:    "wrong is_match type",
			raw:     `{"name": "Jane", "skills": [], "is_match": "yes"}`,
			wantErr: `field "is_match" is not a boolean`,
		},
		{
			name:    "malformed json",
			raw:     "the candidate looks great",
			wantErr: "malformed JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseResponse(tt.raw)
			if tt.wantErr != "" {
				var schemaErr *SchemaError
				if !errors.As(err, &schemaErr) {
					t.Fatalf("expected a schema error, got %v", err)
				}
				if !strings.Contains(schemaErr.Reason, tt.wantErr) {
					t.Fatalf("expected reason to contain %q, got %q", tt.wantErr, schemaErr.Reason)
				}
				if schemaErr.Raw != tt.raw {
					t.Fatalf("expected raw response to be preserved")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.Name != tt.want.Name || got.IsMatch != tt.want.IsMatch {
				t.Fatalf("unexpected result: %+v", got)
			}

			if len(got.Skills) != len(tt.want.Skills) {
				t.Fatalf("unexpected skills: %v", got.Skills)
			}
			for i := range got.Skills {
				if got.Skills[i] != tt.want.Skills[i] {
					t.Fatalf("unexpected skill order: %v", got.Skills)
				}
			}
		})
	}
}

func TestFormatInstructionsListsEveryField(t *testing.T) {
	t.Parallel()

	instructions := formatInstructions(outputSchema)

	for _, field := range outputSchema {
		if !strings.Contains(instructions, `"`+field.Name+`"`) {
			t.Fatalf("expected field %q in instructions", field.Name)
		}
		if !strings.Contains(instructions, field.Description) {
			t.Fatalf("expected description for %q in instructions", field.Name)
		}
	}

	if !strings.Contains(instructions, `"required"`) {
		t.Fatalf("expected required list in instructions")
	}
}
