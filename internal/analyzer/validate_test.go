package analyzer

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
)

func TestValidateFullResult(t *testing.T) {
	raw := `{
		"summary": "Revenue grew.",
		"keyTerms": [{"term": "Revenue", "explanation": "Income from sales"}],
		"mainConcepts": [{"title": "Growth", "description": "Increase over time"}],
		"keyPoints": ["Revenue grew 20%"],
		"numericalData": [{"value": "20%", "context": "Q1 2024 revenue growth", "significance": "Strong quarter"}]
	}`

	got, err := Validate(raw)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	want := &models.AnalysisResult{
		Summary:       "Revenue grew.",
		KeyTerms:      []models.KeyTerm{{Term: "Revenue", Explanation: "Income from sales"}},
		MainConcepts:  []models.MainConcept{{Title: "Growth", Description: "Increase over time"}},
		KeyPoints:     []string{"Revenue grew 20%"},
		NumericalData: []models.NumericalFinding{{Value: "20%", Context: "Q1 2024 revenue growth", Significance: "Strong quarter"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Validate = %+v, want %+v", got, want)
	}
}

func TestValidateDefaultsMissingFields(t *testing.T) {
	got, err := Validate(`{"summary": "Only a summary"}`)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	if got.Summary != "Only a summary" {
		t.Errorf("summary = %q", got.Summary)
	}

	body, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"summary":"Only a summary","keyTerms":[],"mainConcepts":[],"keyPoints":[],"numericalData":[]}`
	if string(body) != want {
		t.Errorf("encoded = %s, want %s", body, want)
	}
}

func TestValidateDropsWrongShapes(t *testing.T) {
	raw := `{
		"summary": 42,
		"keyTerms": "not an array",
		"mainConcepts": [{"title": "Kept", "description": "ok"}, "bad item", {"title": ["x"]}],
		"keyPoints": ["kept", {"nested": true}],
		"numericalData": [{"value": 20, "context": "a number value", "significance": "kept"}]
	}`

	got, dropped, err := validate(raw)
	if err != nil {
		t.Fatalf("validate returned error: %v", err)
	}

	if got.Summary != "42" {
		t.Errorf("summary = %q, want %q", got.Summary, "42")
	}
	if len(got.KeyTerms) != 0 {
		t.Errorf("keyTerms = %+v, want empty", got.KeyTerms)
	}
	if len(got.MainConcepts) != 1 || got.MainConcepts[0].Title != "Kept" {
		t.Errorf("mainConcepts = %+v", got.MainConcepts)
	}
	if !reflect.DeepEqual(got.KeyPoints, []string{"kept"}) {
		t.Errorf("keyPoints = %+v", got.KeyPoints)
	}
	if len(got.NumericalData) != 1 || got.NumericalData[0].Value != "20" {
		t.Errorf("numericalData = %+v", got.NumericalData)
	}

	wantDropped := []string{"keyTerms", "mainConcepts[1]", "mainConcepts[2]", "keyPoints[1]"}
	if !reflect.DeepEqual(dropped, wantDropped) {
		t.Errorf("dropped = %v, want %v", dropped, wantDropped)
	}
}

func TestValidateUnwrapsCodeFence(t *testing.T) {
	raw := "```json\n{\"summary\": \"fenced\"}\n```"

	got, err := Validate(raw)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if got.Summary != "fenced" {
		t.Errorf("summary = %q, want %q", got.Summary, "fenced")
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	inputs := []string{
		"",
		"not json at all",
		`{"summary": "truncated`,
		`[]`,
		`"a string"`,
		`42`,
		`null`,
		`{}`,
	}

	for _, raw := range inputs {
		_, err := Validate(raw)
		if !errors.Is(err, ErrMalformedModelOutput) {
			t.Errorf("Validate(%q) error = %v, want ErrMalformedModelOutput", raw, err)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}\n"},
		{"```\n{\"a\":1}```", `{"a":1}`},
	}

	for _, tt := range tests {
		if got := extractJSON(tt.in); got != tt.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
