package loop

import (
	"reflect"
	"testing"
)

func TestParsePerspectiveResult(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   PerspectiveResult
	}{
		{
			name: "well formed",
			output: "FINDINGS:\n- uses a mutex correctly\n- no data races found\n" +
				"QUESTIONS:\n- is this path hot?\n" +
				"IMPROVEMENTS:\n- add a benchmark\n" +
				"SCORE: 82\n" +
				"SUMMARY: solid overall\n",
			want: PerspectiveResult{
				Findings:     []string{"uses a mutex correctly", "no data races found"},
				Questions:    []string{"is this path hot?"},
				Improvements: []string{"add a benchmark"},
				Score:        0.82,
				Summary:      "solid overall",
			},
		},
		{
			name:   "missing sections falls back to defaults",
			output: "just some free text with no headers",
			want:   PerspectiveResult{Score: 0.5},
		},
		{
			name:   "score out of range clamps",
			output: "SCORE: 150",
			want:   PerspectiveResult{Score: 1.0},
		},
		{
			name:   "negative score clamps to zero",
			output: "SCORE: -20",
			want:   PerspectiveResult{Score: 0},
		},
		{
			name:   "bullet prefixes stripped",
			output: "FINDINGS:\n* one\n• two\n- three\n",
			want:   PerspectiveResult{Findings: []string{"one", "two", "three"}, Score: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePerspectiveResult(tt.output)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePerspectiveResult() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		body      string
		wantScore float64
		wantOK    bool
	}{
		{"75", 0.75, true},
		{"75.5", 0.755, true},
		{"no number here", 0, false},
		{"100", 1.0, true},
	}
	for _, tt := range tests {
		got, ok := parseScore(tt.body)
		if ok != tt.wantOK {
			t.Fatalf("parseScore(%q) ok = %v, want %v", tt.body, ok, tt.wantOK)
		}
		if ok && got != tt.wantScore {
			t.Errorf("parseScore(%q) = %v, want %v", tt.body, got, tt.wantScore)
		}
	}
}
