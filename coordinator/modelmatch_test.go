package coordinator

import "testing"

func TestModelMatches(t *testing.T) {
	cases := []struct {
		have, want string
		match      bool
	}{
		{"claude-opus", "claude-opus", true},
		{"claude-opus", "claude-haiku", false},
		{"claude-opus-4", "claude-*", true},
		{"gpt-4o", "claude-*", false},
		{"claude-opus-4", "claude-op?s-*", true},
		{"claude.opus", "claude.opus", true},
		{"claudeXopus", "claude.opus", false}, // literal dot, not regex any-char
	}
	for _, c := range cases {
		if got := modelMatches(c.have, c.want); got != c.match {
			t.Errorf("modelMatches(%q, %q) = %v, want %v", c.have, c.want, got, c.match)
		}
	}
}
