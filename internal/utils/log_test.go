package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "Hi Jane,", limit: -1, expect: ""},
		{name: "fits", input: "Hi Jane,", limit: 8, expect: "Hi Jane,"},
		{name: "cut body", input: "Hi Jane,\nI noticed the opening", limit: 8, expect: "Hi Jane,..."},
		{name: "counts runes", input: "Grüße aus Berlin", limit: 5, expect: "Grüße..."},
		{name: "trims first", input: "\n  Subject line  \n", limit: 12, expect: "Subject line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
