package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{name: "zero limit", input: "resume text", limit: 0, want: ""},
		{name: "negative limit", input: "resume text", limit: -3, want: ""},
		{name: "fits", input: "Go, SQL", limit: 7, want: "Go, SQL"},
		{name: "cut", input: `{"Full Name": "Ann"}`, limit: 6, want: `{"Full...`},
		{name: "runes not bytes", input: "Иван Петров", limit: 4, want: "Иван..."},
		{name: "trimmed before counting", input: "\n  Ann Lee \t", limit: 7, want: "Ann Lee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
