package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "plain text passes through",
			input:  "Lunch at Tesco",
			maxLen: 100,
			want:   "Lunch at Tesco",
		},
		{
			name:   "markup stripped",
			input:  "Lunch <b>at</b> <script>alert(1)</script>Tesco",
			maxLen: 100,
			want:   "Lunch at alert(1)Tesco",
		},
		{
			name:   "control characters stripped",
			input:  "Lunch\x00 at\x1b Tesco\x7f",
			maxLen: 100,
			want:   "Lunch at Tesco",
		},
		{
			name:   "whitespace collapsed and trimmed",
			input:  "  Lunch \t\n  at   Tesco  ",
			maxLen: 100,
			want:   "Lunch at Tesco",
		},
		{
			name:   "truncated to max length",
			input:  strings.Repeat("a", 50),
			maxLen: 10,
			want:   strings.Repeat("a", 10),
		},
		{
			name:   "no cap when maxLen is zero",
			input:  strings.Repeat("b", 50),
			maxLen: 0,
			want:   strings.Repeat("b", 50),
		},
		{
			name:   "empty input",
			input:  "",
			maxLen: 10,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input, tt.maxLen))
		})
	}
}

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json fence",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "no fence left alone",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdownFences(tt.input))
		})
	}
}
