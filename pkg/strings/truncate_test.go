package strings

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "java -Dcatalina.home=/opt/tomcat",
			maxLen:   100,
			expected: "java -Dcatalina.home=/opt/tomcat",
		},
		{
			name:     "exact length unchanged",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "long command line truncated",
			input:    "java org.apache.catalina.startup.Bootstrap start",
			maxLen:   20,
			expected: "java org.apache.c...",
		},
		{
			name:     "whitespace collapsed to one line",
			input:    "/usr/bin/java\n  -Xmx512m\t start",
			maxLen:   100,
			expected: "/usr/bin/java -Xmx512m start",
		},
		{
			name:     "multi-byte runes are not split",
			input:    "äöüäöüäöü",
			maxLen:   6,
			expected: "äöü...",
		},
		{
			name:     "tiny maxLen is clamped",
			input:    "abcdefgh",
			maxLen:   1,
			expected: "a...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxLen); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
			}
		})
	}
}
