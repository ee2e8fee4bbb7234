package service

import "testing"

func TestSanitizeAIResponse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "markdown and filler phrase",
			in:   "**Hello!** Thanks for the click, let's begin.",
			want: "Hello! let's begin.",
		},
		{
			name: "markdown symbols stripped",
			in:   "# Title with *bold* and `code` and _underline_ and ~strike~",
			want: "Title with bold and code and underline and strike",
		},
		{
			name: "filler phrase case insensitive",
			in:   "THANKS FOR CLICKING! Let me explain.",
			want: "Let me explain.",
		},
		{
			name: "thank you variant",
			in:   "Thank you for the click. Now, about fractions.",
			want: "Now, about fractions.",
		},
		{
			name: "whitespace collapsed",
			in:   "Line one.\n\n\tLine   two.",
			want: "Line one. Line two.",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "clean text untouched",
			in:   "Let's solve this step by step.",
			want: "Let's solve this step by step.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeAIResponse(tc.in)
			if got != tc.want {
				t.Errorf("SanitizeAIResponse(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeAIResponseIdempotent(t *testing.T) {
	inputs := []string{
		"**Hello!** Thanks for the click, let's begin.",
		"# Heading\nSome *text* here",
		"plain already-clean text",
	}

	for _, in := range inputs {
		once := SanitizeAIResponse(in)
		twice := SanitizeAIResponse(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
