package grading

import (
	"strings"

	"github.com/prepacademy/examsvc/internal/content"
)

// Verdict is the outcome of grading one submitted answer.
type Verdict struct {
	Correct  bool
	Expected string // resolved literal correct text, "" if unresolvable
}

// Grade compares a submitted answer against the question's resolved correct
// text. Strictly all-or-nothing: leading/trailing whitespace is trimmed on
// both sides, then the comparison is exact and case-sensitive. No partial
// credit, no fuzzy matching.
//
// A marker that cannot be resolved (a positional letter outside the options
// list) means the question itself is malformed; the submission is graded
// incorrect rather than failing the whole exam.
func Grade(opts content.Options, marker, submitted string) Verdict {
	expected, err := content.Resolve(opts, marker)
	if err != nil {
		return Verdict{}
	}
	expected = strings.TrimSpace(expected)
	return Verdict{
		Correct:  strings.TrimSpace(submitted) == expected,
		Expected: expected,
	}
}
