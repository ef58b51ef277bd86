package content

import (
	"errors"
	"strings"
)

// ErrAnswerNotFound reports a positional marker pointing outside the options
// list. A question in this state is malformed and must not be graded correct.
var ErrAnswerNotFound = errors.New("correct answer not found in options")

// Resolve maps a stored correct-answer marker onto the literal text of the
// right choice. Two marker dialects coexist in the data:
//
//   - a single ASCII letter ("A".."Z", case-insensitive) is a 0-based index
//     into opts (A=0, B=1, ...);
//   - anything else is the literal correct text and is returned unchanged.
//
// The dialects collide when an option's literal text is itself a single
// letter. The letter-index reading always wins; a stored marker "B" means
// "the second option" even if some option's text is exactly "B". Authoring
// never produces literal single-letter answers today, but nobody has ruled
// them out either, so the precedence is pinned down here and in the tests.
func Resolve(opts Options, marker string) (string, error) {
	m := strings.TrimSpace(marker)
	if len(m) == 1 {
		c := m[0]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c >= 'A' && c <= 'Z' {
			idx := int(c - 'A')
			if idx >= len(opts) {
				return "", ErrAnswerNotFound
			}
			return opts[idx], nil
		}
	}
	return marker, nil
}
