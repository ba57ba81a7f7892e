package scoring

import "unicode"

// NormalizeAnswer casefolds, drops punctuation, and collapses whitespace so
// that "Mitochondria!" and " mitochondria " compare equal.
func NormalizeAnswer(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsPunct(r):
			// skip
		default:
			if space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = false
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
