// Package safety screens learner input before it reaches the pipeline:
// prompt-injection style phrases are rejected and contact details redacted.
package safety

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnsafeInput is returned for input matching a deny pattern.
var ErrUnsafeInput = errors.New("potentially unsafe input")

var denyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore (all|previous) instructions`),
	regexp.MustCompile(`(?i)run shell|system\(`),
}

var piiPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), "[redacted-email]"},
	{regexp.MustCompile(`\b\+?\d[\d -]{7,}\d\b`), "[redacted-phone]"},
}

// IsMalicious reports whether text matches any deny pattern.
func IsMalicious(text string) bool {
	for _, re := range denyPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Check returns ErrUnsafeInput if the skills or goal role, joined with
// spaces, match a deny pattern.
func Check(skills []string, goalRole string) error {
	parts := append(append([]string(nil), skills...), goalRole)
	if IsMalicious(strings.Join(parts, " ")) {
		return ErrUnsafeInput
	}
	return nil
}

// RedactPII replaces e-mail addresses and phone numbers in text.
func RedactPII(text string) string {
	for _, p := range piiPatterns {
		text = p.re.ReplaceAllString(text, p.replacement)
	}
	return text
}

// RedactAll returns a copy of texts with RedactPII applied to each element.
func RedactAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = RedactPII(t)
	}
	return out
}
