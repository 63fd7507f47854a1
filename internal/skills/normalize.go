// Package skills compares learner skills with role requirements.
package skills

import (
	"strings"
	"unicode"
)

// Normalize reduces a skill label to its comparison key: lowercase letters and
// digits only. "Node.js", "nodejs" and "NODE JS" all map to "nodejs".
func Normalize(skill string) string {
	var sb strings.Builder
	sb.Grow(len(skill))
	for _, r := range skill {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

// NormalizeSet returns the set of normalized keys for labels, skipping labels
// that normalize to the empty string.
func NormalizeSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, label := range labels {
		if key := Normalize(label); key != "" {
			set[key] = true
		}
	}
	return set
}
