// Package retrieval finds candidate courses for a query by fusing BM25 keyword
// relevance with embedding similarity.
package retrieval

import (
	"strings"

	"github.com/jonathan/upskill-advisor/internal/types"
)

// CourseDocument renders the text indexed for a course, both lexically and
// semantically, and sent to the rerank oracle.
func CourseDocument(c *types.Course) string {
	return strings.Join([]string{
		c.Title,
		"Skills: " + strings.Join(c.Skills, ", "),
		"Outcomes: " + strings.Join(c.Outcomes, ", "),
		"Prereq: " + strings.Join(c.Prerequisites, ", "),
		"Level: " + string(c.Difficulty),
	}, "\n")
}

// Tokenize lowercases text and splits it on whitespace. Punctuation is kept
// attached to tokens.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
