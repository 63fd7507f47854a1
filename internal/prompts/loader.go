// Package prompts holds the LLM prompt templates used by the rerank oracle.
// Templates are embedded at compile time, parsed once, and checked to
// reference both judge fields.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// JudgeCourseRelevance is the key of the per-course relevance prompt.
const JudgeCourseRelevance = "judge-course-relevance"

//go:embed ranking.json
var rankingFile []byte

// JudgeInput fills a relevance prompt: the learner query and one course
// document.
type JudgeInput struct {
	Query    string
	Document string
}

var loadRanking = sync.OnceValues(func() (map[string]*template.Template, error) {
	return parse("ranking.json", rankingFile)
})

// Check parses the embedded prompts and reports the first malformed one.
func Check() error {
	_, err := loadRanking()
	return err
}

// Render fills the prompt named key with in.
func Render(key string, in JudgeInput) (string, error) {
	templates, err := loadRanking()
	if err != nil {
		return "", err
	}
	tmpl, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in ranking.json", key)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, in); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", key, err)
	}
	return b.String(), nil
}

// parse reads a JSON object of key -> template text. Each template must
// parse, execute against JudgeInput, and place both fields in its output.
func parse(filename string, data []byte) (map[string]*template.Template, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	out := make(map[string]*template.Template, len(raw))
	for key, text := range raw {
		tmpl, err := template.New(key).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("prompt %q in %s: %w", key, filename, err)
		}
		if err := checkFields(tmpl); err != nil {
			return nil, fmt.Errorf("prompt %q in %s: %w", key, filename, err)
		}
		out[key] = tmpl
	}
	return out, nil
}

func checkFields(tmpl *template.Template) error {
	sample := JudgeInput{Query: "\x00query\x00", Document: "\x00document\x00"}
	var b strings.Builder
	if err := tmpl.Execute(&b, sample); err != nil {
		return err
	}
	if !strings.Contains(b.String(), sample.Query) {
		return fmt.Errorf("missing {{.Query}}")
	}
	if !strings.Contains(b.String(), sample.Document) {
		return fmt.Errorf("missing {{.Document}}")
	}
	return nil
}
