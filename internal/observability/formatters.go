// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/upskill-advisor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintGaps outputs the missing skills of the learner for the goal role.
func (p *Printer) PrintGaps(goalRole string, gaps *types.GapResult) {
	if gaps == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:     %s\n", goalRole))
	sb.WriteString(fmt.Sprintf("Missing:  %d skill(s)\n", len(gaps.GapMap)))

	if len(gaps.GapMap) > 0 {
		sb.WriteString("\n")
		labels := make([]string, 0, len(gaps.GapMap))
		for label := range gaps.GapMap {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			sb.WriteString(fmt.Sprintf("  • %s\n", label))
		}
	} else {
		sb.WriteString("\nNo gaps: every required skill is already covered.\n")
	}

	p.printBox("SKILL GAPS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidates outputs the top retrieved candidates with their scores.
func (p *Printer) PrintCandidates(candidates []types.Candidate) {
	if len(candidates) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates retrieved: %d\n\n", len(candidates)))

	count := min(len(candidates), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("#%d  %-12s score %.3f\n", i+1, candidates[i].CourseID, candidates[i].Score))
	}
	if len(candidates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(candidates)-maxItemsToShow))
	}

	p.printBox("RETRIEVED CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPlan outputs the selected courses with their justification.
func (p *Printer) PrintPlan(plan []types.PlanItem) {
	var sb strings.Builder
	if len(plan) == 0 {
		sb.WriteString("No courses selected.")
		p.printBox("STUDY PLAN", sb.String())
		return
	}

	for i, item := range plan {
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, item.Title, item.Difficulty))
		sb.WriteString(fmt.Sprintf("   %s\n", item.Why))
		if len(item.Citations) > 0 {
			c := item.Citations[0]
			sb.WriteString(fmt.Sprintf("   cites %q (%.1f)\n", c.MatchedSpan, c.Confidence))
		}
		if i < len(plan)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("STUDY PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTimeline outputs the weekly schedule.
func (p *Printer) PrintTimeline(tl *types.Timeline) {
	if tl == nil || len(tl.Schedule) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: %d weeks\n\n", tl.Weeks))
	for _, e := range tl.Schedule {
		sb.WriteString(fmt.Sprintf("Weeks %2d-%-2d  %s\n", e.StartWeek, e.EndWeek, e.CourseID))
	}

	p.printBox("TIMELINE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintUsage outputs retrieval counts, models and degraded backends.
func (p *Printer) PrintUsage(usage *types.Usage) {
	if usage == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates: %d   Reranked: %d\n", usage.Retrieval.Candidates, usage.Retrieval.Reranked))
	sb.WriteString(fmt.Sprintf("Embed:      %s\n", usage.Models.Embed))
	sb.WriteString(fmt.Sprintf("Reranker:   %s\n", usage.Models.Reranker))
	if len(usage.Degraded) > 0 {
		sb.WriteString(fmt.Sprintf("Degraded:   %s\n", strings.Join(usage.Degraded, ", ")))
	}

	p.printBox("USAGE", strings.TrimSuffix(sb.String(), "\n"))
}
