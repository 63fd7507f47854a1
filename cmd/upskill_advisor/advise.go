package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/upskill-advisor/internal/observability"
	"github.com/jonathan/upskill-advisor/internal/pipeline"
	"github.com/jonathan/upskill-advisor/internal/safety"
	"github.com/jonathan/upskill-advisor/internal/types"
)

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Recommend a study plan for a target role",
	Long: `Runs the full pipeline: skill gaps -> hybrid retrieval -> level bias -> rerank -> selection -> timeline.

The response JSON is written to stdout, or to --out when given.`,
	RunE: runAdvise,
}

var (
	adviseSkills  []string
	adviseLevel   string
	adviseRole    string
	adviseOut     string
	adviseVerbose bool
)

func init() {
	adviseCmd.Flags().StringSliceVarP(&adviseSkills, "skills", "s", nil, "Comma-separated current skills")
	adviseCmd.Flags().StringVarP(&adviseLevel, "level", "l", "", "Learner level: beginner, intermediate or advanced")
	adviseCmd.Flags().StringVarP(&adviseRole, "role", "r", "", "Target role, e.g. \"SDET\"")
	adviseCmd.Flags().StringVarP(&adviseOut, "out", "o", "", "Output file path (defaults to stdout)")
	adviseCmd.Flags().BoolVarP(&adviseVerbose, "verbose", "v", false, "Print boxed summaries of each stage")

	_ = adviseCmd.MarkFlagRequired("level")
	_ = adviseCmd.MarkFlagRequired("role")

	rootCmd.AddCommand(adviseCmd)
}

func runAdvise(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	req, err := buildAdviseRequest(adviseSkills, adviseLevel, adviseRole)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Summaries go to stderr when the JSON goes to stdout.
	var summaryOut io.Writer = cmd.ErrOrStderr()
	if adviseOut != "" {
		summaryOut = cmd.OutOrStdout()
	}

	advisor := a.advisor
	var printer *observability.Printer
	if adviseVerbose {
		printer = observability.NewPrinter(summaryOut)
		advisor = advisor.WithProgress(progressPrinter(printer, req.GoalRole))
	}

	resp := advisor.Advise(ctx, req)
	if printer != nil {
		printer.PrintUsage(&resp.Usage)
	}

	return writeJSON(cmd.OutOrStdout(), adviseOut, resp)
}

// buildAdviseRequest validates and screens flag input the same way the HTTP
// API does, then redacts contact details before anything reaches retrieval
// or the rerank oracle.
func buildAdviseRequest(skills []string, level, role string) (*types.AdviseRequest, error) {
	req := &types.AdviseRequest{
		Skills:   skills,
		Level:    types.ParseDifficulty(level),
		GoalRole: role,
	}
	if req.Skills == nil {
		req.Skills = []string{}
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if err := safety.Check(req.Skills, req.GoalRole); err != nil {
		return nil, err
	}
	req.Skills = safety.RedactAll(req.Skills)
	req.GoalRole = safety.RedactPII(req.GoalRole)
	return req, nil
}

// progressPrinter prints a box per pipeline stage.
func progressPrinter(printer *observability.Printer, goalRole string) pipeline.ProgressCallback {
	return func(event pipeline.ProgressEvent) {
		switch content := event.Content.(type) {
		case types.GapResult:
			printer.PrintGaps(goalRole, &content)
		case []types.Candidate:
			printer.PrintCandidates(content)
		case []types.PlanItem:
			printer.PrintPlan(content)
		case types.Timeline:
			printer.PrintTimeline(&content)
		}
	}
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Wrote plan to %s\n", path)
	return nil
}
