package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/upskill-advisor/internal/catalog"
	"github.com/jonathan/upskill-advisor/internal/evaluation"
)

var (
	evalURL         string
	evalPersonas    string
	evalRepeats     int
	evalNoWarmup    bool
	evalTimeout     time.Duration
	evalP95Bar      time.Duration
	evalErrorBudget float64
	evalCSV         string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Replay learner personas and check latency and error-rate bars",
	Long: `Replays each persona several times and reports p95 latency, error rate,
role skill coverage and plan diversity.

Without --url the pipeline runs in process with the configured backends.
With --url requests are posted to a running server's /api/advise.
The command fails when a quality bar is not met.`,
	RunE: runEval,
}

func init() {
	defaults := evaluation.DefaultOptions()
	evalCmd.Flags().StringVar(&evalURL, "url", "", "Advise endpoint of a running server, e.g. http://127.0.0.1:8080/api/advise")
	evalCmd.Flags().StringVar(&evalPersonas, "personas", "", "JSON file with [{\"name\":...,\"profile\":{...}}] (defaults to the built-in personas)")
	evalCmd.Flags().IntVar(&evalRepeats, "repeats", defaults.Repeats, "Measured calls per persona")
	evalCmd.Flags().BoolVar(&evalNoWarmup, "no-warmup", false, "Skip the unmeasured warmup call")
	evalCmd.Flags().DurationVar(&evalTimeout, "timeout", 30*time.Second, "Per-request timeout for --url")
	evalCmd.Flags().DurationVar(&evalP95Bar, "p95-bar", defaults.P95Bar, "Worst persona p95 latency allowed")
	evalCmd.Flags().Float64Var(&evalErrorBudget, "error-budget", defaults.ErrorBudget, "Mean error rate allowed")
	evalCmd.Flags().StringVar(&evalCSV, "csv", "", "Write per-persona metrics to this CSV file")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	personas, err := loadPersonas(evalPersonas)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	var (
		target evaluation.Target
		cat    *catalog.Catalog
	)
	if evalURL != "" {
		cat, err = catalog.Load(cfg.CoursesPath, cfg.RolesPath)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		target = evaluation.NewHTTPTarget(evalURL, evalTimeout)
	} else {
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		cat = a.catalog
		target = evaluation.AdvisorTarget{Advisor: a.advisor}
	}

	opts := evaluation.Options{
		Repeats:     evalRepeats,
		Warmup:      !evalNoWarmup,
		P95Bar:      evalP95Bar,
		ErrorBudget: evalErrorBudget,
	}
	report, err := evaluation.NewRunner(target, cat, opts).Run(ctx, personas)
	if err != nil {
		return err
	}

	report.WriteSummary(cmd.OutOrStdout(), opts)

	if evalCSV != "" {
		f, err := os.Create(evalCSV)
		if err != nil {
			return fmt.Errorf("failed to create csv: %w", err)
		}
		if err := report.WriteCSV(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write csv: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nWrote metrics to %s\n", evalCSV)
	}

	if !report.Passed() {
		return fmt.Errorf("quality bars not met")
	}
	return nil
}

// loadPersonas reads a persona file, or returns the defaults for an empty
// path. Every profile must pass request validation.
func loadPersonas(path string) ([]evaluation.Persona, error) {
	if path == "" {
		return evaluation.DefaultPersonas(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read personas: %w", err)
	}
	var personas []evaluation.Persona
	if err := json.Unmarshal(data, &personas); err != nil {
		return nil, fmt.Errorf("failed to parse personas: %w", err)
	}
	if len(personas) == 0 {
		return nil, fmt.Errorf("personas file %s is empty", path)
	}
	for i, p := range personas {
		if p.Name == "" {
			return nil, fmt.Errorf("persona %d has no name", i)
		}
		if err := p.Profile.Validate(); err != nil {
			return nil, fmt.Errorf("persona %q: %w", p.Name, err)
		}
	}
	return personas, nil
}
