package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Populate the semantic course index",
	Long: `Creates the PostgreSQL schema and embeds every catalog course into the
course_embeddings table. Does nothing if the table already holds vectors.

Requires DATABASE_URL and GEMINI_API_KEY; REDIS_ADDR enables the embedding cache.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or database_url config is required")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or api_key config is required")
	}

	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.index == nil {
		return fmt.Errorf("semantic index unavailable: database, its schema or the LLM client could not be initialized")
	}

	n, err := a.bootstrapIndex(ctx)
	if err != nil {
		return fmt.Errorf("failed to bootstrap semantic index: %w", err)
	}
	if n == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Semantic index already populated")
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d courses\n", n)
	return nil
}
