package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/upskill-advisor/internal/logging"
	"github.com/jonathan/upskill-advisor/internal/server"
)

var (
	servePort       int
	serveRecordRuns bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing POST /api/advise, course lookup and debug endpoints.

Semantic search, rerank, the embedding cache and run history are enabled when
GEMINI_API_KEY, DATABASE_URL and REDIS_ADDR are set and reachable.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides PORT and config)")
	serveCmd.Flags().BoolVar(&serveRecordRuns, "record-runs", false, "Store advise runs in PostgreSQL")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("record-runs") {
		cfg.RecordRuns = serveRecordRuns
	}

	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.bootstrapIndex(ctx); err != nil {
		logging.Warn().Err(err).Msg("semantic index bootstrap failed")
	}

	var runs server.RunStore
	if a.db != nil {
		runs = a.db
	}
	srv := server.New(server.Config{
		Port:       cfg.Port,
		Version:    version,
		RecordRuns: cfg.RecordRuns,
	}, a.advisor, runs)

	return srv.Start(ctx)
}
