// Package main provides the entry point for the upskill advisor CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is reported by the API root endpoint.
const version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "upskill_advisor",
	Short: "Upskill Advisor: course plans for a target role",
	Long: `Upskill Advisor compares a learner's skills with a target role's requirements
and recommends an ordered plan of up to three courses with citations and a week-by-week timeline.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (environment variables override file values)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
