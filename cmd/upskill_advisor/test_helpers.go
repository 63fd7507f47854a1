package main

import (
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath returns the path to the upskill_advisor binary for testing
func getBinaryPath(t *testing.T) string {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", "upskill_advisor")
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/upskill_advisor ./cmd/upskill_advisor'", binaryPath)
	}

	return binaryPath
}

// isolateEnv points the catalog at the repository data and clears the
// optional backend settings so tests never reach real services.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("COURSES_PATH", filepath.Join("..", "..", "data", "courses.json"))
	t.Setenv("ROLES_PATH", filepath.Join("..", "..", "data", "jds.json"))
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "disabled")
}
