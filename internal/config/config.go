// Package config provides configuration loading and validation for the
// advisor CLI and HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config is the advisor configuration. A JSON file may set any subset of
// fields; the rest keep their defaults.
type Config struct {
	// Data
	CoursesPath string `json:"courses_path,omitempty"` // Path to courses JSON
	RolesPath   string `json:"roles_path,omitempty"`   // Path to role requirements (JDs) JSON

	// Backends (all optional)
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL with pgvector for the semantic index
	RedisAddr   string `json:"redis_addr,omitempty"`   // Redis for the embedding cache
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key for embeddings and rerank

	// Retrieval and ranking
	LexicalWeight     float64 `json:"lexical_weight"`
	VectorWeight      float64 `json:"vector_weight"`
	BiasStep          float64 `json:"bias_step"`
	BiasCap           float64 `json:"bias_cap"`
	RetrievalK        int     `json:"retrieval_k,omitempty"`
	RerankK           int     `json:"rerank_k,omitempty"`
	SemanticTimeoutMS int     `json:"semantic_timeout_ms,omitempty"`
	RerankTimeoutMS   int     `json:"rerank_timeout_ms,omitempty"`
	RerankEnabled     bool    `json:"rerank_enabled"`
	JudgeConcurrency  int     `json:"judge_concurrency,omitempty"`

	// Models
	EmbeddingModel string `json:"embedding_model,omitempty"`
	EmbeddingDim   int    `json:"embedding_dim,omitempty"`

	// Resilience
	BreakerFailures    int `json:"breaker_failures,omitempty"`     // Consecutive failures before a backend is skipped
	BreakerOpenSeconds int `json:"breaker_open_seconds,omitempty"` // Time a tripped backend is skipped

	// Server
	Port       int  `json:"port,omitempty"`
	RecordRuns bool `json:"record_runs,omitempty"` // Store advise runs in PostgreSQL

	// Logging
	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`
}

// Default returns the configuration used when nothing is configured.
func Default() Config {
	return Config{
		CoursesPath:        "data/courses.json",
		RolesPath:          "data/jds.json",
		LexicalWeight:      0.5,
		VectorWeight:       0.5,
		BiasStep:           0.25,
		BiasCap:            0.60,
		RetrievalK:         20,
		RerankK:            10,
		SemanticTimeoutMS:  3000,
		RerankTimeoutMS:    5000,
		RerankEnabled:      true,
		JudgeConcurrency:   4,
		EmbeddingModel:     "text-embedding-004",
		EmbeddingDim:       768,
		BreakerFailures:    3,
		BreakerOpenSeconds: 30,
		Port:               8080,
		LogLevel:           "info",
		LogFormat:          "json",
	}
}

// LoadConfig loads configuration from a JSON file on top of Default.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.LexicalWeight < 0 || c.VectorWeight < 0 {
		return &Error{Message: "'lexical_weight' and 'vector_weight' must be non-negative"}
	}
	if c.LexicalWeight == 0 && c.VectorWeight == 0 {
		return &Error{Message: "at least one of 'lexical_weight' and 'vector_weight' must be positive"}
	}
	if c.BiasStep < 0 || c.BiasStep > 1 {
		return &Error{Message: "'bias_step' must be between 0 and 1"}
	}
	if c.BiasCap < 0 || c.BiasCap > 1 {
		return &Error{Message: "'bias_cap' must be between 0 and 1"}
	}
	if c.RetrievalK <= 0 {
		return &Error{Message: "'retrieval_k' must be positive"}
	}
	if c.RerankK <= 0 {
		return &Error{Message: "'rerank_k' must be positive"}
	}
	if c.SemanticTimeoutMS < 0 || c.RerankTimeoutMS < 0 {
		return &Error{Message: "timeouts must be non-negative"}
	}
	if c.Port < 0 || c.Port > 65535 {
		return &Error{Message: fmt.Sprintf("'port' out of range: %d", c.Port)}
	}
	if c.DatabaseURL != "" && c.EmbeddingDim <= 0 {
		return &Error{Message: "'embedding_dim' must be positive when 'database_url' is set"}
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "console":
	default:
		return &Error{Message: fmt.Sprintf("unknown 'log_format' %q (want json or console)", c.LogFormat)}
	}
	return nil
}

// MergeWithDefaults returns a new Config starting from defaults, with every
// non-empty string and non-zero int of c taking precedence. It is used to let
// CLI flags override file values. Floats and bools always come from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := defaults

	// String fields
	if c.CoursesPath != "" {
		result.CoursesPath = c.CoursesPath
	}
	if c.RolesPath != "" {
		result.RolesPath = c.RolesPath
	}
	if c.DatabaseURL != "" {
		result.DatabaseURL = c.DatabaseURL
	}
	if c.RedisAddr != "" {
		result.RedisAddr = c.RedisAddr
	}
	if c.APIKey != "" {
		result.APIKey = c.APIKey
	}
	if c.EmbeddingModel != "" {
		result.EmbeddingModel = c.EmbeddingModel
	}
	if c.LogLevel != "" {
		result.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		result.LogFormat = c.LogFormat
	}

	// Int fields
	if c.RetrievalK != 0 {
		result.RetrievalK = c.RetrievalK
	}
	if c.RerankK != 0 {
		result.RerankK = c.RerankK
	}
	if c.Port != 0 {
		result.Port = c.Port
	}

	return result
}

// ApplyEnv overrides fields from environment variables: COURSES_PATH,
// ROLES_PATH, DATABASE_URL, REDIS_ADDR, GEMINI_API_KEY, EMBEDDING_MODEL,
// PORT, LOG_LEVEL and LOG_FORMAT. Unset variables leave fields untouched.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"COURSES_PATH":    &c.CoursesPath,
		"ROLES_PATH":      &c.RolesPath,
		"DATABASE_URL":    &c.DatabaseURL,
		"REDIS_ADDR":      &c.RedisAddr,
		"GEMINI_API_KEY":  &c.APIKey,
		"EMBEDDING_MODEL": &c.EmbeddingModel,
		"LOG_LEVEL":       &c.LogLevel,
		"LOG_FORMAT":      &c.LogFormat,
	}
	for name, field := range strs {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*field = v
		}
	}

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Message: "invalid PORT", Cause: err}
		}
		c.Port = port
	}
	return nil
}

// SemanticTimeout returns the semantic query timeout.
func (c *Config) SemanticTimeout() time.Duration {
	return time.Duration(c.SemanticTimeoutMS) * time.Millisecond
}

// RerankTimeout returns the rerank oracle timeout.
func (c *Config) RerankTimeout() time.Duration {
	return time.Duration(c.RerankTimeoutMS) * time.Millisecond
}

// BreakerOpenTimeout returns how long a tripped backend is skipped.
func (c *Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.BreakerOpenSeconds) * time.Second
}
