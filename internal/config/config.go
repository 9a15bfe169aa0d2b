package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries the process-wide settings. It is built once at startup and
// passed to collaborators; nothing reads the environment after Load returns.
type Config struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	GroqAPIKey     string        `envconfig:"GROQ_API_KEY"`
	APIURL         string        `envconfig:"GROQ_API_URL" default:"https://api.groq.com/openai/v1/chat/completions"`
	Model          string        `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	Temperature    float64       `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	MaxTokens      int           `envconfig:"LLM_MAX_TOKENS" default:"800"`
	RequestTimeout time.Duration `envconfig:"LLM_REQUEST_TIMEOUT" default:"30s"`
	ReportsDir     string        `envconfig:"REPORTS_DIR" default:"patient_reports"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	EnableDB       bool          `envconfig:"ENABLE_DB" default:"false"`
}

// Load reads .env (best effort) and the process environment. A missing API
// credential is a startup failure, not something to limp along without.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("missing GROQ_API_KEY in environment")
	}
	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	return &cfg, nil
}
