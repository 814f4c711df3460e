// Package config provides explicit configuration for the screening
// pipeline. Values are read from the environment once, at startup, and
// passed into constructors so no component reads globals at call time.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment variable names.
const (
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGeminiModel  = "GEMINI_MODEL"
	EnvGitHubAPIURL = "GITHUB_API_URL"
	EnvDatabaseURL  = "DATABASE_URL"
)

// Config holds everything the CLI needs to build the pipeline and its
// optional persistence.
type Config struct {
	GitHubToken   string `validate:"required"`
	GeminiAPIKey  string `validate:"required"`
	GeminiModel   string
	GitHubBaseURL string
	GitHubTimeout time.Duration
	DatabaseURL   string
}

// FromEnv reads configuration from the environment. Missing optional
// values stay zero so component defaults apply.
func FromEnv() Config {
	return Config{
		GitHubToken:   os.Getenv(EnvGitHubToken),
		GeminiAPIKey:  os.Getenv(EnvGeminiAPIKey),
		GeminiModel:   os.Getenv(EnvGeminiModel),
		GitHubBaseURL: os.Getenv(EnvGitHubAPIURL),
		DatabaseURL:   os.Getenv(EnvDatabaseURL),
	}
}

// Validate checks that every required value is present.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: set %s and %s (flags or environment): %w",
			EnvGitHubToken, EnvGeminiAPIKey, err)
	}
	return nil
}

// ValidateForExtract checks only what extraction needs; evaluation
// credentials may be absent.
func (c Config) ValidateForExtract() error {
	if c.GitHubToken == "" {
		return fmt.Errorf("config error: %s is required", EnvGitHubToken)
	}
	return nil
}

// ValidateForEvaluate checks only what evaluation needs; the GitHub token
// may be absent.
func (c Config) ValidateForEvaluate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: %s is required", EnvGeminiAPIKey)
	}
	return nil
}
