package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jonathan/repo-screener/internal/logger"
	"github.com/jonathan/repo-screener/internal/store"
	"github.com/jonathan/repo-screener/internal/types"
)

func newLogger() (*zap.Logger, error) {
	return logger.New(jsonLog, verbose)
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	if path == "" {
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func loadJobDescription(path string) (*types.JobDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job description: %w", err)
	}
	var jd types.JobDescription
	if err := json.Unmarshal(data, &jd); err != nil {
		return nil, fmt.Errorf("failed to parse job description: %w", err)
	}
	return &jd, nil
}

func loadBundle(path string) (*types.ArtifactBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	var bundle types.ArtifactBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}
	return &bundle, nil
}

// openStore connects to the database when a URL is configured. Persistence
// is best effort: on failure it warns and returns nil so the run continues.
func openStore(ctx context.Context, logger *zap.Logger, databaseURL string) *store.Store {
	if databaseURL == "" {
		return nil
	}
	st, err := store.Connect(ctx, databaseURL)
	if err != nil {
		logger.Warn("database unavailable, continuing without persistence", zap.Error(err))
		return nil
	}
	if err := st.Migrate(ctx); err != nil {
		logger.Warn("database migration failed, continuing without persistence", zap.Error(err))
		st.Close()
		return nil
	}
	return st
}
