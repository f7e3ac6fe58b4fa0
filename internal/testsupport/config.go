// Package testsupport holds shared test fixtures: temp-dir configs and
// synthetic WAV audio.
package testsupport

import (
	"path/filepath"
	"testing"

	"timbre/internal/config"
)

// NewConfig produces a config rooted in unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfg := &cfgVal
	cfg.InputPath = filepath.Join(base, "input")
	cfg.WorkspaceDir = filepath.Join(base, "workspace")
	cfg.LogDir = filepath.Join(base, "logs")
	return cfg
}

// ParseConfig decodes an in-memory TOML document, failing the test on error.
func ParseConfig(t testing.TB, document string) *config.Config {
	t.Helper()

	cfg, err := config.Parse([]byte(document))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}
