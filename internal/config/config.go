package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Pipeline holds the ordered component list a run is composed from.
type Pipeline struct {
	Components []string `toml:"components"`
}

// Config is the typed view of the configuration file. Component tables are
// kept in the raw tree and resolved through ComponentTree/DecodeComponent.
type Config struct {
	InputPath    string   `toml:"input_path"`
	WorkspaceDir string   `toml:"workspace_dir"`
	LogDir       string   `toml:"log_dir"`
	LogLevel     string   `toml:"log_level"`
	LogFormat    string   `toml:"log_format"`
	Pipeline     Pipeline `toml:"pipeline"`

	raw map[string]any
}

// DefaultConfigPath returns the standard location of the config file.
func DefaultConfigPath() string {
	return "~/.config/timbre/config.toml"
}

// Load reads, expands, and validates the configuration at path. A missing
// file yields defaults so commands that only need directories still work.
func Load(path string) (*Config, error) {
	resolved := ExpandPath(strings.TrimSpace(path))
	if resolved == "" {
		resolved = ExpandPath(DefaultConfigPath())
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// fall through with defaults
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", resolved, err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, err)
		}
		raw := map[string]any{}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, err)
		}
		cfg.raw = expandPlaceholders(raw, rootStrings(raw)).(map[string]any)
	}

	cfg.applyFallbacks()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse decodes an in-memory TOML document. Used by tests and `config validate`.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	raw := map[string]any{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.raw = expandPlaceholders(raw, rootStrings(raw)).(map[string]any)
	cfg.applyFallbacks()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyFallbacks() {
	if strings.TrimSpace(c.WorkspaceDir) == "" {
		c.WorkspaceDir = defaultWorkspaceDir
	}
	c.InputPath = ExpandPath(c.InputPath)
	c.WorkspaceDir = ExpandPath(c.WorkspaceDir)
	if strings.TrimSpace(c.LogDir) == "" {
		c.LogDir = filepath.Join(c.WorkspaceDir, "logs")
	}
	c.LogDir = ExpandPath(c.LogDir)
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	if strings.TrimSpace(c.LogFormat) == "" {
		c.LogFormat = defaultLogFormat
	}
}

// DatabasePath returns the run-ledger database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.WorkspaceDir, "timbre.db")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.WorkspaceDir, "timbre.lock")
}

// PayloadDir returns the default directory for payload snapshots.
func (c *Config) PayloadDir() string {
	return filepath.Join(c.WorkspaceDir, "payloads")
}

// EnsureDirectories creates the workspace and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.WorkspaceDir, c.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// WriteSample writes the sample configuration to path, refusing to overwrite.
func WriteSample(path string) (string, error) {
	resolved := ExpandPath(path)
	if resolved == "" {
		resolved = ExpandPath(DefaultConfigPath())
	}
	if _, err := os.Stat(resolved); err == nil {
		return "", fmt.Errorf("config already exists at %s", resolved)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(resolved, []byte(sampleConfig), 0o644); err != nil {
		return "", fmt.Errorf("write sample config: %w", err)
	}
	return resolved, nil
}

// ExpandPath resolves a leading ~ against the current user's home directory.
func ExpandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func rootStrings(raw map[string]any) map[string]string {
	out := make(map[string]string)
	for key, value := range raw {
		if s, ok := value.(string); ok {
			out[key] = s
		}
	}
	return out
}

// expandPlaceholders substitutes {{key}} references to root-level string
// values anywhere in the tree. Unknown keys are left verbatim.
func expandPlaceholders(value any, roots map[string]string) any {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			v[key] = expandPlaceholders(item, roots)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = expandPlaceholders(item, roots)
		}
		return v
	case string:
		return expandString(v, roots)
	default:
		return value
	}
}

func expandString(s string, roots map[string]string) string {
	for {
		open := strings.Index(s, "{{")
		if open < 0 {
			return s
		}
		close := strings.Index(s[open:], "}}")
		if close < 0 {
			return s
		}
		close += open
		key := strings.TrimSpace(s[open+2 : close])
		replacement, ok := roots[key]
		if !ok {
			return s
		}
		s = s[:open] + replacement + s[close+2:]
	}
}
