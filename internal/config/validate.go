package config

import (
	"fmt"
	"strings"
)

// Validate checks settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var problems []string

	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format: unsupported value %q", c.LogFormat))
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level: unsupported value %q", c.LogLevel))
	}

	seen := make(map[string]struct{}, len(c.Pipeline.Components))
	for _, name := range c.Pipeline.Components {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			problems = append(problems, "pipeline.components: empty component name")
			continue
		}
		if _, dup := seen[trimmed]; dup {
			problems = append(problems, fmt.Sprintf("pipeline.components: duplicate component %q", trimmed))
		}
		seen[trimmed] = struct{}{}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
