package config

const (
	defaultWorkspaceDir = "~/.local/share/timbre"
	defaultLogLevel     = "info"
	defaultLogFormat    = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		WorkspaceDir: defaultWorkspaceDir,
		LogLevel:     defaultLogLevel,
		LogFormat:    defaultLogFormat,
	}
}
