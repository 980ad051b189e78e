// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and EDUPREDICT_ env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// LogFile, when set, also writes logs to a rotated file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ModelPath is the classifier artifact loaded once at startup.
	ModelPath string `koanf:"model_path"`

	// Language is the BCP 47 tag used to format percentages, e.g. "en" or "id".
	Language string `koanf:"language"`

	// MaxBodyBytes caps the size of a POST /predict body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9080",
		ModelPath:    "./models/student_logreg.yaml",
		Language:     "en",
		MaxBodyBytes: 64 << 10,
	}
}
