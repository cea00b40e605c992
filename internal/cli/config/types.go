// Package config loads xsc configuration from file, environment
// variables and CLI flags.
package config

// Defaults for configuration values.
const (
	// DefaultModulesDir is the directory searched for .star modules.
	DefaultModulesDir = "modules"
)

// Config holds the resolved xsc configuration.
type Config struct {
	// ModulesDir is searched for user .star modules by import directives.
	ModulesDir string `koanf:"modules_dir"`

	// Encoding is the default character set for data files whose schema
	// does not declare one. Empty means UTF-8.
	Encoding string `koanf:"encoding"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}
