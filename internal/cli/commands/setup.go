// Package commands implements the xsc subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/xsc/internal/cli/config"
	"github.com/leapstack-labs/xsc/internal/source"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext creates a CommandContext from the command's state.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetCurrentConfig()
	if cfg == nil {
		cfg = &config.Config{ModulesDir: config.DefaultModulesDir}
	}
	return &CommandContext{
		Cfg:    cfg,
		Logger: config.GetLogger(cmd.Context()),
	}
}

// buildProviders parses binding definitions and constructs a provider
// per data source. Names must be unique within one execution.
func buildProviders(definitions []string, cfg *config.Config) (map[string]source.Provider, error) {
	providers := make(map[string]source.Provider, len(definitions))
	opts := source.Options{DefaultEncoding: cfg.Encoding}

	for _, definition := range definitions {
		binding, err := source.ParseBinding(definition)
		if err != nil {
			return nil, err
		}
		if _, exists := providers[binding.Name]; exists {
			return nil, fmt.Errorf("duplicate data source name must be resolved: %s", binding.Name)
		}
		provider, err := source.New(binding, opts)
		if err != nil {
			return nil, err
		}
		providers[binding.Name] = provider
	}
	return providers, nil
}
