package commands

import (
	"fmt"

	"github.com/leapstack-labs/xsc/internal/template"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate TEMPLATE...",
		Short: "Check templates for directive syntax errors",
		Long: `Validate parses each template without executing it, reporting the
first syntax error per file. Expression and data errors only surface at
render time; validate catches malformed directives, unknown directive
keywords, mismatched end markers and unterminated substitutions.`,
		Example: `  xsc validate customers.xsc
  xsc validate templates/*.xsc`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			failed := 0
			for _, path := range args {
				if _, err := template.ParseFile(path); err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
					continue
				}
				cmdCtx.Logger.Debug("template valid", "path", path)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", path)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d templates failed validation", failed, len(args))
			}
			return nil
		},
	}
}
