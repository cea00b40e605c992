package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/xsc/internal/emit"
	"github.com/leapstack-labs/xsc/internal/engine"
	"github.com/leapstack-labs/xsc/internal/template"
	"github.com/spf13/cobra"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "render TEMPLATE [NAME:DATA[@SCHEMA]...]",
		Short: "Convert tabular data to an XML document using a template",
		Long: `Render executes an xsc template against the given data sources and
writes the resulting XML document.

TEMPLATE is an XML file, typically with an '.xsc' suffix, annotated with
xsc processing instructions. Each DATA argument binds a source name used
by '<?xsc for name?>' directives to a CSV, fixed-width or SQLite file,
with an optional schema descriptor after '@'.

The output is written atomically: on any failure the destination file is
left untouched.`,
		Example: `  # Render customers.xsc with one CSV source into customers.xml
  xsc render customers.xsc customers:customers.csv

  # Validate values against a schema descriptor
  xsc render customers.xsc customers:customers.csv@customers_schema.yaml

  # Join two sources, explicit output path
  xsc render report.xsc customer:customers.csv loan:loans.csv -o /tmp/report.xml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"XML file to write (default: TEMPLATE path with suffix replaced by '.xml')")
	return cmd
}

func runRender(cmd *cobra.Command, args []string, outputPath string) error {
	cmdCtx := NewCommandContext(cmd)
	templatePath := args[0]

	target, err := deriveOutputPath(templatePath, outputPath)
	if err != nil {
		return err
	}

	providers, err := buildProviders(args[1:], cmdCtx.Cfg)
	if err != nil {
		return err
	}

	cmdCtx.Logger.Debug("read template", "path", templatePath)
	tpl, err := template.ParseFile(templatePath)
	if err != nil {
		return err
	}

	// Stream into a temp file next to the destination; rename into place
	// only after the whole execution succeeded.
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpPath := tmp.Name()

	eng := engine.New(providers, emit.NewWriter(tmp), engine.Options{
		Logger:     cmdCtx.Logger,
		ModulesDir: cmdCtx.Cfg.ModulesDir,
	})

	if err := eng.Execute(tpl); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to finish output file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	cmdCtx.Logger.Debug("wrote output", "path", target)
	if cmdCtx.Cfg.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", target)
	}
	return nil
}

// deriveOutputPath applies the default output rule: the template path
// with its suffix replaced by .xml, unless an explicit override is given.
func deriveOutputPath(templatePath, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	ext := filepath.Ext(templatePath)
	if strings.EqualFold(ext, ".xml") {
		return "", fmt.Errorf("--output must be specified or the suffix of %q must be changed to something other than '.xml'", templatePath)
	}
	return strings.TrimSuffix(templatePath, ext) + ".xml", nil
}
