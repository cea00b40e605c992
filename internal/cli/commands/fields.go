package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/xsc/internal/source"
	"github.com/spf13/cobra"
)

// NewFieldsCommand creates the fields command.
func NewFieldsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "fields NAME:DATA[@SCHEMA]...",
		Short: "Show field names and sample rows for data sources",
		Long: `Fields opens each data source binding and prints its field names
together with the first few rows, so attribute names for '${name.field}'
references can be inspected before writing a template.`,
		Example: `  xsc fields customers:customers.csv
  xsc fields loans:loans.prn@loans_schema.yaml --limit 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			providers, err := buildProviders(args, cmdCtx.Cfg)
			if err != nil {
				return err
			}

			for _, definition := range args {
				binding, err := source.ParseBinding(definition)
				if err != nil {
					return err
				}
				if err := renderFields(cmd.OutOrStdout(), binding.Name, providers[binding.Name], limit); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum number of sample rows per source")
	return cmd
}

func renderFields(w io.Writer, name string, provider source.Provider, limit int) error {
	fields, err := provider.Fields()
	if err != nil {
		return err
	}

	reader, err := provider.Open()
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(fields))
	for i, field := range fields {
		headerRow[i] = field
	}
	t.AppendHeader(headerRow)

	shown := 0
	for shown < limit {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		tr := make(table.Row, len(fields))
		for i := range fields {
			if i < len(row.Values) {
				tr[i] = row.Values[i]
			}
		}
		t.AppendRow(tr)
		shown++
	}

	_, _ = fmt.Fprintf(w, "%s:\n", name)
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d sample rows)\n", shown)
	return nil
}
