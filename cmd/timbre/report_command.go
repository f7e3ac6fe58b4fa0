package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"timbre/internal/components"
	"timbre/internal/frame"
	"timbre/internal/payload"
	"timbre/internal/pipeline"
)

// viewFrame resolves a named report view over a payload.
func viewFrame(p *payload.Payload, view string, allPaths, meta bool) (*frame.Frame, error) {
	switch view {
	case "features":
		return p.Features(allPaths, meta), nil
	case "classification":
		return p.Classifications(allPaths, meta), nil
	case "full":
		return p.Full(allPaths, meta), nil
	default:
		return nil, fmt.Errorf("unknown view %q: use features, classification, or full", view)
	}
}

func newReportCommand(cmdCtx *commandContext) *cobra.Command {
	var viewFlag string
	var allPathsFlag bool
	var metaFlag bool
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "report <component>",
		Short: "Render the latest saved payload of a component",
		Long: "Render a view over the newest final payload snapshot a component wrote. " +
			"Snapshots exist for components configured with save_payload.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			name := args[0]
			reg, ok := components.Builtin().Lookup(name)
			if !ok {
				return fmt.Errorf("unknown component %q", name)
			}

			snapshot, ok, err := pipeline.LatestFinal(cfg.PayloadDir(), string(reg.Category), name)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no saved payload for %s: enable save_payload and run the pipeline first", name)
			}
			restored, err := pipeline.LoadSnapshot(snapshot)
			if err != nil {
				return err
			}

			f, err := viewFrame(restored, viewFlag, allPathsFlag, metaFlag)
			if err != nil {
				return err
			}
			if strings.TrimSpace(outputFlag) != "" {
				if err := writeFrameCSV(outputFlag, f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", f.Len(), outputFlag)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFrame(f))
			return nil
		},
	}

	cmd.Flags().StringVar(&viewFlag, "view", "full", "View to render: features, classification, or full")
	cmd.Flags().BoolVar(&allPathsFlag, "all-paths", false, "Include the full paths column lineage")
	cmd.Flags().BoolVar(&metaFlag, "meta", false, "Include segment and timing meta columns")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the view as CSV instead of a table")
	return cmd
}

func renderFrame(f *frame.Frame) string {
	columns := f.Columns()
	rows := make([][]string, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		row := make([]string, len(columns))
		for j, column := range columns {
			if value := f.Value(i, column); value != nil {
				row[j] = fmt.Sprint(value)
			}
		}
		rows = append(rows, row)
	}
	return renderTable(columns, rows)
}

func writeFrameCSV(path string, f *frame.Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %s: %w", path, err)
	}
	defer out.Close()
	if err := f.WriteCSV(out); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return out.Close()
}
