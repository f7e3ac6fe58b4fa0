package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"timbre/internal/runstore"
)

func newRunsCommand(cmdCtx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recent pipeline runs or show one run's stages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runstore.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				events, err := store.StageEvents(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Run %s (%s) started %s\n", run.ID, run.Status,
					run.CreatedAt.Local().Format(time.RFC822))
				fmt.Fprintf(out, "Components: %s\n", strings.Join(run.Components, ", "))
				if run.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", run.Error)
				}
				fmt.Fprintln(out, renderStageEvents(events))
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.Status,
					strconv.Itoa(run.RowCount),
					strings.Join(run.Components, ", "),
					run.CreatedAt.Local().Format(time.RFC822),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Status", "Rows", "Components", "Started"}, rows, 2))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}
