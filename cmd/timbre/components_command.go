package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"timbre/internal/components"
	"timbre/internal/stage"
)

func newComponentsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List available pipeline components",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := components.Builtin()
			title := cases.Title(language.English)

			var rows [][]string
			for _, category := range stage.Categories() {
				label := title.String(strings.ReplaceAll(string(category), "_", " "))
				for _, name := range registry.Names(category) {
					reg, _ := registry.Lookup(name)
					availability := "available"
					if err := reg.Available(); err != nil {
						availability = err.Error()
					}
					rows = append(rows, []string{label, name, availability})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Category", "Component", "Availability"}, rows))
			return nil
		},
	}
}
