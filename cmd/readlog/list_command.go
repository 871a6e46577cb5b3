package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/listenupapp/readlog/internal/domain"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show every finished book, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			finished, err := ctx.finished()
			if err != nil {
				return err
			}
			entries, err := finished.List(cmd.Context(), ctx.userID)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No finished books.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEntries(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderEntries(entries []domain.UnifiedEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		owned := ""
		if e.Owned {
			owned = "yes"
		}
		rows = append(rows, []string{
			e.Ref.String(),
			e.Title,
			e.Author,
			e.DateFinished,
			owned,
			string(e.Source),
		})
	}
	return renderTable(
		[]string{"id", "title", "author", "date finished", "owned", "source"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	)
}
