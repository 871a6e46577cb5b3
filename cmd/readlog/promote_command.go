package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/listenupapp/readlog/internal/domain"
	domainerrors "github.com/listenupapp/readlog/internal/errors"
)

func newPromoteCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "promote <id>",
		Short: "Move a completed-only book into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := domain.ParseEntryRef(args[0])
			if err != nil {
				return domainerrors.Validationf("invalid entry id %q", args[0]).WithCause(err)
			}

			finished, err := ctx.finished()
			if err != nil {
				return err
			}
			result, err := finished.Promote(cmd.Context(), ctx.userID, ref)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, result)
			}
			verb := "Created"
			if result.Merged {
				verb = "Merged into"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s library book %d (%s)\n", verb, result.LibraryBookID, result.Entry.Title)
			if result.RatingMigrated {
				fmt.Fprintln(cmd.OutOrStdout(), "Rating carried over.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
