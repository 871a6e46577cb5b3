package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		preset string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the reading log as JSON or CSV",
		Long: "Writes the unified reading log. The file name defaults to the one the\n" +
			"API would suggest; use -o - to write to stdout.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exports, err := ctx.exports()
			if err != nil {
				return err
			}
			file, err := exports.Export(cmd.Context(), ctx.userID, preset, format)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(file.Data)
				return err
			}
			if output == "" {
				output = file.Filename
			}
			if err := os.WriteFile(output, file.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", output, len(file.Data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&preset, "type", "t", "minimal", "Export preset (minimal, comprehensive)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, or - for stdout")
	return cmd
}
