package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// defaultUser is used when neither --user nor READLOG_USER is set.
const defaultUser = "local"

// execute runs the CLI with args and releases the container afterwards,
// whether or not the command succeeded.
func execute(ctx context.Context, args []string, stdout io.Writer) error {
	cc := newCommandContext()
	defer cc.close()

	cmd := newRootCommand(cc)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "readlog",
		Short:         "Reading log import, reconciliation and export",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	user := os.Getenv("READLOG_USER")
	if user == "" {
		user = defaultUser
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&ctx.userID, "user", "u", user, "User whose reading log to use")
	pf.StringVar(&ctx.flags.DBDriver, "db-driver", "", "Database driver (sqlite, postgres)")
	pf.StringVar(&ctx.flags.DBDSN, "db-dsn", "", "Database DSN or sqlite file path")
	pf.StringVar(&ctx.flags.Lookup, "lookup-provider", "", "Metadata provider (openlibrary, none)")
	pf.StringVar(&ctx.flags.LookupURL, "lookup-url", "", "Metadata provider base URL")
	pf.StringVar(&ctx.flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&ctx.flags.EnvFile, "env-file", ".env", "Path to .env file")

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newPromoteCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))

	return rootCmd
}
