package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listenupapp/readlog/internal/ingest"
	"github.com/listenupapp/readlog/internal/resolve"
	"github.com/listenupapp/readlog/internal/service"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var (
		format        string
		commit        bool
		includeReview bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Preview an import file and optionally commit it",
		Long: "Parses a JSON, CSV or spreadsheet reading log and classifies each row\n" +
			"against the existing books. Nothing is written unless --commit is given,\n" +
			"in which case found rows and library completions are applied.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				format = formatFromPath(path)
			}
			f, err := ingest.ParseFormat(format)
			if err != nil {
				return err
			}
			data, err := readUpload(cmd.InOrStdin(), path, f)
			if err != nil {
				return err
			}

			imports, err := ctx.imports()
			if err != nil {
				return err
			}
			preview, err := imports.Parse(cmd.Context(), ctx.userID, data, string(f))
			if err != nil {
				return err
			}

			if !commit {
				if asJSON {
					return writeJSON(cmd, preview)
				}
				printPreview(cmd.OutOrStdout(), preview)
				return nil
			}

			result, err := imports.Commit(cmd.Context(), ctx.userID, approve(preview, includeReview))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, result)
			}
			printCommit(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Input format (json, csv, spreadsheet, xlsx, xls); defaults to the file extension")
	cmd.Flags().BoolVar(&commit, "commit", false, "Write found rows and library completions")
	cmd.Flags().BoolVar(&includeReview, "include-review", false, "With --commit, also import rows that need review as-is")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func formatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return string(ingest.FormatCSV)
	}
	return ext
}

// readUpload reads path ("-" for stdin) into the string form the import
// service expects. Workbooks are base64 encoded.
func readUpload(stdin io.Reader, path string, f ingest.Format) (string, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if f.IsSpreadsheet() {
		return base64.StdEncoding.EncodeToString(raw), nil
	}
	return string(raw), nil
}

// approve turns a preview into the commit the operator would send after
// accepting every found row and library completion.
func approve(p *resolve.Preview, includeReview bool) service.CommitRequest {
	req := service.CommitRequest{
		BooksToImport:  make([]ingest.Row, 0, len(p.Found)),
		LibraryUpdates: make([]service.LibraryUpdate, 0, len(p.LibraryUpdates)),
	}
	for _, f := range p.Found {
		req.BooksToImport = append(req.BooksToImport, f.Row)
	}
	if includeReview {
		for _, r := range p.NeedsReview {
			req.BooksToImport = append(req.BooksToImport, r.Fallback)
		}
	}
	for _, u := range p.LibraryUpdates {
		req.LibraryUpdates = append(req.LibraryUpdates, service.LibraryUpdate{
			LibraryBookID:   u.LibraryBookID,
			NewDateFinished: u.NewDateFinished,
		})
	}
	return req
}

func printPreview(w io.Writer, p *resolve.Preview) {
	c := p.Counts
	fmt.Fprintf(w, "Preview %s (%s)\n", p.ID, p.Dialect)
	fmt.Fprintln(w, renderTable(
		[]string{"found", "library updates", "duplicates", "needs review", "invalid", "skipped shelves", "total"},
		[][]string{{
			strconv.Itoa(c.Found),
			strconv.Itoa(c.LibraryUpdates),
			strconv.Itoa(c.Duplicates),
			strconv.Itoa(c.NotFound),
			strconv.Itoa(c.Invalid),
			strconv.Itoa(c.SkippedShelves),
			strconv.Itoa(c.Total),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	if len(p.NeedsReview) == 0 && len(p.Invalid) == 0 {
		return
	}
	rows := make([][]string, 0, len(p.NeedsReview)+len(p.Invalid))
	for _, r := range p.NeedsReview {
		rows = append(rows, []string{strconv.Itoa(r.Index + 1), joinNonEmpty(" / ", r.Fallback.Title, r.Fallback.Author), r.Reason})
	}
	for _, r := range p.Invalid {
		rows = append(rows, []string{strconv.Itoa(r.Index + 1), joinNonEmpty(" / ", r.Row.Title, r.Row.Author), r.Reason})
	}
	fmt.Fprintln(w, renderTable([]string{"row", "book", "reason"}, rows, []columnAlignment{alignRight}))
}

func printCommit(w io.Writer, r *service.CommitResult) {
	fmt.Fprintf(w, "Imported %d (%d mirrored to library), updated %d library books, %d failed\n",
		r.Imported, r.OwnedMirrored, r.LibraryUpdated, r.Failed)
	for _, e := range r.Errors {
		fmt.Fprintln(w, "  "+e)
	}
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
