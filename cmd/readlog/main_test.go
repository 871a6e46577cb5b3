package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readlog/internal/domain"
	"github.com/listenupapp/readlog/internal/resolve"
)

type cli struct {
	t   *testing.T
	dsn string
	dir string
}

func newCLI(t *testing.T) *cli {
	dir := t.TempDir()
	return &cli{t: t, dsn: filepath.Join(dir, "cli.db"), dir: dir}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	base := []string{"--db-dsn", c.dsn, "--lookup-provider", "none", "--env-file", "", "--user", "reader"}
	var out bytes.Buffer
	err := execute(context.Background(), append(args, base...), &out)
	return out.String(), err
}

func (c *cli) writeFile(name, content string) string {
	c.t.Helper()
	path := filepath.Join(c.dir, name)
	require.NoError(c.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleCSV = "Title,Author,Date Read\n" +
	"Piranesi,Susanna Clarke,2024-03-01\n" +
	"The Left Hand of Darkness,Ursula K. Le Guin,2023-11-12\n" +
	",Nobody,2024-01-01\n"

func TestImport_PreviewWritesNothing(t *testing.T) {
	c := newCLI(t)
	path := c.writeFile("log.csv", sampleCSV)

	out, err := c.run("import", path, "--json")
	require.NoError(t, err)

	var preview resolve.Preview
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	assert.Equal(t, 3, preview.Counts.Total)
	assert.Equal(t, 2, preview.Counts.NotFound)
	assert.Equal(t, 1, preview.Counts.Invalid)

	out, err = c.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "No finished books.")
}

func TestImport_TablePreview(t *testing.T) {
	c := newCLI(t)
	path := c.writeFile("log.csv", sampleCSV)

	out, err := c.run("import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Needs Review")
	assert.Contains(t, out, resolve.ReasonMissingTitle)
}

func TestImport_CommitListPromoteExport(t *testing.T) {
	c := newCLI(t)
	path := c.writeFile("log.csv", sampleCSV)

	out, err := c.run("import", path, "--commit", "--include-review")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2")

	out, err = c.run("list", "--json")
	require.NoError(t, err)
	var entries []domain.UnifiedEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Piranesi", entries[0].Title)
	assert.True(t, entries[0].Ref.IsCompleted())

	out, err = c.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "Date Finished")
	assert.Contains(t, out, "Piranesi")

	out, err = c.run("promote", entries[0].Ref.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Created library book")

	_, err = c.run("promote", entries[0].Ref.String())
	assert.Error(t, err, "the completed entry is gone after promotion")

	out, err = c.run("export", "--type", "comprehensive", "--format", "csv", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Piranesi")
	assert.Contains(t, out, "The Left Hand of Darkness")

	target := filepath.Join(c.dir, "out.json")
	out, err = c.run("export", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+target)
	_, err = os.Stat(target)
	require.NoError(t, err)
}

func TestImport_RecommitReportsDuplicates(t *testing.T) {
	c := newCLI(t)
	path := c.writeFile("log.csv", "Title,Author\nPiranesi,Susanna Clarke\n")

	_, err := c.run("import", path, "--commit", "--include-review")
	require.NoError(t, err)

	out, err := c.run("import", path, "--json")
	require.NoError(t, err)
	var preview resolve.Preview
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	assert.Equal(t, 1, preview.Counts.Duplicates)
}

func TestCLI_Errors(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("promote", "book_7")
	assert.Error(t, err)

	_, err = c.run("import", filepath.Join(c.dir, "missing.csv"))
	assert.Error(t, err)

	_, err = c.run("import", c.writeFile("log.numbers", "x"))
	assert.Error(t, err)

	_, err = c.run("export", "--format", "yaml")
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "csv", formatFromPath("goodreads_library_export.csv"))
	assert.Equal(t, "xlsx", formatFromPath("Log.XLSX"))
	assert.Equal(t, "csv", formatFromPath("-"))
}
