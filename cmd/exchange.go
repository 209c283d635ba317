package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bkgoodman/superpwdhash/internal/core"
)

// FilePermSecure is used for exported site lists
const FilePermSecure = 0600

// Export writes the registry as a JSON array to path, or stdout when
// path is empty or "-"
func Export(ctx context.Context, dbPath, path string) error {
	keeper := core.New(dbPath)
	defer keeper.Close()

	data, err := keeper.Export(ctx)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, FilePermSecure); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "exported to %s\n", path)
	return nil
}

// Import merges a JSON array of hosts from path ("-" for stdin)
func Import(ctx context.Context, dbPath, path string, dryRun bool) error {
	if path == "" {
		return &UsageError{
			Msg:   "import requires a file argument",
			Usage: "superpwdhash import [--dry-run] <file|->",
		}
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	keeper := core.New(dbPath)
	defer keeper.Close()

	result, err := keeper.Import(ctx, data, dryRun)
	if err != nil {
		return err
	}

	fmt.Fprint(stdout, result.Diff)
	verb := "imported"
	if dryRun {
		verb = "would import"
	}
	fmt.Fprintf(stdout, "%s: %d sites (%d skipped)\n", verb, len(result.Added), result.Skipped)
	return nil
}
