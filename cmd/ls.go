package cmd

import (
	"context"
	"fmt"

	"github.com/bkgoodman/superpwdhash/internal/core"
)

// Ls shows the registered sites. With quiet, only realms are printed,
// one per line, for shell completion and scripts.
func Ls(ctx context.Context, dbPath string, quiet bool) error {
	keeper := core.New(dbPath)
	defer keeper.Close()

	// No password required
	sites, err := keeper.Sites(ctx)
	if err != nil {
		return err
	}

	if quiet {
		for _, s := range sites {
			fmt.Fprintln(stdout, s.Realm)
		}
		return nil
	}

	if len(sites) == 0 {
		fmt.Fprintln(stdout, "No sites registered")
		return nil
	}

	fmt.Fprintln(stdout, "Sites:")
	for _, s := range sites {
		fmt.Fprintf(stdout, "  %s (added %s)\n", s.Realm, s.Added.Local().Format("2006-01-02"))
	}
	return nil
}
