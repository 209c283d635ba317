package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/bkgoodman/superpwdhash/internal/core"
	"github.com/bkgoodman/superpwdhash/internal/realm"
)

// Remove removes sites from the registry
func Remove(ctx context.Context, dbPath string, sites []string) error {
	if len(sites) == 0 {
		return &UsageError{
			Msg:   "rm requires at least one site",
			Usage: "superpwdhash rm <site> [site...]",
		}
	}

	keeper := core.New(dbPath)
	defer keeper.Close()

	removed, err := keeper.RemoveSites(ctx, sites)
	if err != nil {
		return err
	}

	gone := make(map[string]bool, len(removed))
	for _, r := range removed {
		gone[r] = true
		fmt.Fprintf(stdout, "removed: %s\n", r)
	}
	for _, site := range sites {
		if r := realm.Normalize(site); r != "" && !gone[r] {
			fmt.Fprintf(os.Stderr, "warning: %s is not registered\n", r)
		}
	}

	// Compact database to reclaim space
	if len(removed) > 0 {
		if err := keeper.Compact(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: compaction failed: %s\n", err)
		}
	}
	return nil
}
