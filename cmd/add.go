package cmd

import (
	"context"
	"fmt"

	"github.com/bkgoodman/superpwdhash/internal/core"
)

// Add registers sites
func Add(ctx context.Context, dbPath string, sites []string) error {
	if len(sites) == 0 {
		return &UsageError{
			Msg:   "add requires at least one site",
			Usage: "superpwdhash add <site> [site...]",
		}
	}

	keeper := core.New(dbPath)
	defer keeper.Close()

	added, err := keeper.AddSites(ctx, sites)
	if err != nil {
		return err
	}

	if len(added) == 0 {
		fmt.Fprintln(stdout, "No new sites")
		return nil
	}
	for _, r := range added {
		fmt.Fprintf(stdout, "added: %s\n", r)
	}
	return nil
}
