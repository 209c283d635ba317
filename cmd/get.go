package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bkgoodman/superpwdhash/internal/core"
	"github.com/bkgoodman/superpwdhash/internal/pwdhash"
)

// Get derives and prints the password for each site. A single site prints
// the bare password; several print "realm<TAB>password" lines.
func Get(ctx context.Context, dbPath string, sites []string, profile string, add bool) error {
	if len(sites) == 0 {
		return &UsageError{
			Msg:   "get requires at least one site",
			Usage: "superpwdhash get [--add] [--profile name] <site> [site...]",
		}
	}

	params, ok := pwdhash.Profile(profile)
	if !ok {
		return &UsageError{
			Msg:   fmt.Sprintf("unknown profile %q", profile),
			Usage: "known profiles: " + strings.Join(pwdhash.ProfileNames(), ", "),
		}
	}

	keeper := core.New(dbPath)
	defer keeper.Close()

	secret, err := GetPassword("Enter master password: ")
	if err != nil {
		return err
	}
	defer secret.Destroy()

	var derived []core.Derived
	err = secret.Use(func(password []byte) error {
		var err error
		derived, err = keeper.DeriveAll(ctx, password, sites, params)
		return err
	})
	if err != nil {
		return err
	}

	for _, d := range derived {
		if len(sites) == 1 {
			fmt.Fprintln(stdout, d.Password)
		} else {
			fmt.Fprintf(stdout, "%s\t%s\n", d.Realm, d.Password)
		}
	}

	if add {
		added, err := keeper.AddSites(ctx, sites)
		if err != nil {
			return err
		}
		for _, r := range added {
			fmt.Fprintf(os.Stderr, "added: %s\n", r)
		}
	}
	return nil
}
