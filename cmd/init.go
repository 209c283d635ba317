package cmd

import (
	"context"
	"fmt"

	"github.com/bkgoodman/superpwdhash/internal/core"
)

// Init stores a master password verifier in the registry
func Init(_ context.Context, dbPath string) error {
	keeper := core.New(dbPath)
	defer keeper.Close()

	secret, err := GetPasswordForInit()
	if err != nil {
		return err
	}
	defer secret.Destroy()

	if err := secret.Use(keeper.Init); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✓ Master password verifier stored in %s\n", keeper.Path())
	return nil
}
