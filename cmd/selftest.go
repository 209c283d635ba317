package cmd

import (
	"context"
	"fmt"

	"github.com/bkgoodman/superpwdhash/internal/pwdhash"
)

// SelfTest checks this build against the pinned reference vectors
func SelfTest(_ context.Context) error {
	if err := pwdhash.SelfTest(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✓ self-test passed (%d vectors, profiles: %v)\n",
		len(pwdhash.KnownAnswers()), pwdhash.ProfileNames())
	return nil
}
