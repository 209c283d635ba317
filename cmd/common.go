package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bkgoodman/superpwdhash/internal/core"
	"github.com/bkgoodman/superpwdhash/internal/crypto"
	"github.com/bkgoodman/superpwdhash/internal/pwdhash"
)

// stdout receives command results; prompts and diagnostics go to stderr
var stdout io.Writer = os.Stdout

// UsageError is returned when a command is invoked with bad arguments
type UsageError struct {
	Msg   string
	Usage string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// GetPassword retrieves the master password from the environment or
// prompts for it. The caller must Destroy the returned secret.
func GetPassword(prompt string) (*crypto.Secret, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		return crypto.NewSecret(password), nil
	}

	password, err := core.ReadPassword(prompt)
	if err != nil {
		return nil, err
	}
	return crypto.NewSecret(password), nil
}

// GetPasswordForInit checks the environment first, then prompts twice
func GetPasswordForInit() (*crypto.Secret, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		return crypto.NewSecret(password), nil
	}

	password, err := core.ReadPasswordConfirm()
	if err != nil {
		return nil, err
	}
	return crypto.NewSecret(password), nil
}

// HandleError prints err for a human. It never exits, so deferred wipes
// in the caller still run.
func HandleError(err error) {
	var usage *UsageError
	switch {
	case errors.As(err, &usage):
		fmt.Fprintf(os.Stderr, "Error: %s\n", usage.Msg)
		if usage.Usage != "" {
			fmt.Fprintf(os.Stderr, "Usage: %s\n", usage.Usage)
		}
	case errors.Is(err, core.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: no site registry yet\n")
		fmt.Fprintf(os.Stderr, "Run 'superpwdhash add <site>' or 'superpwdhash init' first\n")
	case errors.Is(err, core.ErrAlreadyExists):
		fmt.Fprintf(os.Stderr, "Error: a master password verifier is already stored\n")
	case errors.Is(err, core.ErrWrongPassword):
		fmt.Fprintf(os.Stderr, "Error: wrong master password\n")
	case errors.Is(err, core.ErrPasswordRequired):
		fmt.Fprintf(os.Stderr, "Error: master password required\n")
		fmt.Fprintf(os.Stderr, "Type it at the prompt or set %s\n", core.PasswordEnv)
	case errors.Is(err, pwdhash.ErrInvalidInput):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Check the site name; see 'superpwdhash help get'\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}
