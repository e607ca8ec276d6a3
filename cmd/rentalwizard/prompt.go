package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/mark3labs/rentalwizard/internal/wizard"
)

// printNavigator reports navigation instead of moving a browser.
type printNavigator struct {
	out io.Writer
}

func (n printNavigator) Navigate(path string) {
	_, _ = fmt.Fprintf(n.out, "-> %s\n", path)
}

func (n printNavigator) Replace(path string) {
	_, _ = fmt.Fprintf(n.out, "=> %s\n", path)
}

// promptConfirmer asks on the terminal. With assumeYes it never asks.
func promptConfirmer(assumeYes bool) wizard.Confirmer {
	return wizard.ConfirmFunc(func(ctx context.Context, message string) (bool, error) {
		if assumeYes {
			return true, nil
		}

		var discard bool
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Discard changes?").
					Description(message).
					Affirmative("Discard").
					Negative("Keep").
					Value(&discard),
			),
		).RunWithContext(ctx)
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return discard, nil
	})
}
