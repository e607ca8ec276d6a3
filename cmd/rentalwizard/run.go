package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/rentalwizard/internal/script"
	"github.com/mark3labs/rentalwizard/internal/wizard"
	"github.com/spf13/cobra"
)

var runFlags struct {
	yes bool
}

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Drive a wizard session from a YAML script",
	Long: `Run a wizard session headlessly. The script selects the mode (slug for
edit, cloneFrom for clone, otherwise create) and lists actions:

  category: UTSTYR
  actions:
    - update: {name: Drill, inventory: {totalQuantity: 3}}
    - next: true
    - expect: {step: details}
    - publish: true

Create sessions resume the saved draft, so an interrupted script can be
continued by running another one.`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	runCmd.Flags().BoolVarP(&runFlags.yes, "yes", "y", false, "Discard unsaved changes on cancel without asking")
}

func runScript(cmd *cobra.Command, args []string) error {
	s, err := script.Load(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	rt, err := openRuntime(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
	}()

	opts := rt.options(printNavigator{out: out}, promptConfirmer(runFlags.yes))
	s.Apply(&opts)

	ctrl, err := wizard.New(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to start wizard: %w", err)
	}

	snap := ctrl.Snapshot()
	_, _ = fmt.Fprintf(out, "%s session, %s, %d steps\n", snap.Mode, snap.FormData.Category, len(snap.Steps))
	return s.Run(ctx, ctrl, out)
}
