package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/rentalwizard/internal/config"
	"github.com/mark3labs/rentalwizard/internal/logger"
	"github.com/spf13/cobra"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootFlags struct {
	dataDir     string
	backendURL  string
	draftStore  string
	hooksFile   string
	metricsAddr string
	logLevel    string
}

// cfg is loaded once per invocation by the root pre-run hook.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rentalwizard",
	Short: "Create and edit rental objects step by step",
	Long: `rentalwizard drives the rental-object wizard without a browser.

It walks a listing (venue, equipment, vehicle or experience) through the
category steps, validates each step, keeps a local draft, and saves or
publishes the result to the rental-object API. Sessions are journaled in
an embedded NATS JetStream store under the data directory.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.dataDir, "data-dir", "", "Data directory for drafts and the session journal (default: .rentalwizard)")
	pf.StringVar(&rootFlags.backendURL, "backend-url", "", "Rental-object API base URL (default: in-process simulator)")
	pf.StringVar(&rootFlags.draftStore, "draft-store", "", "Draft storage: memory, file or nats")
	pf.StringVar(&rootFlags.hooksFile, "hooks-file", "", "Hooks file (default: ./.rentalwizard.hooks.yml)")
	pf.StringVar(&rootFlags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveBackendCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(setupCmd)
}

// loadConfig resolves the configuration: flags > env > project > global > defaults.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, val string) {
		if flags.Changed(name) {
			*dst = val
		}
	}
	override("data-dir", &c.DataDir, rootFlags.dataDir)
	override("backend-url", &c.BackendURL, rootFlags.backendURL)
	override("draft-store", &c.DraftStore, rootFlags.draftStore)
	override("hooks-file", &c.HooksFile, rootFlags.hooksFile)
	override("metrics-addr", &c.MetricsAddr, rootFlags.metricsAddr)
	override("log-level", &c.LogLevel, rootFlags.logLevel)

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logger.Default.Configure(c.LogLevel, c.LogFile); err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	cfg = c
	logger.Debug("config: data_dir=%s draft_store=%s backend_url=%q", c.DataDir, c.DraftStore, c.BackendURL)
	return nil
}
