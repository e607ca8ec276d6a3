package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/rentalwizard/internal/mcpserver"
	"github.com/mark3labs/rentalwizard/internal/rental"
	"github.com/mark3labs/rentalwizard/internal/wizard"
	"github.com/spf13/cobra"
)

var mcpFlags struct {
	http     string
	slug     string
	clone    string
	category string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose a wizard session as MCP tools",
	Long: `Start one wizard session and serve it to an MCP client, over stdio by
default or over streamable HTTP with --http. Tools: wizard-state,
wizard-update, wizard-set-category, wizard-next, wizard-prev, wizard-goto,
wizard-validate, wizard-save, wizard-publish, wizard-cancel, wizard-changes.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	f := mcpCmd.Flags()
	f.StringVar(&mcpFlags.http, "http", "", "Serve streamable HTTP on this address instead of stdio")
	f.StringVar(&mcpFlags.slug, "slug", "", "Edit an existing rental object")
	f.StringVar(&mcpFlags.clone, "clone", "", "Start from a copy of an existing rental object")
	f.StringVar(&mcpFlags.category, "category", "", "Starting category for new rental objects")
	mcpCmd.MarkFlagsMutuallyExclusive("slug", "clone")
}

func runMCP(cmd *cobra.Command, args []string) error {
	var category rental.Category
	if mcpFlags.category != "" {
		c, err := rental.ParseCategory(mcpFlags.category)
		if err != nil {
			return err
		}
		category = c
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout belongs to the stdio transport.
	rt, err := openRuntime(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	opts := rt.options(printNavigator{out: os.Stderr}, mcpserver.Confirmer)
	opts.Slug = mcpFlags.slug
	opts.CloneFromSlug = mcpFlags.clone
	opts.Category = category

	ctrl, err := wizard.New(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to start wizard: %w", err)
	}
	srv := mcpserver.New(ctrl)

	if mcpFlags.http == "" {
		return srv.ServeStdio()
	}

	if _, err := srv.Start(ctx, mcpFlags.http); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "MCP server listening on %s\n", srv.URL())
	<-ctx.Done()
	return srv.Stop()
}
