package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mark3labs/rentalwizard/internal/rental"
	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List rental-object categories and their wizard steps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "CATEGORY\tTIME MODE\tSTEPS")
		for _, c := range rental.Categories {
			steps := rental.StepsForCategory(c)
			ids := make([]string, len(steps))
			for i, s := range steps {
				ids[i] = string(s)
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", c, rental.GetConfig(c).DefaultTimeMode, strings.Join(ids, " > "))
		}
		return w.Flush()
	},
}
