package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/rentalwizard/internal/rental"
	"github.com/mark3labs/rentalwizard/internal/validation"
	"github.com/spf13/cobra"
	sigsyaml "sigs.k8s.io/yaml"
)

var validateFlags struct {
	json bool
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate form data from a JSON or YAML file",
	Long: `Validate form data against every step of its category and report
whether it is ready to publish. Exits non-zero when any step has errors.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateFlags.json, "json", false, "Print the result as JSON")
}

type validateResult struct {
	Category rental.Category            `json:"category"`
	Errors   map[rental.StepID][]string `json:"errors"`
	Publish  validation.PublishCheck    `json:"publish"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading form data: %w", err)
	}
	raw, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("parsing form data: %w", err)
	}
	fd, err := rental.ParseFormData(raw)
	if err != nil {
		return err
	}

	steps := rental.StepsForCategory(fd.Category)
	res := validateResult{
		Category: fd.Category,
		Errors:   validation.ValidateAllSteps(steps, fd, fd.Category),
		Publish:  validation.CanPublish(fd, fd.Category),
	}

	out := cmd.OutOrStdout()
	if validateFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(out, "%s (%s)\n", fd.Name, fd.Category)
		for _, id := range steps {
			if msgs := res.Errors[id]; len(msgs) > 0 {
				for _, m := range msgs {
					_, _ = fmt.Fprintf(out, "  x %-17s %s\n", id, m)
				}
			} else {
				_, _ = fmt.Fprintf(out, "  v %s\n", id)
			}
		}
		if res.Publish.CanPublish {
			_, _ = fmt.Fprintln(out, "Ready to publish")
		} else {
			_, _ = fmt.Fprintf(out, "Missing before publishing: %v\n", res.Publish.MissingFields)
		}
	}

	if len(res.Errors) > 0 {
		return errors.New("form data has validation errors")
	}
	return nil
}
