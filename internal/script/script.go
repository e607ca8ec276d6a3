// Package script drives a wizard session from a YAML file of actions, the
// headless counterpart of clicking through the wizard.
//
//	category: UTSTYR
//	actions:
//	  - next: true
//	  - nextBlocked: true
//	  - update: {name: Drill, inventory: {totalQuantity: 3}}
//	  - next: true
//	  - expect: {step: details}
//	  - publish: true
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/rentalwizard/internal/rental"
	"github.com/mark3labs/rentalwizard/internal/wizard"
	sigsyaml "sigs.k8s.io/yaml"
)

// ErrBlocked is returned when a next action fails step validation.
var ErrBlocked = errors.New("step is not valid")

// ErrExpectation is returned when an expect action does not hold.
var ErrExpectation = errors.New("expectation failed")

// Script is a wizard session description.
type Script struct {
	// Slug opens an existing object in edit mode.
	Slug string `json:"slug,omitempty"`
	// CloneFrom copies an existing object into a new draft.
	CloneFrom string          `json:"cloneFrom,omitempty"`
	Category  rental.Category `json:"category,omitempty"`
	Actions   []Action        `json:"actions"`
}

// Action is one wizard call. Exactly one field is set.
type Action struct {
	Update      *rental.Patch `json:"update,omitempty"`
	SetCategory string        `json:"setCategory,omitempty"`
	Next        bool          `json:"next,omitempty"`
	// NextBlocked tries to advance and passes only when validation stops it.
	NextBlocked bool    `json:"nextBlocked,omitempty"`
	Prev        bool    `json:"prev,omitempty"`
	GoTo        string  `json:"goto,omitempty"`
	Validate    bool    `json:"validate,omitempty"`
	Save        bool    `json:"save,omitempty"`
	Publish     bool    `json:"publish,omitempty"`
	Cancel      bool    `json:"cancel,omitempty"`
	Expect      *Expect `json:"expect,omitempty"`
}

// Expect asserts on the controller state. Unset fields are not checked.
type Expect struct {
	Step  rental.StepID `json:"step,omitempty"`
	Phase wizard.Phase  `json:"phase,omitempty"`
	Dirty *bool         `json:"dirty,omitempty"`
	// Errors lists messages that must be present in the error map.
	Errors []string `json:"errors,omitempty"`
}

func (a Action) name() string {
	var names []string
	add := func(set bool, n string) {
		if set {
			names = append(names, n)
		}
	}
	add(a.Update != nil, "update")
	add(a.SetCategory != "", "setCategory")
	add(a.Next, "next")
	add(a.NextBlocked, "nextBlocked")
	add(a.Prev, "prev")
	add(a.GoTo != "", "goto")
	add(a.Validate, "validate")
	add(a.Save, "save")
	add(a.Publish, "publish")
	add(a.Cancel, "cancel")
	add(a.Expect != nil, "expect")
	return strings.Join(names, "+")
}

// Parse reads a script from YAML or JSON. Unknown keys are rejected.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := sigsyaml.UnmarshalStrict(data, &s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if s.Slug != "" && s.CloneFrom != "" {
		return nil, errors.New("parsing script: slug and cloneFrom are mutually exclusive")
	}
	if s.Category != "" && !s.Category.Valid() {
		return nil, fmt.Errorf("parsing script: unknown category %q", s.Category)
	}
	for i, a := range s.Actions {
		switch n := a.name(); {
		case n == "":
			return nil, fmt.Errorf("parsing script: action %d is empty", i+1)
		case strings.Contains(n, "+"):
			return nil, fmt.Errorf("parsing script: action %d sets %s, want exactly one", i+1, n)
		}
	}
	return &s, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return Parse(data)
}

// Apply sets the session selection of the script on opts.
func (s *Script) Apply(opts *wizard.Options) {
	opts.Slug = s.Slug
	opts.CloneFromSlug = s.CloneFrom
	if s.Category != "" {
		opts.Category = s.Category
	}
}

// Run executes the actions in order against c, printing one line per action
// to out. It stops at the first failing action.
func (s *Script) Run(ctx context.Context, c *wizard.Controller, out io.Writer) error {
	for i, a := range s.Actions {
		msg, err := run(ctx, c, a)
		if err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, a.name(), err)
		}
		snap := c.Snapshot()
		_, _ = fmt.Fprintf(out, "%2d %-12s [%d/%d %s] %s\n", i+1, a.name(), snap.CurrentStep+1, len(snap.Steps), snap.StepID, msg)
	}
	return nil
}

func run(ctx context.Context, c *wizard.Controller, a Action) (string, error) {
	switch {
	case a.Update != nil:
		return "ok", c.UpdateFormData(*a.Update)

	case a.SetCategory != "":
		cat, err := rental.ParseCategory(a.SetCategory)
		if err != nil {
			return "", err
		}
		return string(cat), c.SetCategory(cat)

	case a.Next:
		if c.NextStep() {
			return "ok", nil
		}
		snap := c.Snapshot()
		if msgs := snap.Errors[snap.StepID]; len(msgs) > 0 {
			return "", fmt.Errorf("%w: %s", ErrBlocked, strings.Join(msgs, "; "))
		}
		return "no next step", nil

	case a.NextBlocked:
		if c.NextStep() {
			return "", fmt.Errorf("%w: step was not blocked", ErrExpectation)
		}
		snap := c.Snapshot()
		msgs := snap.Errors[snap.StepID]
		if len(msgs) == 0 {
			return "", fmt.Errorf("%w: no next step to block", ErrExpectation)
		}
		return "blocked: " + strings.Join(msgs, "; "), nil

	case a.Prev:
		if c.PrevStep() {
			return "ok", nil
		}
		return "no previous step", nil

	case a.GoTo != "":
		snap := c.Snapshot()
		for i, st := range snap.Steps {
			if string(st.ID) == a.GoTo {
				c.GoToStep(i)
				return "ok", nil
			}
		}
		return "", fmt.Errorf("step %q is not part of this category", a.GoTo)

	case a.Validate:
		errs := c.ValidateAll()
		check := c.CanPublish()
		msg := fmt.Sprintf("%d step(s) with errors", len(errs))
		if !check.CanPublish {
			msg += ", missing " + strings.Join(check.MissingFields, ", ")
		}
		return msg, nil

	case a.Save:
		sent, err := c.Save(ctx)
		if err != nil {
			return "", err
		}
		if !sent {
			return "skipped", nil
		}
		fd := c.FormData()
		return rental.ObjectPath(fd.Slug, fd.Name), nil

	case a.Publish:
		if err := c.Publish(ctx); err != nil {
			return "", err
		}
		return "published", nil

	case a.Cancel:
		if err := c.Cancel(ctx); err != nil {
			return "", err
		}
		return "cancelled", nil

	case a.Expect != nil:
		return "ok", check(c.Snapshot(), a.Expect)
	}
	return "", errors.New("empty action")
}

func check(snap wizard.Snapshot, e *Expect) error {
	var failed []string
	if e.Step != "" && snap.StepID != e.Step {
		failed = append(failed, fmt.Sprintf("step is %s, want %s", snap.StepID, e.Step))
	}
	if e.Phase != "" && snap.Phase != e.Phase {
		failed = append(failed, fmt.Sprintf("phase is %s, want %s", snap.Phase, e.Phase))
	}
	if e.Dirty != nil && snap.IsDirty != *e.Dirty {
		failed = append(failed, fmt.Sprintf("dirty is %t, want %t", snap.IsDirty, *e.Dirty))
	}
	for _, want := range e.Errors {
		if !hasMessage(snap.Errors, want) {
			failed = append(failed, fmt.Sprintf("no error %q", want))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrExpectation, strings.Join(failed, "; "))
	}
	return nil
}

func hasMessage(errs map[rental.StepID][]string, want string) bool {
	for _, msgs := range errs {
		for _, m := range msgs {
			if m == want {
				return true
			}
		}
	}
	return false
}
