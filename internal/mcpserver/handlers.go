package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/rentalwizard/internal/rental"
	"github.com/mark3labs/rentalwizard/internal/wizard"
)

// handleState returns the snapshot as JSON.
func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(s.ctrl.Snapshot(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal state: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// handleUpdate decodes the patch strictly: unknown fields are an error.
func (s *Server) handleUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	var raw []byte
	switch v := args["patch"].(type) {
	case nil:
		return mcp.NewToolResultError("missing 'patch' parameter"), nil
	case string:
		// Some clients send objects as encoded strings.
		raw = []byte(v)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid patch: %v", err)), nil
		}
		raw = b
	default:
		return mcp.NewToolResultError("'patch' must be an object"), nil
	}

	var patch rental.Patch
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid patch: %v", err)), nil
	}
	if patch.Empty() {
		return mcp.NewToolResultError("patch changes nothing"), nil
	}

	if err := s.ctrl.UpdateFormData(patch); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	snap := s.ctrl.Snapshot()
	return mcp.NewToolResultText(fmt.Sprintf("Updated form data (step %d/%d: %s)",
		snap.CurrentStep+1, len(snap.Steps), snap.StepID)), nil
}

func (s *Server) handleSetCategory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	name, ok := args["category"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("missing or invalid 'category' parameter"), nil
	}
	cat, err := rental.ParseCategory(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.ctrl.SetCategory(cat); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Category set to %s. Steps: %s", cat, stepList(s.ctrl.Snapshot()))), nil
}

// handleNext reports a blocked step as guidance text, not as a tool error.
func (s *Server) handleNext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.ctrl.NextStep() {
		snap := s.ctrl.Snapshot()
		return mcp.NewToolResultText(fmt.Sprintf("Moved to step %d/%d: %s", snap.CurrentStep+1, len(snap.Steps), snap.StepID)), nil
	}

	snap := s.ctrl.Snapshot()
	if snap.Phase == wizard.PhaseExited {
		return mcp.NewToolResultError(wizard.ErrNotEditing.Error()), nil
	}
	if msgs := snap.Errors[snap.StepID]; len(msgs) > 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Step %s is not complete:\n  - %s",
			snap.StepID, strings.Join(msgs, "\n  - "))), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Already at the last step (%s)", snap.StepID)), nil
}

func (s *Server) handlePrev(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.ctrl.PrevStep() {
		snap := s.ctrl.Snapshot()
		if snap.Phase == wizard.PhaseExited {
			return mcp.NewToolResultError(wizard.ErrNotEditing.Error()), nil
		}
		return mcp.NewToolResultText("Already at the first step"), nil
	}
	snap := s.ctrl.Snapshot()
	return mcp.NewToolResultText(fmt.Sprintf("Moved to step %d/%d: %s", snap.CurrentStep+1, len(snap.Steps), snap.StepID)), nil
}

func (s *Server) handleGoTo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	snap := s.ctrl.Snapshot()
	index := -1
	if id, ok := args["step"].(string); ok && id != "" {
		for i, st := range snap.Steps {
			if string(st.ID) == id {
				index = i
				break
			}
		}
		if index < 0 {
			return mcp.NewToolResultError(fmt.Sprintf("step %q is not part of this category (steps: %s)", id, stepList(snap))), nil
		}
	} else {
		// JSON numbers come as float64
		switch v := args["index"].(type) {
		case float64:
			index = int(v)
		case int:
			index = v
		default:
			return mcp.NewToolResultError("either 'step' or 'index' is required"), nil
		}
	}

	if !s.ctrl.GoToStep(index) {
		return mcp.NewToolResultError(fmt.Sprintf("cannot go to step %d", index)), nil
	}

	snap = s.ctrl.Snapshot()
	result := fmt.Sprintf("Moved to step %d/%d: %s", snap.CurrentStep+1, len(snap.Steps), snap.StepID)
	if len(snap.Errors) > 0 {
		result += "\n" + formatErrors(snap.Steps, snap.Errors)
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	errs := s.ctrl.ValidateAll()
	check := s.ctrl.CanPublish()
	snap := s.ctrl.Snapshot()

	var lines []string
	if len(errs) == 0 {
		lines = append(lines, "All steps are valid")
	} else {
		lines = append(lines, formatErrors(snap.Steps, errs))
	}
	if check.CanPublish {
		lines = append(lines, "Ready to publish")
	} else {
		lines = append(lines, "Missing before publishing: "+strings.Join(check.MissingFields, ", "))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) handleSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sent, err := s.ctrl.Save(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !sent {
		return mcp.NewToolResultText("Save skipped: another save is in progress"), nil
	}
	fd := s.ctrl.FormData()
	return mcp.NewToolResultText(fmt.Sprintf("Saved %s (id %s)", rental.ObjectPath(fd.Slug, fd.Name), fd.ID)), nil
}

func (s *Server) handlePublish(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if check := s.ctrl.CanPublish(); !check.CanPublish {
		return mcp.NewToolResultError("not ready to publish, missing: " + strings.Join(check.MissingFields, ", ")), nil
	}

	err := s.ctrl.Publish(ctx)
	fd := s.ctrl.FormData()
	switch {
	case err == nil:
		return mcp.NewToolResultText(fmt.Sprintf("Published %s", rental.ObjectPath(fd.Slug, fd.Name))), nil
	case s.ctrl.Snapshot().Phase == wizard.PhaseExited:
		// Saved and published; only the completion callback failed.
		return mcp.NewToolResultText(fmt.Sprintf("Published %s, but %v", rental.ObjectPath(fd.Slug, fd.Name), err)), nil
	default:
		return mcp.NewToolResultError(err.Error()), nil
	}
}

func (s *Server) handleCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	confirm := false
	if args := request.GetArguments(); args != nil {
		confirm, _ = args["confirm"].(bool)
	}

	err := s.ctrl.Cancel(withConfirmation(ctx, confirm))
	switch {
	case errors.Is(err, wizard.ErrCancelled):
		return mcp.NewToolResultText("There are unsaved changes. Call wizard-cancel with confirm=true to discard them"), nil
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Wizard cancelled"), nil
}

func (s *Server) handleChanges(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	diff, err := s.ctrl.Changes()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to diff: %v", err)), nil
	}
	if diff == "" {
		return mcp.NewToolResultText("No changes"), nil
	}
	return mcp.NewToolResultText(diff), nil
}

func stepList(snap wizard.Snapshot) string {
	ids := make([]string, len(snap.Steps))
	for i, st := range snap.Steps {
		ids[i] = string(st.ID)
	}
	return strings.Join(ids, ", ")
}

// formatErrors lists errors in step order.
func formatErrors(steps []wizard.Step, errs map[rental.StepID][]string) string {
	var lines []string
	for _, st := range steps {
		msgs := errs[st.ID]
		if len(msgs) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s:", st.ID))
		for _, m := range msgs {
			lines = append(lines, "  - "+m)
		}
	}
	return strings.Join(lines, "\n")
}
