package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/rentalwizard/internal/rental"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("wizard-state",
			mcp.WithDescription("Show the current step, the step list, errors and the form data"),
		),
		s.handleState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-update",
			mcp.WithDescription("Merge fields into the form data. Each top-level field replaces the current value"),
			mcp.WithObject("patch", mcp.Required(),
				mcp.Description("Partial form data, e.g. {\"name\": \"Hall A\", \"location\": {\"address\": \"Storgata 1\"}}"),
			),
		),
		s.handleUpdate,
	)

	categories := make([]string, len(rental.Categories))
	for i, c := range rental.Categories {
		categories[i] = string(c)
	}
	s.mcpServer.AddTool(
		mcp.NewTool("wizard-set-category",
			mcp.WithDescription("Switch the rental object category. Returns to the first step and clears unsupported fields"),
			mcp.WithString("category", mcp.Required(),
				mcp.Enum(categories...),
			),
		),
		s.handleSetCategory,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-next",
			mcp.WithDescription("Validate the current step and advance when it is valid"),
		),
		s.handleNext,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-prev",
			mcp.WithDescription("Go back one step"),
		),
		s.handlePrev,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-goto",
			mcp.WithDescription("Jump to a step by id or index. Moving forward records errors but never blocks"),
			mcp.WithString("step", mcp.Description("Step id, e.g. \"media\"")),
			mcp.WithNumber("index", mcp.Description("Zero-based step index")),
		),
		s.handleGoTo,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-validate",
			mcp.WithDescription("Validate every step and report publish readiness"),
		),
		s.handleValidate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-save",
			mcp.WithDescription("Save the rental object to the backend without publishing"),
		),
		s.handleSave,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-publish",
			mcp.WithDescription("Publish the rental object and end the session"),
		),
		s.handlePublish,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-cancel",
			mcp.WithDescription("Leave the wizard. Unsaved changes are only discarded when confirm is true"),
			mcp.WithBoolean("confirm", mcp.Description("Discard unsaved changes")),
		),
		s.handleCancel,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-changes",
			mcp.WithDescription("Show a unified diff of the form data against the last saved state"),
		),
		s.handleChanges,
	)
}
