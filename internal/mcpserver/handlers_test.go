package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/rentalwizard/internal/backendsim"
	"github.com/mark3labs/rentalwizard/internal/draft"
	"github.com/mark3labs/rentalwizard/internal/rental"
	"github.com/mark3labs/rentalwizard/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv    *Server
	ctrl   *wizard.Controller
	repo   *backendsim.Repository
	drafts *draft.MemoryStore
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:   backendsim.NewRepository(),
		drafts: draft.NewMemoryStore(),
	}
	ctrl, err := wizard.New(context.Background(), wizard.Options{
		Backend:   env.repo,
		Drafts:    env.drafts,
		Confirmer: Confirmer,
	})
	require.NoError(t, err)
	env.ctrl = ctrl
	env.srv = New(ctrl)
	return env
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), req)
	require.NoError(t, err, "handlers report failures in the result")
	require.NotNil(t, result)
	return result
}

// extractText extracts text from CallToolResult.Content[0]
func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

func publishablePatch() map[string]any {
	return map[string]any{
		"name":        "Hall A",
		"description": "A bright hall",
		"pricing":     map[string]any{"amount": float64(500), "currency": "NOK"},
		"media":       []any{map[string]any{"url": "https://img.example.com/a.jpg", "kind": "IMAGE"}},
		"location":    map[string]any{"address": "Storgata 1"},
	}
}

func TestHandleState(t *testing.T) {
	env := setupTestServer(t)

	result := call(t, env.srv.handleState, "wizard-state", nil)
	require.False(t, result.IsError)

	var snap wizard.Snapshot
	require.NoError(t, json.Unmarshal([]byte(extractText(result)), &snap))
	assert.Equal(t, wizard.ModeCreate, snap.Mode)
	assert.Equal(t, rental.StepCategory, snap.StepID)
	assert.Equal(t, rental.CategoryVenue, snap.FormData.Category)
	assert.NotEmpty(t, snap.Steps)
}

func TestHandleUpdate(t *testing.T) {
	t.Run("object patch", func(t *testing.T) {
		env := setupTestServer(t)
		result := call(t, env.srv.handleUpdate, "wizard-update", map[string]any{
			"patch": map[string]any{"name": "Hall A", "location": map[string]any{"address": "Storgata 1"}},
		})
		require.False(t, result.IsError, extractText(result))
		assert.Contains(t, extractText(result), "Updated form data")

		fd := env.ctrl.FormData()
		assert.Equal(t, "Hall A", fd.Name)
		require.NotNil(t, fd.Location())
		assert.Equal(t, "Storgata 1", fd.Location().Address)
		assert.True(t, env.ctrl.Snapshot().IsDirty)
	})

	t.Run("string patch", func(t *testing.T) {
		env := setupTestServer(t)
		result := call(t, env.srv.handleUpdate, "wizard-update", map[string]any{
			"patch": `{"name": "Hall B"}`,
		})
		require.False(t, result.IsError, extractText(result))
		assert.Equal(t, "Hall B", env.ctrl.FormData().Name)
	})

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "no arguments", args: nil, want: "no arguments"},
		{name: "missing patch", args: map[string]any{"other": 1}, want: "missing 'patch'"},
		{name: "wrong type", args: map[string]any{"patch": float64(3)}, want: "must be an object"},
		{name: "unknown field", args: map[string]any{"patch": map[string]any{"nmae": "typo"}}, want: "unknown field"},
		{name: "empty patch", args: map[string]any{"patch": map[string]any{}}, want: "changes nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestServer(t)
			result := call(t, env.srv.handleUpdate, "wizard-update", tt.args)
			assert.True(t, result.IsError)
			assert.Contains(t, extractText(result), tt.want)
			assert.False(t, env.ctrl.Snapshot().IsDirty)
		})
	}
}

func TestHandleSetCategory(t *testing.T) {
	env := setupTestServer(t)

	result := call(t, env.srv.handleSetCategory, "wizard-set-category", map[string]any{"category": string(rental.CategoryEquipment)})
	require.False(t, result.IsError, extractText(result))
	assert.Contains(t, extractText(result), string(rental.CategoryEquipment))
	assert.Equal(t, rental.CategoryEquipment, env.ctrl.FormData().Category)

	result = call(t, env.srv.handleSetCategory, "wizard-set-category", map[string]any{"category": "BOATS"})
	assert.True(t, result.IsError)

	result = call(t, env.srv.handleSetCategory, "wizard-set-category", map[string]any{})
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "'category'")
}

func TestHandleNextAndPrev(t *testing.T) {
	env := setupTestServer(t)

	result := call(t, env.srv.handlePrev, "wizard-prev", nil)
	assert.Equal(t, "Already at the first step", extractText(result))

	result = call(t, env.srv.handleNext, "wizard-next", nil)
	require.False(t, result.IsError)
	assert.Contains(t, extractText(result), string(rental.StepBasics))

	// Basics has no name yet.
	result = call(t, env.srv.handleNext, "wizard-next", nil)
	assert.False(t, result.IsError, "a blocked step is guidance, not a tool failure")
	assert.Contains(t, extractText(result), "Step basics is not complete")
	assert.Contains(t, extractText(result), "Name is required")
	assert.Equal(t, rental.StepBasics, env.ctrl.Snapshot().StepID)

	call(t, env.srv.handleUpdate, "wizard-update", map[string]any{"patch": map[string]any{"name": "Hall A"}})
	result = call(t, env.srv.handleNext, "wizard-next", nil)
	assert.Contains(t, extractText(result), string(rental.StepDetails))

	result = call(t, env.srv.handlePrev, "wizard-prev", nil)
	assert.Contains(t, extractText(result), string(rental.StepBasics))
}

func TestHandleGoTo(t *testing.T) {
	env := setupTestServer(t)

	result := call(t, env.srv.handleGoTo, "wizard-goto", map[string]any{"step": string(rental.StepMedia)})
	require.False(t, result.IsError, extractText(result))
	assert.Equal(t, rental.StepMedia, env.ctrl.Snapshot().StepID)

	result = call(t, env.srv.handleGoTo, "wizard-goto", map[string]any{"index": float64(1)})
	require.False(t, result.IsError, extractText(result))
	assert.Equal(t, rental.StepBasics, env.ctrl.Snapshot().StepID)

	// Leaving basics forward records its errors without blocking.
	result = call(t, env.srv.handleGoTo, "wizard-goto", map[string]any{"index": float64(2)})
	require.False(t, result.IsError)
	assert.Contains(t, extractText(result), "Name is required")
	assert.Equal(t, rental.StepDetails, env.ctrl.Snapshot().StepID)

	result = call(t, env.srv.handleGoTo, "wizard-goto", map[string]any{"step": string(rental.StepResources)})
	assert.True(t, result.IsError, "equipment-only step is not part of a venue wizard")
	assert.Contains(t, extractText(result), "not part of this category")

	result = call(t, env.srv.handleGoTo, "wizard-goto", map[string]any{"index": float64(99)})
	assert.True(t, result.IsError)

	result = call(t, env.srv.handleGoTo, "wizard-goto", map[string]any{})
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "either 'step' or 'index'")
}

func TestHandleValidate(t *testing.T) {
	env := setupTestServer(t)

	text := extractText(call(t, env.srv.handleValidate, "wizard-validate", nil))
	assert.Contains(t, text, "basics:\n  - Name is required")
	assert.Contains(t, text, "details:\n  - Address is required")
	assert.Contains(t, text, "Missing before publishing: Name, Description, Price, At least one image, Address")
	assert.Less(t, strings.Index(text, "basics:"), strings.Index(text, "details:"), "errors follow step order")

	call(t, env.srv.handleUpdate, "wizard-update", map[string]any{"patch": publishablePatch()})
	text = extractText(call(t, env.srv.handleValidate, "wizard-validate", nil))
	assert.Contains(t, text, "All steps are valid")
	assert.Contains(t, text, "Ready to publish")
}

func TestHandleSaveAndChanges(t *testing.T) {
	env := setupTestServer(t)
	call(t, env.srv.handleUpdate, "wizard-update", map[string]any{"patch": map[string]any{"name": "Hall A"}})

	result := call(t, env.srv.handleSave, "wizard-save", nil)
	require.False(t, result.IsError, extractText(result))
	assert.Contains(t, extractText(result), "Saved /rental-objects/hall-a")
	assert.Len(t, env.repo.List(), 1)

	result = call(t, env.srv.handleChanges, "wizard-changes", nil)
	assert.Equal(t, "No changes", extractText(result))

	call(t, env.srv.handleUpdate, "wizard-update", map[string]any{"patch": map[string]any{"name": "Hall B"}})
	result = call(t, env.srv.handleChanges, "wizard-changes", nil)
	assert.Contains(t, extractText(result), "-name: Hall A")
	assert.Contains(t, extractText(result), "+name: Hall B")
}

// gatedBackend holds updates until release is closed and signals on entered
// when one arrives.
type gatedBackend struct {
	*backendsim.Repository
	entered chan struct{}
	release chan struct{}
}

func (g *gatedBackend) Update(ctx context.Context, id string, dto *rental.DTO) (*rental.Object, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.Repository.Update(ctx, id, dto)
}

func TestHandleSave_SkippedWhileSaving(t *testing.T) {
	repo := backendsim.NewRepository()
	fd := rental.NewFormData(rental.CategoryVenue)
	fd.Name = "Hall A"
	dto, err := rental.ToDTO(fd)
	require.NoError(t, err)
	obj, err := repo.Create(context.Background(), dto)
	require.NoError(t, err)

	gated := &gatedBackend{Repository: repo, entered: make(chan struct{}, 1), release: make(chan struct{})}
	ctrl, err := wizard.New(context.Background(), wizard.Options{Backend: gated, Slug: obj.Listing.Slug})
	require.NoError(t, err)
	srv := New(ctrl)

	done := make(chan error, 1)
	go func() { done <- ctrl.SaveDraft(context.Background()) }()
	<-gated.entered

	// The object already has an id, so only the controller knows nothing was sent.
	result := call(t, srv.handleSave, "wizard-save", nil)
	require.False(t, result.IsError, extractText(result))
	assert.Equal(t, "Save skipped: another save is in progress", extractText(result))

	close(gated.release)
	require.NoError(t, <-done)
}

func TestHandleSave_InvalidPayload(t *testing.T) {
	env := setupTestServer(t)
	call(t, env.srv.handleUpdate, "wizard-update", map[string]any{"patch": map[string]any{"pricing": map[string]any{"amount": float64(-1)}}})

	result := call(t, env.srv.handleSave, "wizard-save", nil)
	assert.True(t, result.IsError)
	assert.Empty(t, env.repo.List())
}

func TestHandlePublish(t *testing.T) {
	t.Run("not ready", func(t *testing.T) {
		env := setupTestServer(t)
		result := call(t, env.srv.handlePublish, "wizard-publish", nil)
		assert.True(t, result.IsError)
		assert.Contains(t, extractText(result), "missing: Name")
		assert.Empty(t, env.repo.List())
	})

	t.Run("publishes and exits", func(t *testing.T) {
		env := setupTestServer(t)
		call(t, env.srv.handleUpdate, "wizard-update", map[string]any{"patch": publishablePatch()})

		result := call(t, env.srv.handlePublish, "wizard-publish", nil)
		require.False(t, result.IsError, extractText(result))
		assert.Equal(t, "Published /rental-objects/hall-a", extractText(result))

		objs := env.repo.List()
		require.Len(t, objs, 1)
		assert.Equal(t, rental.StatusPublished, objs[0].Listing.Status)

		result = call(t, env.srv.handleNext, "wizard-next", nil)
		assert.True(t, result.IsError)
		assert.Contains(t, extractText(result), wizard.ErrNotEditing.Error())

		result = call(t, env.srv.handleUpdate, "wizard-update", map[string]any{"patch": map[string]any{"name": "late"}})
		assert.True(t, result.IsError)
	})
}

func TestHandleCancel(t *testing.T) {
	t.Run("dirty without confirm", func(t *testing.T) {
		env := setupTestServer(t)
		call(t, env.srv.handleUpdate, "wizard-update", map[string]any{"patch": map[string]any{"name": "Hall A"}})

		result := call(t, env.srv.handleCancel, "wizard-cancel", nil)
		assert.False(t, result.IsError)
		assert.Contains(t, extractText(result), "confirm=true")
		assert.Equal(t, wizard.PhaseEditing, env.ctrl.Snapshot().Phase)

		_, err := env.drafts.Get(context.Background(), wizard.DefaultDraftKey)
		assert.NoError(t, err, "draft is kept")
	})

	t.Run("dirty with confirm", func(t *testing.T) {
		env := setupTestServer(t)
		call(t, env.srv.handleUpdate, "wizard-update", map[string]any{"patch": map[string]any{"name": "Hall A"}})

		result := call(t, env.srv.handleCancel, "wizard-cancel", map[string]any{"confirm": true})
		require.False(t, result.IsError)
		assert.Equal(t, "Wizard cancelled", extractText(result))
		assert.Equal(t, wizard.PhaseExited, env.ctrl.Snapshot().Phase)

		_, err := env.drafts.Get(context.Background(), wizard.DefaultDraftKey)
		assert.ErrorIs(t, err, draft.ErrNotFound)
	})

	t.Run("clean session needs no confirmation", func(t *testing.T) {
		env := setupTestServer(t)
		result := call(t, env.srv.handleCancel, "wizard-cancel", nil)
		assert.Equal(t, "Wizard cancelled", extractText(result))
	})
}

func TestConfirmer(t *testing.T) {
	ctx := context.Background()

	ok, err := Confirmer.Confirm(ctx, "discard?")
	require.NoError(t, err)
	assert.False(t, ok, "no answer means no")

	ok, _ = Confirmer.Confirm(withConfirmation(ctx, true), "discard?")
	assert.True(t, ok)
}

func TestStartStop(t *testing.T) {
	env := setupTestServer(t)

	port, err := env.srv.Start(context.Background(), "")
	require.NoError(t, err)
	assert.NotZero(t, port)
	assert.Contains(t, env.srv.URL(), "/mcp")

	_, err = env.srv.Start(context.Background(), "")
	assert.Error(t, err, "already started")

	require.NoError(t, env.srv.Stop())
	require.NoError(t, env.srv.Stop(), "stopping twice is a no-op")
}
