package hooks

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/rentalwizard/internal/rental"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandVariables(t *testing.T) {
	vars := Variables{Slug: "hall-a", ID: "42", Category: "UTSTYR", Name: "Hall A"}

	got := expandVariables("notify {{slug}} {{id}} {{category}} '{{name}}' {{unknown}}", vars)
	assert.Equal(t, "notify hall-a 42 UTSTYR 'Hall A' {{unknown}}", got)
}

func TestVariablesFor(t *testing.T) {
	fd := rental.NewFormData(rental.CategoryVehicle)
	fd.ID, fd.Slug, fd.Name = "7", "van", "Van"

	assert.Equal(t, Variables{Slug: "van", ID: "7", Category: "KJORETOY", Name: "Van"}, VariablesFor(fd))
	assert.Equal(t, Variables{}, VariablesFor(nil))
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	workDir := t.TempDir()
	vars := Variables{Slug: "hall-a", ID: "1", Category: "LOKALER_OG_BANER"}

	tests := []struct {
		name     string
		hook     *HookConfig
		contains string
		wantErr  bool
	}{
		{name: "nil hook", hook: nil},
		{name: "template expansion", hook: &HookConfig{Command: "echo {{slug}}", Timeout: 5}, contains: "hall-a\n"},
		{name: "environment", hook: &HookConfig{Command: "echo $RENTALWIZARD_CATEGORY", Timeout: 5}, contains: "LOKALER_OG_BANER"},
		{name: "stderr captured", hook: &HookConfig{Command: "echo oops >&2", Timeout: 5}, contains: "[stderr]\noops"},
		{name: "failure degrades", hook: &HookConfig{Command: "exit 3", Timeout: 5}, contains: "[Hook command failed"},
		{name: "required failure errors", hook: &HookConfig{Command: "exit 3", Timeout: 5, Required: true}, contains: "[Hook command failed", wantErr: true},
		{name: "timeout degrades", hook: &HookConfig{Command: "sleep 5", Timeout: 1}, contains: "[Hook timed out after 1s]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Execute(ctx, tt.hook, workDir, vars)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrHookFailed)
			} else {
				assert.NoError(t, err)
			}
			if tt.contains == "" {
				assert.Empty(t, out)
			} else {
				assert.Contains(t, out, tt.contains)
			}
		})
	}
}

func TestExecute_WorkDir(t *testing.T) {
	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "marker"), []byte("here"), 0644))

	out, err := Execute(context.Background(), &HookConfig{Command: "cat marker"}, workDir, Variables{})
	require.NoError(t, err)
	assert.Equal(t, "here", out)
}

func TestExecute_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := Execute(ctx, &HookConfig{Command: "sleep 5", Timeout: 10}, t.TempDir(), Variables{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecuteAll(t *testing.T) {
	hooks := []*HookConfig{
		{Command: "echo first"},
		{Command: "true"},
		{Command: "echo second"},
	}
	out, err := ExecuteAll(context.Background(), hooks, t.TempDir(), Variables{})
	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond\n", out)

	hooks = []*HookConfig{
		{Command: "echo before"},
		{Command: "exit 1", Required: true},
		{Command: "echo never"},
	}
	out, err = ExecuteAll(context.Background(), hooks, t.TempDir(), Variables{})
	assert.True(t, errors.Is(err, ErrHookFailed))
	assert.Equal(t, "before\n", out)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	content := `version: 1
hooks:
  on_save:
    - command: "echo saved {{slug}}"
  on_publish:
    - command: "./notify.sh {{id}}"
      timeout: 10
      required: true
  on_cancel:
    - command: "echo bye"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err = LoadConfig(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Version)
	require.Len(t, cfg.Hooks.OnPublish, 1)
	assert.Equal(t, 10, cfg.Hooks.OnPublish[0].Timeout)
	assert.True(t, cfg.Hooks.OnPublish[0].Required)
	assert.Len(t, cfg.Hooks.OnSave, 1)
	assert.Len(t, cfg.Hooks.OnCancel, 1)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("hooks: [oops"), 0644))
	_, err = LoadConfig(dir)
	assert.Error(t, err)
}

func TestRunner(t *testing.T) {
	cfg := &Config{Hooks: HooksConfig{
		OnSave:    []*HookConfig{{Command: "echo saved {{slug}}"}},
		OnPublish: []*HookConfig{{Command: "echo published {{category}}"}},
	}}
	var out bytes.Buffer
	r := NewRunner(cfg, t.TempDir(), &out)

	fd := rental.NewFormData(rental.CategoryEquipment)
	fd.Slug = "drill"

	require.NoError(t, r.OnSave(context.Background(), fd))
	require.NoError(t, r.OnPublish(context.Background(), fd))
	require.NoError(t, r.OnCancel(context.Background(), fd))

	assert.Equal(t, "saved drill\npublished UTSTYR\n", out.String())

	empty := NewRunner(nil, "", nil)
	assert.NoError(t, empty.OnPublish(context.Background(), fd))
	assert.False(t, strings.Contains(out.String(), "bye"))
}
