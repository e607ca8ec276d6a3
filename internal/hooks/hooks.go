package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/rentalwizard/internal/logger"
	"github.com/mark3labs/rentalwizard/internal/rental"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = ".rentalwizard.hooks.yml"

var log = logger.Named("hooks")

// LoadConfig loads ConfigFileName from workDir. It returns nil when the file
// does not exist (hooks are optional).
func LoadConfig(workDir string) (*Config, error) {
	return LoadFile(filepath.Join(workDir, ConfigFileName))
}

// LoadFile loads a hooks configuration from path. It returns nil when the
// file does not exist.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("no hooks config found at %s", path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	log.Debug("loaded hooks config from %s (version: %d)", path, cfg.Version)
	return &cfg, nil
}

// Variables holds the values expanded in hook commands.
type Variables struct {
	Slug     string
	ID       string
	Category string
	Name     string
}

// VariablesFor extracts the hook variables of a listing.
func VariablesFor(fd *rental.FormData) Variables {
	if fd == nil {
		return Variables{}
	}
	return Variables{
		Slug:     fd.Slug,
		ID:       fd.ID,
		Category: string(fd.Category),
		Name:     fd.Name,
	}
}

func (v Variables) env() []string {
	return []string{
		"RENTALWIZARD_SLUG=" + v.Slug,
		"RENTALWIZARD_ID=" + v.ID,
		"RENTALWIZARD_CATEGORY=" + v.Category,
		"RENTALWIZARD_NAME=" + v.Name,
	}
}

// ErrHookFailed is returned for failing hooks marked required.
var ErrHookFailed = errors.New("hook failed")

// Execute runs a hook command and returns its output. {{slug}}, {{id}},
// {{category}} and {{name}} are expanded first, and the same values are
// exported as RENTALWIZARD_* environment variables.
//
// A failing or timed-out command is reported in the output with a nil error,
// unless the hook is required. Context cancellation is always returned.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	command := expandVariables(hook.Command, vars)
	log.Debug("executing hook command: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), vars.env()...)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if execCtx.Err() == context.DeadlineExceeded {
		log.Warn("hook command timed out after %ds: %s", timeout, command)
		output := fmt.Sprintf("[Hook timed out after %ds]\nPartial output:\n%s", timeout, stdout.String())
		if hook.Required {
			return output, fmt.Errorf("%w: timed out after %ds", ErrHookFailed, timeout)
		}
		return output, nil
	}

	if err != nil {
		log.Warn("hook command failed: %v", err)
		output := stdout.String()
		if stderr.Len() > 0 {
			output += "\n[stderr]\n" + stderr.String()
		}
		output = fmt.Sprintf("[Hook command failed: %v]\n%s", err, output)
		if hook.Required {
			return output, fmt.Errorf("%w: %v", ErrHookFailed, err)
		}
		return output, nil
	}

	output := stdout.String()
	if stderr.Len() > 0 {
		output += "\n[stderr]\n" + stderr.String()
	}
	return output, nil
}

// ExecuteAll runs hooks in order and joins their non-empty output with blank
// lines. It stops at the first error.
func ExecuteAll(ctx context.Context, hooks []*HookConfig, workDir string, vars Variables) (string, error) {
	var outputs []string
	for _, hook := range hooks {
		out, err := Execute(ctx, hook, workDir, vars)
		if err != nil {
			return strings.Join(outputs, "\n"), err
		}
		if out != "" {
			outputs = append(outputs, out)
		}
	}
	return strings.Join(outputs, "\n"), nil
}

// expandVariables replaces {{variable}} placeholders in the command string.
func expandVariables(command string, vars Variables) string {
	return strings.NewReplacer(
		"{{slug}}", vars.Slug,
		"{{id}}", vars.ID,
		"{{category}}", vars.Category,
		"{{name}}", vars.Name,
	).Replace(command)
}
