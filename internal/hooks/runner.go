package hooks

import (
	"context"
	"io"

	"github.com/mark3labs/rentalwizard/internal/rental"
)

// Runner binds a hooks configuration to a working directory and turns each
// lifecycle list into a callback the wizard can call.
type Runner struct {
	cfg     *Config
	workDir string
	out     io.Writer
}

// NewRunner returns a Runner. A nil cfg runs nothing. Hook output is copied
// to out when it is not nil.
func NewRunner(cfg *Config, workDir string, out io.Writer) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Runner{cfg: cfg, workDir: workDir, out: out}
}

// OnSave runs the on_save hooks.
func (r *Runner) OnSave(ctx context.Context, fd *rental.FormData) error {
	return r.run(ctx, r.cfg.Hooks.OnSave, fd)
}

// OnPublish runs the on_publish hooks.
func (r *Runner) OnPublish(ctx context.Context, fd *rental.FormData) error {
	return r.run(ctx, r.cfg.Hooks.OnPublish, fd)
}

// OnCancel runs the on_cancel hooks.
func (r *Runner) OnCancel(ctx context.Context, fd *rental.FormData) error {
	return r.run(ctx, r.cfg.Hooks.OnCancel, fd)
}

func (r *Runner) run(ctx context.Context, hooks []*HookConfig, fd *rental.FormData) error {
	if len(hooks) == 0 {
		return nil
	}
	out, err := ExecuteAll(ctx, hooks, r.workDir, VariablesFor(fd))
	if r.out != nil && out != "" {
		_, _ = io.WriteString(r.out, out)
	}
	return err
}
