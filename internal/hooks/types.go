package hooks

// Config is the top-level configuration loaded from .rentalwizard.hooks.yml.
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig lists the commands run at each wizard lifecycle point.
type HooksConfig struct {
	OnSave    []*HookConfig `yaml:"on_save"`
	OnPublish []*HookConfig `yaml:"on_publish"`
	OnCancel  []*HookConfig `yaml:"on_cancel"`
}

// HookConfig defines a single hook command.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"` // seconds, default 30
	// Required makes a failing command fail the lifecycle callback.
	Required bool `yaml:"required"`
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30
