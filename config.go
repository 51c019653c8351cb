package gridterm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the tunables for a terminal session.
type Config struct {
	// Rows and Cols are the initial screen dimensions.
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
	// Scrollback bounds the history line count; 0 disables history.
	Scrollback int `yaml:"scrollback"`
	// Shell is the program to launch; empty falls back to $SHELL.
	Shell string `yaml:"shell"`
	// Term is the TERM value exported to the hosted program.
	Term string `yaml:"term"`
	// ReadBuffer is the PTY read chunk size in bytes.
	ReadBuffer int `yaml:"read_buffer"`
	// QueueDepth bounds the chunks queued between reader and applier.
	QueueDepth int `yaml:"queue_depth"`
}

// DefaultConfig returns the stock 80x24 configuration.
func DefaultConfig() Config {
	return Config{
		Rows:       24,
		Cols:       80,
		Scrollback: defaultScrollback,
		Term:       "xterm-256color",
		ReadBuffer: defaultReadBuffer,
		QueueDepth: defaultQueueDepth,
	}
}

// LoadConfig reads a YAML config file, filling unset fields from the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Rows < 1 || c.Rows > maxRows || c.Cols < 1 || c.Cols > maxCols {
		return fmt.Errorf("%w: %dx%d", ErrResizeOutOfBounds, c.Rows, c.Cols)
	}
	if c.Scrollback < 0 {
		return fmt.Errorf("scrollback must not be negative")
	}
	return nil
}

// ShellCommand resolves the configured shell, falling back to $SHELL and
// then /bin/sh.
func (c Config) ShellCommand() string {
	if c.Shell != "" {
		return c.Shell
	}
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return "/bin/sh"
}
