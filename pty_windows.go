//go:build windows

package gridterm

import (
	"syscall"

	"github.com/ActiveState/termtest/conpty"
)

type windowsPty struct {
	c *conpty.ConPty
}

// StartShell launches the program attached to a new ConPTY sized to the
// given dimensions.
func StartShell(cfg Config) (Pty, error) {
	c, err := conpty.New(int16(cfg.Cols), int16(cfg.Rows))
	if err != nil {
		return nil, err
	}
	shell := cfg.Shell
	if shell == "" {
		shell = "powershell.exe"
	}
	if _, _, err := c.Spawn(shell, []string{}, &syscall.ProcAttr{Env: syscall.Environ()}); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &windowsPty{c: c}, nil
}

func (p *windowsPty) Read(b []byte) (int, error)  { return p.c.OutPipe().Read(b) }
func (p *windowsPty) Write(b []byte) (int, error) { return p.c.InPipe().Write(b) }

func (p *windowsPty) Resize(rows, cols int) error {
	return p.c.Resize(uint16(cols), uint16(rows))
}

func (p *windowsPty) Close() error { return p.c.Close() }
