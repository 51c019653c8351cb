//go:build !windows

package gridterm

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

type unixPty struct {
	f   *os.File
	cmd *exec.Cmd
}

// StartShell launches the program attached to a new pseudo terminal sized
// to the given dimensions, with TERM set from the config.
func StartShell(cfg Config) (Pty, error) {
	cmd := exec.Command(cfg.ShellCommand())
	cmd.Env = append(os.Environ(), "TERM="+cfg.Term)
	f, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(cfg.Rows),
		Cols: uint16(cfg.Cols),
	})
	if err != nil {
		return nil, err
	}
	return &unixPty{f: f, cmd: cmd}, nil
}

func (p *unixPty) Read(b []byte) (int, error)  { return p.f.Read(b) }
func (p *unixPty) Write(b []byte) (int, error) { return p.f.Write(b) }

func (p *unixPty) Resize(rows, cols int) error {
	return pty.Setsize(p.f, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Close tears down the PTY and reaps the hosted process.
func (p *unixPty) Close() error {
	err := p.f.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
	return err
}
