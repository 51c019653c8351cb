package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gridterm"
)

var (
	flagConfig string
	flagRows   int
	flagCols   int
	flagShell  string
	flagDebug  bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "gridterm",
		Short: "Run a shell inside a headless terminal engine and mirror it to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to a YAML config file")
	cmd.Flags().IntVar(&flagRows, "rows", 0, "screen rows (overrides config)")
	cmd.Flags().IntVar(&flagCols, "cols", 0, "screen columns (overrides config)")
	cmd.Flags().StringVar(&flagShell, "shell", "", "program to run (overrides config)")
	cmd.Flags().BoolVar(&flagDebug, "debug", false, "log unsupported sequences")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "gridterm"})
	if flagDebug {
		logger.SetLevel(log.DebugLevel)
	}

	cfg := gridterm.DefaultConfig()
	if flagConfig != "" {
		var err error
		if cfg, err = gridterm.LoadConfig(flagConfig); err != nil {
			return err
		}
	}
	if flagRows > 0 {
		cfg.Rows = flagRows
	}
	if flagCols > 0 {
		cfg.Cols = flagCols
	}
	if flagRows == 0 && flagCols == 0 && flagConfig == "" {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			cfg.Rows, cfg.Cols = h, w
		}
	}
	if flagShell != "" {
		cfg.Shell = flagShell
	}

	p, err := gridterm.StartShell(cfg)
	if err != nil {
		return fmt.Errorf("starting shell: %w", err)
	}

	t := gridterm.New(cfg.Rows, cfg.Cols,
		gridterm.WithLogger(logger),
		gridterm.WithReply(p),
		gridterm.WithScrollback(cfg.Scrollback),
		gridterm.WithTitleHandler(func(title string) {
			logger.Info("title changed", "title", title)
		}),
	)
	engine := gridterm.NewEngine(t, p,
		gridterm.WithEngineLogger(logger),
		gridterm.WithReadBuffer(cfg.ReadBuffer),
		gridterm.WithQueueDepth(cfg.QueueDepth),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer term.Restore(fd, old)
	}

	// forward stdin to the hosted program
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if _, werr := engine.Write(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	// repaint on engine wakeups
	go func() {
		for range engine.Updates() {
			repaint(t)
		}
	}()

	err = engine.Run(ctx)
	if err == context.Canceled {
		err = nil
	}
	return err
}

// repaint mirrors the engine's screen onto the real terminal. Damage is
// ignored here; a full redraw per wakeup keeps the demo simple.
func repaint(t *gridterm.Terminal) {
	snap := t.Snapshot()
	out := "\x1b[H\x1b[2J"
	for i, line := range snap.Lines {
		if i > 0 {
			out += "\r\n"
		}
		out += line.String()
	}
	out += fmt.Sprintf("\x1b[%d;%dH", snap.Cursor.Row+1, snap.Cursor.Col+1)
	if snap.Cursor.Visible {
		out += "\x1b[?25h"
	} else {
		out += "\x1b[?25l"
	}
	_, _ = os.Stdout.WriteString(out)
}
