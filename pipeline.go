package gridterm

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrPipelineClosed is returned by Engine methods after the engine has shut
// down.
var ErrPipelineClosed = errors.New("gridterm: pipeline closed")

const (
	defaultReadBuffer = 4096
	defaultQueueDepth = 32
)

// Engine pumps PTY output through the parser into the terminal. One
// goroutine reads the PTY into a bounded queue, one applies chunks under
// the terminal lock, and a coalescing channel wakes the renderer. Only the
// applier ever touches the parser, preserving the single-writer
// discipline.
type Engine struct {
	term   *Terminal
	parser *Parser
	pty    Pty
	logger *log.Logger
	id     uuid.UUID

	readBuffer int

	chunks  chan []byte
	updates chan struct{}

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// EngineOption configures an Engine during construction.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine's structured logger.
func WithEngineLogger(l *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithReadBuffer sets the PTY read chunk size.
func WithReadBuffer(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.readBuffer = n
		}
	}
}

// WithQueueDepth bounds the number of chunks held between the reader and
// the applier.
func WithQueueDepth(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.chunks = make(chan []byte, n)
		}
	}
}

// NewEngine wires a terminal to a PTY. The terminal's reply writer should
// already point at the PTY so query responses reach the hosted program.
func NewEngine(t *Terminal, p Pty, opts ...EngineOption) *Engine {
	e := &Engine{
		term:       t,
		parser:     NewParser(t),
		pty:        p,
		logger:     log.Default(),
		id:         uuid.New(),
		readBuffer: defaultReadBuffer,
		updates:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	for _, o := range opts {
		o(e)
	}
	if e.chunks == nil {
		e.chunks = make(chan []byte, defaultQueueDepth)
	}
	return e
}

// ID returns the engine's session identifier, used in log correlation.
func (e *Engine) ID() uuid.UUID { return e.id }

// Updates delivers at most one pending wakeup; consumers snapshot the
// terminal when it fires. Signals between snapshots coalesce.
func (e *Engine) Updates() <-chan struct{} { return e.updates }

// Run pumps until the PTY reaches EOF or the context is cancelled. It
// returns nil on clean EOF. Closing the PTY on cancellation unblocks the
// reader.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Debug("pipeline started", "session", e.id)
	defer func() {
		e.shutdown()
		e.logger.Debug("pipeline stopped", "session", e.id)
	}()

	readErr := make(chan error, 1)
	go e.readLoop(readErr)

	go func() {
		select {
		case <-ctx.Done():
			_ = e.pty.Close()
		case <-e.done:
		}
	}()

	for {
		select {
		case chunk, ok := <-e.chunks:
			if !ok {
				err := <-readErr
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
			e.term.Process(e.parser, chunk)
			e.notify()
		case <-ctx.Done():
			// drain so the reader can observe the closed PTY
			for range e.chunks {
			}
			<-readErr
			return ctx.Err()
		}
	}
}

func (e *Engine) readLoop(errc chan<- error) {
	defer close(e.chunks)
	buf := make([]byte, e.readBuffer)
	for {
		n, err := e.pty.Read(buf)
		if n > 0 {
			e.chunks <- append([]byte(nil), buf[:n]...)
		}
		if err != nil {
			if isCleanExit(err) {
				errc <- nil
			} else {
				e.logger.Debug("pty read failed", "session", e.id, "err", err)
				errc <- err
			}
			return
		}
	}
}

// isCleanExit classifies read errors that just mean the hosted program is
// gone. A Linux PTY master reports EIO rather than EOF when the child
// exits, and a cancelled engine closes the PTY under the reader.
func isCleanExit(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, syscall.EIO)
}

// notify coalesces wakeups; a full channel already owes the consumer a
// snapshot.
func (e *Engine) notify() {
	select {
	case e.updates <- struct{}{}:
	default:
	}
}

func (e *Engine) shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.done)
	_ = e.pty.Close()
	// final wakeup so the consumer observes the last damage
	e.notify()
}

// Write sends input bytes to the hosted program.
func (e *Engine) Write(p []byte) (int, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return 0, ErrPipelineClosed
	}
	return e.pty.Write(p)
}

// Resize applies new dimensions to the terminal and the PTY together so
// the hosted program's SIGWINCH view matches the buffer.
func (e *Engine) Resize(rows, cols int) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ErrPipelineClosed
	}
	if err := e.term.Resize(rows, cols); err != nil {
		return err
	}
	if err := e.pty.Resize(rows, cols); err != nil {
		return err
	}
	e.notify()
	return nil
}
