package gridterm

import "io"

// Pty is the process side of a terminal session: a bidirectional byte
// stream to the hosted program plus window size control.
type Pty interface {
	io.ReadWriteCloser
	Resize(rows, cols int) error
}
