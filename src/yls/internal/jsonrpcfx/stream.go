package jsonrpcfx

import (
	"io"
	"net"
	"sync"

	"go.uber.org/multierr"
)

// Stream is the bidirectional byte stream of one client connection.
// Close releases both directions exactly once, however many times it is called.
type Stream struct {
	io.Reader
	io.Writer

	closers  []io.Closer
	once     sync.Once
	closeErr error
}

// NewStream returns a Stream reading from r and writing to w. Closers are closed in order by Close.
func NewStream(r io.Reader, w io.Writer, closers ...io.Closer) *Stream {
	return &Stream{
		Reader:  r,
		Writer:  w,
		closers: closers,
	}
}

// NewConnStream returns a Stream over a network connection.
func NewConnStream(conn net.Conn) *Stream {
	return NewStream(conn, conn, conn)
}

// Close closes every underlying closer and returns their combined error.
func (s *Stream) Close() error {
	s.once.Do(func() {
		for _, c := range s.closers {
			s.closeErr = multierr.Append(s.closeErr, c.Close())
		}
	})
	return s.closeErr
}
