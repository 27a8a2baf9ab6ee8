// Package framing reads and writes Content-Length delimited frames on a byte stream.
package framing

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
)

const (
	// HeaderContentLength is the only header interpreted by the framing layer.
	HeaderContentLength = "Content-Length"

	// DefaultMaxBodySize caps the body size accepted from a peer.
	DefaultMaxBodySize = 64 << 20

	_headerTerminator = "\r\n"

	// _maxHeaderLineSize caps a single header line, terminator included.
	_maxHeaderLineSize = 4 << 10
	// _maxHeaderSize caps the whole header block of one frame.
	_maxHeaderSize = 64 << 10
)

// Message is one frame read off the wire.
type Message struct {
	// Header holds every header of the frame keyed by canonical name. Unknown headers are kept but not interpreted.
	Header map[string]string
	Body   []byte
}

// Reader pulls whole frames from a stream, accumulating across partial reads.
type Reader struct {
	r           *bufio.Reader
	maxBodySize int
}

// ReaderOption customizes a Reader.
type ReaderOption func(*Reader)

// WithMaxBodySize overrides DefaultMaxBodySize.
func WithMaxBodySize(n int) ReaderOption {
	return func(r *Reader) {
		r.maxBodySize = n
	}
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:           bufio.NewReaderSize(r, _maxHeaderLineSize),
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// ReadMessage reads the next frame.
// It returns io.EOF only when the stream ends cleanly between frames.
func (r *Reader) ReadMessage() (*Message, error) {
	header, length, err := r.readHeader()
	if err != nil {
		return nil, err
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r.r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &Error{
				Kind:   TruncatedBody,
				Detail: fmt.Sprintf("expected %d bytes", length),
				Err:    io.ErrUnexpectedEOF,
			}
		}
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return &Message{Header: header, Body: body}, nil
}

func (r *Reader) readHeader() (map[string]string, int, error) {
	header := make(map[string]string)
	length := -1
	started := false
	total := 0

	for {
		line, err := r.readHeaderLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if !started && line == "" {
					return nil, 0, io.EOF
				}
				return nil, 0, fmt.Errorf("reading header: %w", io.ErrUnexpectedEOF)
			}
			return nil, 0, err
		}
		started = true

		total += len(line)
		if total > _maxHeaderSize {
			return nil, 0, &Error{Kind: MalformedHeader, Detail: fmt.Sprintf("header block exceeds %d bytes", _maxHeaderSize)}
		}

		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if line == "" {
			break
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, 0, &Error{Kind: MalformedHeader, Detail: strconv.Quote(line)}
		}
		name = textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(name))
		value = strings.TrimSpace(value)

		if name == HeaderContentLength {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, 0, &Error{Kind: InvalidLength, Detail: strconv.Quote(value)}
			}
			if length >= 0 && n != length {
				return nil, 0, &Error{Kind: InvalidLength, Detail: "conflicting Content-Length headers"}
			}
			if n > r.maxBodySize {
				return nil, 0, &Error{Kind: InvalidLength, Detail: fmt.Sprintf("%d bytes exceeds limit of %d", n, r.maxBodySize)}
			}
			length = n
		}
		header[name] = value
	}

	if length < 0 {
		return nil, 0, &Error{Kind: MissingLength}
	}
	return header, length, nil
}

// readHeaderLine returns one header line including its terminator. Lines longer than
// _maxHeaderLineSize are rejected without being buffered in full.
func (r *Reader) readHeaderLine() (string, error) {
	line, err := r.r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) || len(line) > _maxHeaderLineSize {
		return "", &Error{Kind: MalformedHeader, Detail: fmt.Sprintf("header line exceeds %d bytes", _maxHeaderLineSize)}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading header: %w", err)
	}
	return string(line), err
}

// Writer emits frames. It is safe for concurrent use; each frame reaches the underlying writer in a single Write call.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteMessage frames body with its exact byte length and writes it.
func (w *Writer) WriteMessage(body []byte) error {
	var buf bytes.Buffer
	buf.Grow(len(body) + 32)
	buf.WriteString(HeaderContentLength)
	buf.WriteString(": ")
	buf.WriteString(strconv.Itoa(len(body)))
	buf.WriteString(_headerTerminator)
	buf.WriteString(_headerTerminator)
	buf.Write(body)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if f, ok := w.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flushing message: %w", err)
		}
	}
	return nil
}
