package framing

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMessage(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantBody   string
		wantHeader map[string]string
		wantErr    error
	}{
		{
			name:       "single frame",
			input:      "Content-Length: 2\r\n\r\n{}",
			wantBody:   "{}",
			wantHeader: map[string]string{"Content-Length": "2"},
		},
		{
			name:     "unknown headers are preserved",
			input:    "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\nContent-Length: 4\r\n\r\nnull",
			wantBody: "null",
			wantHeader: map[string]string{
				"Content-Length": "4",
				"Content-Type":   "application/vscode-jsonrpc; charset=utf-8",
			},
		},
		{
			name:       "header name is case insensitive",
			input:      "content-length: 2\r\n\r\n[]",
			wantBody:   "[]",
			wantHeader: map[string]string{"Content-Length": "2"},
		},
		{
			name:       "bare newline line endings",
			input:      "Content-Length: 2\n\n{}",
			wantBody:   "{}",
			wantHeader: map[string]string{"Content-Length": "2"},
		},
		{
			name:       "zero length body",
			input:      "Content-Length: 0\r\n\r\n",
			wantBody:   "",
			wantHeader: map[string]string{"Content-Length": "0"},
		},
		{
			name:    "missing length",
			input:   "Content-Type: text/plain\r\n\r\n{}",
			wantErr: ErrMissingLength,
		},
		{
			name:    "non integer length",
			input:   "Content-Length: ten\r\n\r\n{}",
			wantErr: ErrInvalidLength,
		},
		{
			name:    "negative length",
			input:   "Content-Length: -1\r\n\r\n",
			wantErr: ErrInvalidLength,
		},
		{
			name:    "conflicting lengths",
			input:   "Content-Length: 2\r\nContent-Length: 3\r\n\r\n{}",
			wantErr: ErrInvalidLength,
		},
		{
			name:    "header without colon",
			input:   "Content-Length 2\r\n\r\n{}",
			wantErr: ErrMalformedHeader,
		},
		{
			name:    "truncated body",
			input:   "Content-Length: 10\r\n\r\n{}",
			wantErr: ErrTruncatedBody,
		},
		{
			name:    "clean end of stream",
			input:   "",
			wantErr: io.EOF,
		},
		{
			name:    "end of stream inside header",
			input:   "Content-Length: 2\r\n",
			wantErr: io.ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.input))
			msg, err := r.ReadMessage()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, string(msg.Body))
			assert.Equal(t, tt.wantHeader, msg.Header)
		})
	}
}

func TestReadMessagePartialReads(t *testing.T) {
	input := "Content-Length: 17\r\n\r\n{\"method\":\"a\"}  \nContent-Length: 2\r\n\r\n{}"
	r := NewReader(iotest.OneByteReader(strings.NewReader(input)))

	first, err := r.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "{\"method\":\"a\"}  \n", string(first.Body))

	second, err := r.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(second.Body))

	_, err = r.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadMessageMaxBodySize(t *testing.T) {
	r := NewReader(strings.NewReader("Content-Length: 11\r\n\r\n01234567890"), WithMaxBodySize(10))
	_, err := r.ReadMessage()
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestReadMessageHeaderLimits(t *testing.T) {
	t.Run("oversized header line is rejected without buffering it", func(t *testing.T) {
		junk := &endlessReader{prefix: []byte("X-Junk: "), fill: 'a'}
		r := NewReader(junk, WithMaxBodySize(1024))

		_, err := r.ReadMessage()
		var ferr *Error
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, MalformedHeader, ferr.Kind)
		assert.LessOrEqual(t, junk.read, 2*_maxHeaderLineSize)
	})

	t.Run("line at the limit is accepted", func(t *testing.T) {
		value := strings.Repeat("a", _maxHeaderLineSize-len("X-Pad: \r\n"))
		input := "X-Pad: " + value + "\r\nContent-Length: 2\r\n\r\n{}"
		msg, err := NewReader(strings.NewReader(input)).ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, "{}", string(msg.Body))
		assert.Equal(t, value, msg.Header["X-Pad"])
	})

	t.Run("oversized header block is rejected", func(t *testing.T) {
		var b strings.Builder
		for b.Len() <= _maxHeaderSize {
			b.WriteString("X-Filler: " + strings.Repeat("b", 100) + "\r\n")
		}
		b.WriteString("Content-Length: 2\r\n\r\n{}")

		_, err := NewReader(strings.NewReader(b.String())).ReadMessage()
		assert.ErrorIs(t, err, ErrMalformedHeader)
	})

	t.Run("caller supplied small buffer", func(t *testing.T) {
		br := bufio.NewReaderSize(strings.NewReader("Content-Length: 2\r\n\r\n{}"), 16)
		msg, err := NewReader(br).ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, "{}", string(msg.Body))
	})
}

func TestReadMessageIOError(t *testing.T) {
	sample := errors.New("connection reset")
	r := NewReader(iotest.ErrReader(sample))
	_, err := r.ReadMessage()
	assert.ErrorIs(t, err, sample)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestWriteMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "ascii body",
			body: `{"jsonrpc":"2.0","id":0,"result":{}}`,
			want: "Content-Length: 36\r\n\r\n" + `{"jsonrpc":"2.0","id":0,"result":{}}`,
		},
		{
			name: "multi-byte body counts bytes, not characters",
			body: `"héllo ✓"`,
			want: "Content-Length: 12\r\n\r\n" + `"héllo ✓"`,
		},
		{
			name: "empty body",
			body: "",
			want: "Content-Length: 0\r\n\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			require.NoError(t, w.WriteMessage([]byte(tt.body)))
			assert.Equal(t, tt.want, buf.String())

			// Whatever is written must read back to the same body.
			msg, err := NewReader(&buf).ReadMessage()
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(msg.Body))
		})
	}
}

func TestWriteMessageFlushes(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	w := NewWriter(bw)

	require.NoError(t, w.WriteMessage([]byte("{}")))
	assert.Equal(t, "Content-Length: 2\r\n\r\n{}", buf.String())
}

func TestWriteMessageError(t *testing.T) {
	sample := errors.New("broken pipe")
	w := NewWriter(failingWriter{err: sample})
	err := w.WriteMessage([]byte("{}"))
	assert.ErrorIs(t, err, sample)
}

func TestWriteMessageConcurrent(t *testing.T) {
	var buf lockedBuffer
	w := NewWriter(&buf)

	bodies := []string{`{"a":1}`, `{"bb":22}`, `{"ccc":333}`}
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(body string) {
			defer wg.Done()
			assert.NoError(t, w.WriteMessage([]byte(body)))
		}(bodies[i%len(bodies)])
	}
	wg.Wait()

	r := NewReader(bytes.NewReader(buf.Bytes()))
	for i := 0; i < 30; i++ {
		msg, err := r.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, bodies, string(msg.Body))
	}
	_, err := r.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "MissingLength", MissingLength.String())
	assert.Equal(t, "InvalidLength", InvalidLength.String())
	assert.Equal(t, "TruncatedBody", TruncatedBody.String())
	assert.Equal(t, "MalformedHeader", MalformedHeader.String())
	assert.Equal(t, "ErrorKind(42)", ErrorKind(42).String())

	err := &Error{Kind: TruncatedBody, Detail: "expected 10 bytes", Err: io.ErrUnexpectedEOF}
	assert.Equal(t, "framing error: TruncatedBody: expected 10 bytes: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, ErrMissingLength)
}

// endlessReader yields prefix followed by fill bytes forever, counting what was handed out.
type endlessReader struct {
	prefix []byte
	fill   byte
	read   int
}

func (e *endlessReader) Read(p []byte) (int, error) {
	n := copy(p, e.prefix)
	e.prefix = e.prefix[n:]
	for i := n; i < len(p); i++ {
		p[i] = e.fill
	}
	e.read += len(p)
	return len(p), nil
}

type failingWriter struct {
	err error
}

func (f failingWriter) Write(p []byte) (int, error) {
	return 0, f.err
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Bytes()
}
