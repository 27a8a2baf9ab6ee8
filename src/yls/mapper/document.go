package mapper

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/uber/yara-lsp/src/yls/internal/errors"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// ApplyContentChanges applies the given content change events, in order, to a document's text.
// A change without a range replaces the whole text.
func ApplyContentChanges(doc uri.URI, text string, changes []protocol.TextDocumentContentChangeEvent) (string, error) {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}

		start, err := PositionOffset(text, change.Range.Start)
		if err != nil {
			return "", &errors.DocumentRangeError{Document: doc, Range: *change.Range, Reason: err.Error()}
		}
		end, err := PositionOffset(text, change.Range.End)
		if err != nil {
			return "", &errors.DocumentRangeError{Document: doc, Range: *change.Range, Reason: err.Error()}
		}
		if end < start {
			return "", &errors.DocumentRangeError{Document: doc, Range: *change.Range, Reason: "end precedes start"}
		}

		var b strings.Builder
		b.Grow(len(text) - (end - start) + len(change.Text))
		b.WriteString(text[:start])
		b.WriteString(change.Text)
		b.WriteString(text[end:])
		text = b.String()
	}
	return text, nil
}

// PositionOffset converts a protocol position, counted in UTF-16 code units, to a byte offset in text.
func PositionOffset(text string, p protocol.Position) (int, error) {
	offset := 0
	for line := uint32(0); line < p.Line; line++ {
		i := strings.IndexByte(text[offset:], '\n')
		if i < 0 {
			return 0, fmt.Errorf("line %d is beyond end of document", p.Line)
		}
		offset += i + 1
	}

	for col16 := uint32(0); col16 < p.Character; {
		if offset >= len(text) || text[offset] == '\n' {
			return 0, fmt.Errorf("character %d is beyond end of line %d", p.Character, p.Line)
		}
		r, size := utf8.DecodeRuneInString(text[offset:])
		if r == utf8.RuneError && size == 1 {
			return 0, fmt.Errorf("document contains invalid UTF-8 text")
		}
		col16 += uint32(utf16.RuneLen(r))
		offset += size
	}
	return offset, nil
}

// LineRange returns the range spanning the full content of a zero-based line, excluding its line ending.
// A line beyond the end of text yields an empty range at its start.
func LineRange(text string, line uint32) protocol.Range {
	start := protocol.Position{Line: line}
	lines := strings.Split(text, "\n")
	if int(line) >= len(lines) {
		return protocol.Range{Start: start, End: start}
	}

	content := strings.TrimSuffix(lines[line], "\r")
	return protocol.Range{
		Start: start,
		End:   protocol.Position{Line: line, Character: uint32(utf16Len(content))},
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
