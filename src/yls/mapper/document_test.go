package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ylserrors "github.com/uber/yara-lsp/src/yls/internal/errors"
	"go.lsp.dev/protocol"
)

func rangeOf(startLine, startChar, endLine, endChar uint32) *protocol.Range {
	return &protocol.Range{
		Start: protocol.Position{Line: startLine, Character: startChar},
		End:   protocol.Position{Line: endLine, Character: endChar},
	}
}

func TestApplyContentChanges(t *testing.T) {
	tests := []struct {
		name        string
		initialText string
		changes     []protocol.TextDocumentContentChangeEvent
		expected    string
		wantErr     bool
	}{
		{
			name:        "full replacement",
			initialText: "rule a { condition: true }",
			changes: []protocol.TextDocumentContentChangeEvent{
				{Text: "rule b { condition: false }"},
			},
			expected: "rule b { condition: false }",
		},
		{
			name:        "added at end",
			initialText: "sample\ncontent\n",
			changes: []protocol.TextDocumentContentChangeEvent{
				{Range: rangeOf(2, 0, 2, 0), Text: "addedText"},
			},
			expected: "sample\ncontent\naddedText",
		},
		{
			name:        "added at beginning",
			initialText: "sample\ncontent\n",
			changes: []protocol.TextDocumentContentChangeEvent{
				{Range: rangeOf(0, 0, 0, 0), Text: "addedText\n"},
			},
			expected: "addedText\nsample\ncontent\n",
		},
		{
			name:        "replace full line",
			initialText: "sample\ncontent\n",
			changes: []protocol.TextDocumentContentChangeEvent{
				{Range: rangeOf(0, 0, 1, 0), Text: "addedText\n"},
			},
			expected: "addedText\ncontent\n",
		},
		{
			name:        "sequential changes",
			initialText: "rule a {\n  condition: true\n}\n",
			changes: []protocol.TextDocumentContentChangeEvent{
				{Range: rangeOf(0, 5, 0, 6), Text: "demo"},
				{Range: rangeOf(1, 13, 1, 17), Text: "false"},
			},
			expected: "rule demo {\n  condition: false\n}\n",
		},
		{
			name:        "full replacement followed by ranged change",
			initialText: "old",
			changes: []protocol.TextDocumentContentChangeEvent{
				{Text: "abc"},
				{Range: rangeOf(0, 1, 0, 2), Text: "X"},
			},
			expected: "aXc",
		},
		{
			name:        "utf-16 columns after multi-byte characters",
			initialText: "$s = \"é😀x\"",
			changes: []protocol.TextDocumentContentChangeEvent{
				// é is one UTF-16 unit and 😀 is a surrogate pair.
				{Range: rangeOf(0, 9, 0, 10), Text: "y"},
			},
			expected: "$s = \"é😀y\"",
		},
		{
			name:        "line out of range",
			initialText: "sample\ncontent",
			changes: []protocol.TextDocumentContentChangeEvent{
				{Range: rangeOf(5, 0, 5, 0), Text: "x"},
			},
			wantErr: true,
		},
		{
			name:        "character beyond end of line",
			initialText: "ab\ncd",
			changes: []protocol.TextDocumentContentChangeEvent{
				{Range: rangeOf(0, 0, 0, 3), Text: "x"},
			},
			wantErr: true,
		},
		{
			name:        "end before start",
			initialText: "abcdef",
			changes: []protocol.TextDocumentContentChangeEvent{
				{Range: rangeOf(0, 4, 0, 1), Text: "x"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ApplyContentChanges("file:///tmp/a.yar", tt.initialText, tt.changes)
			if tt.wantErr {
				var rangeErr *ylserrors.DocumentRangeError
				assert.ErrorAs(t, err, &rangeErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestPositionOffset(t *testing.T) {
	text := "ab\nc😀d\n"
	tests := []struct {
		name    string
		pos     protocol.Position
		want    int
		wantErr bool
	}{
		{name: "start", pos: protocol.Position{Line: 0, Character: 0}, want: 0},
		{name: "end of first line", pos: protocol.Position{Line: 0, Character: 2}, want: 2},
		{name: "after surrogate pair", pos: protocol.Position{Line: 1, Character: 3}, want: 8},
		{name: "end of document", pos: protocol.Position{Line: 2, Character: 0}, want: len(text)},
		{name: "past end of document", pos: protocol.Position{Line: 2, Character: 1}, wantErr: true},
		{name: "missing line", pos: protocol.Position{Line: 3, Character: 0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PositionOffset(text, tt.pos)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineRange(t *testing.T) {
	text := "rule a {\r\n  strings: $s = \"é\"\n}"
	assert.Equal(t, *rangeOf(0, 0, 0, 8), LineRange(text, 0))
	assert.Equal(t, *rangeOf(1, 0, 1, 19), LineRange(text, 1))
	assert.Equal(t, *rangeOf(2, 0, 2, 1), LineRange(text, 2))
	assert.Equal(t, *rangeOf(7, 0, 7, 0), LineRange(text, 7))
}
