package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestResult(t *testing.T) {
	r := Implemented([]protocol.Location{})
	v, ok := r.Value()
	assert.True(t, ok)
	assert.NotNil(t, v)

	payload, ok := r.Payload()
	assert.True(t, ok)
	assert.Equal(t, []protocol.Location{}, payload)

	n := NotImplemented[*protocol.WorkspaceEdit]()
	edit, ok := n.Value()
	assert.False(t, ok)
	assert.Nil(t, edit)

	payload, ok = n.Payload()
	assert.False(t, ok)
	assert.Nil(t, payload)
}

func TestDefaultProviders(t *testing.T) {
	ctx := context.Background()
	doc := protocol.TextDocumentIdentifier{URI: "file:///tmp/rules/a.yar"}
	position := protocol.TextDocumentPositionParams{TextDocument: doc}

	core, recorded := observer.New(zap.WarnLevel)
	c := New(Params{Logger: zap.New(core).Sugar()})

	completion, err := c.Completion(ctx, &protocol.CompletionParams{TextDocumentPositionParams: position})
	require.NoError(t, err)
	_, ok := completion.Value()
	assert.False(t, ok)

	definition, err := c.Definition(ctx, &protocol.DefinitionParams{TextDocumentPositionParams: position})
	require.NoError(t, err)
	_, ok = definition.Value()
	assert.False(t, ok)

	highlight, err := c.DocumentHighlight(ctx, &protocol.DocumentHighlightParams{TextDocumentPositionParams: position})
	require.NoError(t, err)
	_, ok = highlight.Value()
	assert.False(t, ok)

	references, err := c.References(ctx, &protocol.ReferenceParams{TextDocumentPositionParams: position})
	require.NoError(t, err)
	_, ok = references.Value()
	assert.False(t, ok)

	rename, err := c.Rename(ctx, &protocol.RenameParams{TextDocumentPositionParams: position, NewName: "b"})
	require.NoError(t, err)
	_, ok = rename.Value()
	assert.False(t, ok)

	logs := recorded.All()
	require.Len(t, logs, 5)
	assert.Equal(t, "completion is not yet implemented", logs[0].Message)
	assert.Equal(t, "rename is not yet implemented", logs[4].Message)
	assert.Equal(t, string(doc.URI), logs[0].ContextMap()["document"])
}
