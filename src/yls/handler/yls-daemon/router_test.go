package ylsdaemon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"github.com/uber/yara-lsp/src/yls/controller/providers"
	"github.com/uber/yara-lsp/src/yls/controller/yls-daemon/ylsdaemonmock"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestRouterTables(t *testing.T) {
	r := newRouter(nil, tally.NoopScope, zap.NewNop().Sugar())

	for _, method := range []string{
		protocol.MethodTextDocumentCompletion,
		protocol.MethodTextDocumentDefinition,
		protocol.MethodTextDocumentDocumentHighlight,
		protocol.MethodTextDocumentReferences,
		protocol.MethodTextDocumentRename,
	} {
		assert.Contains(t, r.requests, method)
	}
	for _, method := range []string{
		protocol.MethodInitialized,
		MethodCancelRequest,
		protocol.MethodTextDocumentDidOpen,
		protocol.MethodTextDocumentDidChange,
		protocol.MethodTextDocumentDidClose,
		protocol.MethodTextDocumentDidSave,
	} {
		assert.Contains(t, r.notifications, method)
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	scope := tally.NewTestScope("testing", make(map[string]string, 0))
	r := newRouter(nil, scope, zap.NewNop().Sugar())

	_, err := r.dispatch(context.Background(), "sampleMethod", nil)
	var rpcErr *jsonrpc2.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, jsonrpc2.MethodNotFound, rpcErr.Code)
	assert.Equal(t, int64(1), counterValue(scope, "testing.requests+method=sampleMethod"))
}

func TestNotifyUnknownMethod(t *testing.T) {
	r := newRouter(nil, tally.NoopScope, zap.NewNop().Sugar())
	assert.NoError(t, r.notify(context.Background(), "$/setTrace", nil))
	assert.NoError(t, r.notify(context.Background(), "workspace/didChangeWorkspaceFolders", nil))
}

func TestHighlightAbsentParams(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := ylsdaemonmock.NewMockController(ctrl)
	r := newRouter(c, tally.NoopScope, zap.NewNop().Sugar())

	highlights := []protocol.DocumentHighlight{{Kind: protocol.DocumentHighlightKindText}}
	c.EXPECT().DocumentHighlight(gomock.Any(), &protocol.DocumentHighlightParams{}).Return(providers.Implemented(highlights), nil)

	got, err := r.dispatch(context.Background(), protocol.MethodTextDocumentDocumentHighlight, nil)
	require.NoError(t, err)
	assert.Equal(t, highlights, got)
}

func TestProviderResult(t *testing.T) {
	scope := tally.NewTestScope("testing", make(map[string]string, 0))
	r := &router{stats: scope}

	got, err := providerResult(r, providers.Implemented([]protocol.Location{}), nil)
	assert.NoError(t, err)
	assert.Equal(t, []protocol.Location{}, got)

	got, err = providerResult(r, providers.NotImplemented[*protocol.WorkspaceEdit](), nil)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(1), counterValue(scope, "testing.not_implemented+"))

	_, err = providerResult(r, providers.Result[*protocol.CompletionList]{}, errors.New("sample"))
	assert.Error(t, err)
}
