package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/yara-lsp/src/yls/factory"
	"github.com/uber/yara-lsp/src/yls/gateway/ide-client/notifiermock"
	"github.com/uber/yara-lsp/src/yls/mapper"
	"go.lsp.dev/protocol"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestRegisterClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	g := gateway{
		clients: make(map[uuid.UUID]Notifier),
		logger:  zap.NewNop().Sugar(),
	}

	for i := 0; i < 10; i++ {
		err := g.RegisterClient(ctx, factory.UUID(), notifiermock.NewMockNotifier(ctrl))
		assert.NoError(t, err)
	}
	assert.Len(t, g.clients, 10)

	assert.Error(t, g.RegisterClient(ctx, factory.UUID(), nil))
	assert.Len(t, g.clients, 10)
}

func TestDeregisterClient(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	g := gateway{
		clients: make(map[uuid.UUID]Notifier),
		logger:  zap.NewNop().Sugar(),
	}

	for i := 0; i < 10; i++ {
		require.NoError(t, g.RegisterClient(ctx, factory.UUID(), notifiermock.NewMockNotifier(ctrl)))
	}

	// Remove clients one by one and confirm removal.
	for key := range g.clients {
		assert.NotNil(t, g.clients[key])
		assert.NoError(t, g.DeregisterClient(ctx, key))
		assert.Nil(t, g.clients[key])
	}
	assert.Len(t, g.clients, 0)
}

func TestPublishDiagnostics(t *testing.T) {
	g, mockNotifier, ctx := getTestGateway(t)

	publishDiagnosticsParams := &protocol.PublishDiagnosticsParams{
		URI: "file:///tmp/rules/a.yar",
		Diagnostics: []protocol.Diagnostic{
			{Message: "syntax error, unexpected identifier", Severity: protocol.DiagnosticSeverityError},
		},
	}

	t.Run("notify success", func(t *testing.T) {
		mockNotifier.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodTextDocumentPublishDiagnostics), gomock.Eq(publishDiagnosticsParams)).Return(nil)
		assert.NoError(t, g.PublishDiagnostics(ctx, publishDiagnosticsParams))
	})
	t.Run("nil diagnostics are sent as an empty list", func(t *testing.T) {
		params := &protocol.PublishDiagnosticsParams{URI: "file:///tmp/rules/a.yar"}
		mockNotifier.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodTextDocumentPublishDiagnostics), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, params interface{}) error {
				p := params.(*protocol.PublishDiagnosticsParams)
				assert.NotNil(t, p.Diagnostics)
				assert.Empty(t, p.Diagnostics)
				return nil
			})
		assert.NoError(t, g.PublishDiagnostics(ctx, params))
	})
	t.Run("notify failure", func(t *testing.T) {
		mockNotifier.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodTextDocumentPublishDiagnostics), gomock.Eq(publishDiagnosticsParams)).Return(errors.New("error"))
		assert.Error(t, g.PublishDiagnostics(ctx, publishDiagnosticsParams))
	})
	t.Run("invalid context", func(t *testing.T) {
		assert.Error(t, g.PublishDiagnostics(context.Background(), publishDiagnosticsParams))
	})
	t.Run("client not found", func(t *testing.T) {
		ctx := mapper.SessionUUIDToContext(context.Background(), factory.UUID())
		assert.Error(t, g.PublishDiagnostics(ctx, publishDiagnosticsParams))
	})
}

func TestShowMessage(t *testing.T) {
	g, mockNotifier, ctx := getTestGateway(t)

	messageParams := &protocol.ShowMessageParams{
		Message: "yarac is not installed. Diagnostics are disabled",
		Type:    protocol.MessageTypeError,
	}

	t.Run("notify success", func(t *testing.T) {
		mockNotifier.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowShowMessage), gomock.Eq(messageParams)).Return(nil)
		assert.NoError(t, g.ShowMessage(ctx, messageParams))
	})
	t.Run("notify failure", func(t *testing.T) {
		mockNotifier.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowShowMessage), gomock.Eq(messageParams)).Return(errors.New("error"))
		assert.Error(t, g.ShowMessage(ctx, messageParams))
	})
	t.Run("invalid context", func(t *testing.T) {
		assert.Error(t, g.ShowMessage(context.Background(), messageParams))
	})
}

func TestLogMessage(t *testing.T) {
	g, mockNotifier, ctx := getTestGateway(t)

	logMessageParams := &protocol.LogMessageParams{
		Message: "yls ready",
		Type:    protocol.MessageTypeInfo,
	}

	t.Run("notify success", func(t *testing.T) {
		mockNotifier.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowLogMessage), gomock.Eq(logMessageParams)).Return(nil)
		assert.NoError(t, g.LogMessage(ctx, logMessageParams))
	})
	t.Run("notify failure", func(t *testing.T) {
		mockNotifier.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowLogMessage), gomock.Eq(logMessageParams)).Return(errors.New("error"))
		assert.Error(t, g.LogMessage(ctx, logMessageParams))
	})
	t.Run("deregistered client", func(t *testing.T) {
		id, err := mapper.ContextToSessionUUID(ctx)
		require.NoError(t, err)
		require.NoError(t, g.DeregisterClient(ctx, id))
		assert.Error(t, g.LogMessage(ctx, logMessageParams))
	})
}

func getTestGateway(t *testing.T) (Gateway, *notifiermock.MockNotifier, context.Context) {
	id := factory.UUID()
	ctx := mapper.SessionUUIDToContext(context.Background(), id)
	ctrl := gomock.NewController(t)

	mockNotifier := notifiermock.NewMockNotifier(ctrl)
	g := New(Params{Logger: zap.NewNop().Sugar()})
	require.NoError(t, g.RegisterClient(ctx, id, mockNotifier))
	return g, mockNotifier, ctx
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
