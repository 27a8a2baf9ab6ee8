package ylsdaemon

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/uber-go/tally"
	controller "github.com/uber/yara-lsp/src/yls/controller/yls-daemon"
	"github.com/uber/yara-lsp/src/yls/controller/providers"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// MethodCancelRequest is sent by clients to cancel an in-flight request.
const MethodCancelRequest = "$/cancelRequest"

type requestHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

type notificationHandler func(ctx context.Context, params json.RawMessage) error

// router maps method names to controller operations. The tables are fixed at construction.
type router struct {
	ylsdaemon     controller.Controller
	requests      map[string]requestHandler
	notifications map[string]notificationHandler
	stats         tally.Scope
	logger        *zap.SugaredLogger
}

func newRouter(ctrl controller.Controller, stats tally.Scope, logger *zap.SugaredLogger) *router {
	r := &router{
		ylsdaemon: ctrl,
		stats:     stats,
		logger:    logger,
	}

	r.requests = map[string]requestHandler{
		// Code intel related methods.
		protocol.MethodTextDocumentCompletion:        r.Completion,
		protocol.MethodTextDocumentDefinition:        r.GotoDefinition,
		protocol.MethodTextDocumentDocumentHighlight: r.DocumentHighlight,
		protocol.MethodTextDocumentReferences:        r.References,
		protocol.MethodTextDocumentRename:            r.Rename,
	}

	r.notifications = map[string]notificationHandler{
		// Lifecycle related methods.
		protocol.MethodInitialized: r.Initialized,
		MethodCancelRequest:        r.CancelRequest,

		// Document related methods.
		protocol.MethodTextDocumentDidOpen:   r.DidOpen,
		protocol.MethodTextDocumentDidChange: r.DidChange,
		protocol.MethodTextDocumentDidClose:  r.DidClose,
		protocol.MethodTextDocumentDidSave:   r.DidSave,
	}
	return r
}

// dispatch calls the operation registered for a request method.
func (r *router) dispatch(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	r.stats.Tagged(map[string]string{"method": method}).Counter("requests").Inc(1)

	h, ok := r.requests[method]
	if !ok {
		r.stats.Counter("method_not_found").Inc(1)
		return nil, jsonrpc2.NewError(jsonrpc2.MethodNotFound, fmt.Sprintf("method not found: %q", method))
	}
	return h(ctx, params)
}

// notify calls the operation registered for a notification method. Unknown notifications are dropped.
func (r *router) notify(ctx context.Context, method string, params json.RawMessage) error {
	h, ok := r.notifications[method]
	if !ok {
		if !strings.HasPrefix(method, "$/") {
			r.logger.Debugw("ignoring unknown notification", "method", method)
		}
		return nil
	}
	return h(ctx, params)
}

// providerResult converts a provider result into a response payload.
// Unimplemented features are answered with null so the client never waits on a missing reply.
func providerResult[T any](r *router, res providers.Result[T], err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	v, ok := res.Payload()
	if !ok {
		r.stats.Counter("not_implemented").Inc(1)
		return nil, nil
	}
	return v, nil
}
