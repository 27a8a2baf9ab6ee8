package ylsdaemon

import (
	"context"
	"encoding/json"

	"github.com/uber/yara-lsp/src/yls/mapper"
	"go.lsp.dev/protocol"
)

// Initialized is sent after the client received the result of the initialize request but before the client sends any other request or notification.
func (r *router) Initialized(ctx context.Context, raw json.RawMessage) error {
	params, err := mapper.DecodeParams[protocol.InitializedParams](raw)
	if err != nil {
		return err
	}
	return r.ylsdaemon.Initialized(ctx, params)
}

// CancelRequest is accepted and ignored: requests are answered in order, so none is still pending when it is read.
func (r *router) CancelRequest(ctx context.Context, raw json.RawMessage) error {
	return nil
}
