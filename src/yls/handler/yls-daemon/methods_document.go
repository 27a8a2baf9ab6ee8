package ylsdaemon

import (
	"context"
	"encoding/json"

	"github.com/uber/yara-lsp/src/yls/mapper"
)

// DidOpen is sent when a document is opened in the editor.
func (r *router) DidOpen(ctx context.Context, raw json.RawMessage) error {
	params, err := mapper.RawToDidOpenTextDocumentParams(raw)
	if err != nil {
		return err
	}
	return r.ylsdaemon.DidOpen(ctx, params)
}

// DidChange is sent for every edit of an open document.
func (r *router) DidChange(ctx context.Context, raw json.RawMessage) error {
	params, err := mapper.RawToDidChangeTextDocumentParams(raw)
	if err != nil {
		return err
	}
	return r.ylsdaemon.DidChange(ctx, params)
}

// DidClose is sent when a document is closed in the editor.
func (r *router) DidClose(ctx context.Context, raw json.RawMessage) error {
	params, err := mapper.RawToDidCloseTextDocumentParams(raw)
	if err != nil {
		return err
	}
	return r.ylsdaemon.DidClose(ctx, params)
}

// DidSave is sent when a document is saved.
func (r *router) DidSave(ctx context.Context, raw json.RawMessage) error {
	params, err := mapper.RawToDidSaveTextDocumentParams(raw)
	if err != nil {
		return err
	}
	return r.ylsdaemon.DidSave(ctx, params)
}
