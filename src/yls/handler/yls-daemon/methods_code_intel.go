package ylsdaemon

import (
	"context"
	"encoding/json"

	"github.com/uber/yara-lsp/src/yls/mapper"
)

// Completion requests completion items at a cursor position.
func (r *router) Completion(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	params, err := mapper.RawToCompletionParams(raw)
	if err != nil {
		return nil, err
	}
	res, err := r.ylsdaemon.Completion(ctx, params)
	return providerResult(r, res, err)
}

// GotoDefinition resolves the definition of the symbol at a cursor position.
func (r *router) GotoDefinition(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	params, err := mapper.RawToDefinitionParams(raw)
	if err != nil {
		return nil, err
	}
	res, err := r.ylsdaemon.Definition(ctx, params)
	return providerResult(r, res, err)
}

// DocumentHighlight returns the ranges to highlight for the symbol at a cursor position.
func (r *router) DocumentHighlight(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	params, err := mapper.RawToDocumentHighlightParams(raw)
	if err != nil {
		return nil, err
	}
	res, err := r.ylsdaemon.DocumentHighlight(ctx, params)
	return providerResult(r, res, err)
}

// References returns every location referencing the symbol at a cursor position.
func (r *router) References(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	params, err := mapper.RawToReferenceParams(raw)
	if err != nil {
		return nil, err
	}
	res, err := r.ylsdaemon.References(ctx, params)
	return providerResult(r, res, err)
}

// Rename computes the workspace edit renaming the symbol at a cursor position.
func (r *router) Rename(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	params, err := mapper.RawToRenameParams(raw)
	if err != nil {
		return nil, err
	}
	res, err := r.ylsdaemon.Rename(ctx, params)
	return providerResult(r, res, err)
}
