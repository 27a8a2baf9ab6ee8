// Package providers defines the language feature providers the router dispatches to.
package providers

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=providersmock/providers_mock.go -package=providersmock . Controller

const _nameKey = "providers"

// Result is the outcome of a provider call: either a value or NotImplemented.
type Result[T any] struct {
	value       T
	implemented bool
}

// Implemented wraps a provider value.
func Implemented[T any](v T) Result[T] {
	return Result[T]{value: v, implemented: true}
}

// NotImplemented reports that the provider has no implementation for the call.
func NotImplemented[T any]() Result[T] {
	return Result[T]{}
}

// Value returns the wrapped value and whether the result is implemented.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.implemented
}

// Payload returns the value as an untyped response payload, or nil and false when not implemented.
func (r Result[T]) Payload() (interface{}, bool) {
	if !r.implemented {
		return nil, false
	}
	return r.value, true
}

// CompletionProvider serves textDocument/completion.
type CompletionProvider interface {
	Completion(ctx context.Context, params *protocol.CompletionParams) (Result[*protocol.CompletionList], error)
}

// DefinitionProvider serves textDocument/definition.
type DefinitionProvider interface {
	Definition(ctx context.Context, params *protocol.DefinitionParams) (Result[[]protocol.Location], error)
}

// HighlightProvider serves textDocument/documentHighlight.
type HighlightProvider interface {
	DocumentHighlight(ctx context.Context, params *protocol.DocumentHighlightParams) (Result[[]protocol.DocumentHighlight], error)
}

// ReferencesProvider serves textDocument/references.
type ReferencesProvider interface {
	References(ctx context.Context, params *protocol.ReferenceParams) (Result[[]protocol.Location], error)
}

// RenameProvider serves textDocument/rename.
type RenameProvider interface {
	Rename(ctx context.Context, params *protocol.RenameParams) (Result[*protocol.WorkspaceEdit], error)
}

// Controller groups every provider announced in the server capabilities.
type Controller interface {
	CompletionProvider
	DefinitionProvider
	HighlightProvider
	ReferencesProvider
	RenameProvider
}

// Params are inbound parameters to initialize the providers.
type Params struct {
	fx.In

	Logger *zap.SugaredLogger
}

type controller struct {
	logger *zap.SugaredLogger
}

// New returns the default providers. None of them has a semantic backend yet, so every call is NotImplemented.
func New(p Params) Controller {
	return &controller{
		logger: p.Logger.With("plugin", _nameKey),
	}
}

func (c *controller) Completion(ctx context.Context, params *protocol.CompletionParams) (Result[*protocol.CompletionList], error) {
	c.notImplemented("completion", params.TextDocument.URI)
	return NotImplemented[*protocol.CompletionList](), nil
}

func (c *controller) Definition(ctx context.Context, params *protocol.DefinitionParams) (Result[[]protocol.Location], error) {
	c.notImplemented("definition", params.TextDocument.URI)
	return NotImplemented[[]protocol.Location](), nil
}

func (c *controller) DocumentHighlight(ctx context.Context, params *protocol.DocumentHighlightParams) (Result[[]protocol.DocumentHighlight], error) {
	c.notImplemented("document highlight", params.TextDocument.URI)
	return NotImplemented[[]protocol.DocumentHighlight](), nil
}

func (c *controller) References(ctx context.Context, params *protocol.ReferenceParams) (Result[[]protocol.Location], error) {
	c.notImplemented("references", params.TextDocument.URI)
	return NotImplemented[[]protocol.Location](), nil
}

func (c *controller) Rename(ctx context.Context, params *protocol.RenameParams) (Result[*protocol.WorkspaceEdit], error) {
	c.notImplemented("rename", params.TextDocument.URI)
	return NotImplemented[*protocol.WorkspaceEdit](), nil
}

func (c *controller) notImplemented(feature string, doc protocol.DocumentURI) {
	c.logger.Warnw(feature+" is not yet implemented", "document", string(doc))
}
