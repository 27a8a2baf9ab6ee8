package ylsdaemon

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"
)

// DidOpen stores the document and starts compiling it.
func (c *controller) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	if err := c.docSync.DidOpen(ctx, params); err != nil {
		return fmt.Errorf("opening %q: %w", params.TextDocument.URI, err)
	}
	return c.diagnostics.Refresh(ctx, params.TextDocument)
}

// DidChange applies the edits and recompiles the resulting text.
func (c *controller) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if err := c.docSync.DidChange(ctx, params); err != nil {
		return fmt.Errorf("changing %q: %w", params.TextDocument.URI, err)
	}
	return c.refresh(ctx, params.TextDocument.TextDocumentIdentifier)
}

// DidClose forgets the document and clears its diagnostics.
func (c *controller) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	if err := c.docSync.DidClose(ctx, params); err != nil {
		return fmt.Errorf("closing %q: %w", params.TextDocument.URI, err)
	}
	return c.diagnostics.Clear(ctx, params.TextDocument.URI)
}

// DidSave recompiles the saved text.
func (c *controller) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	if err := c.docSync.DidSave(ctx, params); err != nil {
		return fmt.Errorf("saving %q: %w", params.TextDocument.URI, err)
	}
	return c.refresh(ctx, params.TextDocument)
}

func (c *controller) refresh(ctx context.Context, doc protocol.TextDocumentIdentifier) error {
	item, err := c.docSync.GetTextDocument(ctx, doc)
	if err != nil {
		return err
	}
	return c.diagnostics.Refresh(ctx, item)
}
