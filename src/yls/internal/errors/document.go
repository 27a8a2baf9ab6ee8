package errors

import (
	"fmt"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// DocumentNotFoundError indicates that a document is not open in the session.
type DocumentNotFoundError struct {
	Document protocol.TextDocumentIdentifier
}

// Error is an implementation of the error interface.
func (n *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", n.Document.URI)
}

// DocumentSizeLimitError indicates that a document has exceeded the configured size limit.
type DocumentSizeLimitError struct {
	Document uri.URI
	Size     int64
	Limit    int64
}

// Error is an implementation of the error interface.
func (n *DocumentSizeLimitError) Error() string {
	return fmt.Sprintf("size of %q is %d bytes, which exceeds the permitted limit of %d", n.Document, n.Size, n.Limit)
}

// DocumentRangeError indicates a content change whose range does not fit the current document text.
type DocumentRangeError struct {
	Document uri.URI
	Range    protocol.Range
	Reason   string
}

// Error is an implementation of the error interface.
func (n *DocumentRangeError) Error() string {
	return fmt.Sprintf("invalid range %d:%d-%d:%d in %q: %s", n.Range.Start.Line, n.Range.Start.Character, n.Range.End.Line, n.Range.End.Character, n.Document, n.Reason)
}
