// Package factory provides user-defined factories for values used across tests.
package factory

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/uber/yara-lsp/src/yls/entity"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// UUID is a user-defined factory for a random uuid.UUID.
func UUID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

// Session is a factory for an initialized Session rooted at the given workspace paths.
func Session(paths ...string) *entity.Session {
	folders := make([]entity.WorkspaceFolder, 0, len(paths))
	for _, p := range paths {
		folders = append(folders, entity.WorkspaceFolder{URI: uri.File(p), Path: p})
	}
	return &entity.Session{
		UUID:             UUID(),
		State:            entity.SessionStateInitialized,
		InitializeParams: &protocol.InitializeParams{},
		WorkspaceFolders: folders,
	}
}

// TextDocumentItem is a factory for an open YARA document with the given index and text.
func TextDocumentItem(id int, text string) protocol.TextDocumentItem {
	return protocol.TextDocumentItem{
		URI:        uri.File(fmt.Sprintf("/tmp/rules/rule_%d.yar", id)),
		LanguageID: "yara",
		Version:    1,
		Text:       text,
	}
}
