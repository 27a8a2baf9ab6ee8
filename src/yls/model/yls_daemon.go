// Package model contains the storage representation of yls entities.
package model

import (
	"github.com/gofrs/uuid"
	"go.lsp.dev/protocol"
)

// Session is the stored form of an entity.Session.
type Session struct {
	UUID             uuid.UUID
	State            int
	InitializeParams *protocol.InitializeParams
	WorkspaceFolders []WorkspaceFolder
	ClientName       string
}

// WorkspaceFolder is the stored form of an entity.WorkspaceFolder.
type WorkspaceFolder struct {
	URI  string
	Name string
	Path string
}
