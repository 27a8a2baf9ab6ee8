// Package entity contains the domain logic for the yls language server.
package entity

import (
	"fmt"

	"github.com/gofrs/uuid"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

type keyType string

// SessionContextKey indicates the key to be used to identify the session UUID in the context.
const SessionContextKey keyType = "SessionUUID"

// SessionState is the protocol lifecycle state of a single client connection.
// States only ever move forward.
type SessionState int

const (
	// SessionStateUninitialized is the initial state: only initialize is served.
	SessionStateUninitialized SessionState = iota
	// SessionStateInitialized serves all recognized methods.
	SessionStateInitialized
	// SessionStateShuttingDown follows an acknowledged shutdown request and waits for exit or stream closure.
	SessionStateShuttingDown
	// SessionStateClosed is terminal.
	SessionStateClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionStateUninitialized:
		return "Uninitialized"
	case SessionStateInitialized:
		return "Initialized"
	case SessionStateShuttingDown:
		return "ShuttingDown"
	case SessionStateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// CanTransitionTo reports whether next is strictly after s.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	return next > s && next <= SessionStateClosed
}

// WorkspaceFolder is a workspace folder announced by the client at initialization.
type WorkspaceFolder struct {
	URI  uri.URI `json:"uri" zap:"uri"`
	Name string  `json:"name" zap:"name"`
	// Path is the filesystem path decoded from URI.
	Path string `json:"path" zap:"path"`
}

// Session entity representing a single editor connection.
type Session struct {
	UUID             uuid.UUID                  `json:"uuid" zap:"uuid"`
	State            SessionState               `json:"state" zap:"state"`
	InitializeParams *protocol.InitializeParams `json:"-" zap:"-"`
	WorkspaceFolders []WorkspaceFolder          `json:"workspaceFolders" zap:"workspaceFolders"`
	ClientName       string                     `json:"clientName" zap:"clientName"`
}

// WorkspacePaths returns the filesystem paths of the session's workspace folders, in order.
func (s *Session) WorkspacePaths() []string {
	paths := make([]string, 0, len(s.WorkspaceFolders))
	for _, f := range s.WorkspaceFolders {
		paths = append(paths, f.Path)
	}
	return paths
}
