package mapper

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/uber/yara-lsp/src/yls/entity"
	"github.com/uber/yara-lsp/src/yls/internal/errors"
	"github.com/uber/yara-lsp/src/yls/model"
	"go.lsp.dev/uri"
)

// SessionToModel maps a Session entity to its model equivalent.
func SessionToModel(f *entity.Session) *model.Session {
	folders := make([]model.WorkspaceFolder, 0, len(f.WorkspaceFolders))
	for _, wf := range f.WorkspaceFolders {
		folders = append(folders, model.WorkspaceFolder{
			URI:  string(wf.URI),
			Name: wf.Name,
			Path: wf.Path,
		})
	}

	return &model.Session{
		UUID:             f.UUID,
		State:            int(f.State),
		InitializeParams: f.InitializeParams,
		WorkspaceFolders: folders,
		ClientName:       f.ClientName,
	}
}

// ModelToSession maps a model Session to its entity equivalent.
func ModelToSession(f *model.Session) (*entity.Session, error) {
	folders := make([]entity.WorkspaceFolder, 0, len(f.WorkspaceFolders))
	for _, wf := range f.WorkspaceFolders {
		folders = append(folders, entity.WorkspaceFolder{
			URI:  uri.URI(wf.URI),
			Name: wf.Name,
			Path: wf.Path,
		})
	}

	return &entity.Session{
		UUID:             f.UUID,
		State:            entity.SessionState(f.State),
		InitializeParams: f.InitializeParams,
		WorkspaceFolders: folders,
		ClientName:       f.ClientName,
	}, nil
}

// UUIDToSession initializes a new Session entity with the assigned uuid.
func UUIDToSession(u uuid.UUID) *entity.Session {
	return &entity.Session{
		UUID:             u,
		State:            entity.SessionStateUninitialized,
		WorkspaceFolders: []entity.WorkspaceFolder{},
	}
}

// ContextToSessionUUID extracts the UUID from a context
func ContextToSessionUUID(c context.Context) (uuid.UUID, error) {
	s, ok := c.Value(entity.SessionContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, &errors.NoSessionFoundError{}
	}
	return s, nil
}

// SessionUUIDToContext returns a child context carrying the session UUID.
func SessionUUIDToContext(c context.Context, id uuid.UUID) context.Context {
	return context.WithValue(c, entity.SessionContextKey, id)
}
