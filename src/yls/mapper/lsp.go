package mapper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/uber/yara-lsp/src/yls/entity"
	"github.com/uber/yara-lsp/src/yls/internal/errors"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// DecodeParams maps the raw params of a request or notification into a value of type T.
// Absent params decode to the zero value.
func DecodeParams[T any](raw json.RawMessage) (*T, error) {
	params := new(T)
	if len(raw) == 0 {
		return params, nil
	}
	if err := json.Unmarshal(raw, params); err != nil {
		return nil, wrapErrParams(err)
	}
	return params, nil
}

// RawToInitializeParams maps raw params into protocol.InitializeParams.
func RawToInitializeParams(raw json.RawMessage) (*protocol.InitializeParams, error) {
	return DecodeParams[protocol.InitializeParams](raw)
}

// RawToCompletionParams maps raw params into protocol.CompletionParams.
func RawToCompletionParams(raw json.RawMessage) (*protocol.CompletionParams, error) {
	return DecodeParams[protocol.CompletionParams](raw)
}

// RawToDefinitionParams maps raw params into protocol.DefinitionParams.
func RawToDefinitionParams(raw json.RawMessage) (*protocol.DefinitionParams, error) {
	return DecodeParams[protocol.DefinitionParams](raw)
}

// RawToDocumentHighlightParams maps raw params into protocol.DocumentHighlightParams.
func RawToDocumentHighlightParams(raw json.RawMessage) (*protocol.DocumentHighlightParams, error) {
	return DecodeParams[protocol.DocumentHighlightParams](raw)
}

// RawToReferenceParams maps raw params into protocol.ReferenceParams.
func RawToReferenceParams(raw json.RawMessage) (*protocol.ReferenceParams, error) {
	return DecodeParams[protocol.ReferenceParams](raw)
}

// RawToRenameParams maps raw params into protocol.RenameParams.
func RawToRenameParams(raw json.RawMessage) (*protocol.RenameParams, error) {
	return DecodeParams[protocol.RenameParams](raw)
}

// RawToDidOpenTextDocumentParams maps raw params into protocol.DidOpenTextDocumentParams.
func RawToDidOpenTextDocumentParams(raw json.RawMessage) (*protocol.DidOpenTextDocumentParams, error) {
	return DecodeParams[protocol.DidOpenTextDocumentParams](raw)
}

// RawToDidChangeTextDocumentParams maps raw params into protocol.DidChangeTextDocumentParams.
func RawToDidChangeTextDocumentParams(raw json.RawMessage) (*protocol.DidChangeTextDocumentParams, error) {
	return DecodeParams[protocol.DidChangeTextDocumentParams](raw)
}

// RawToDidCloseTextDocumentParams maps raw params into protocol.DidCloseTextDocumentParams.
func RawToDidCloseTextDocumentParams(raw json.RawMessage) (*protocol.DidCloseTextDocumentParams, error) {
	return DecodeParams[protocol.DidCloseTextDocumentParams](raw)
}

// RawToDidSaveTextDocumentParams maps raw params into protocol.DidSaveTextDocumentParams.
func RawToDidSaveTextDocumentParams(raw json.RawMessage) (*protocol.DidSaveTextDocumentParams, error) {
	return DecodeParams[protocol.DidSaveTextDocumentParams](raw)
}

// InitializeParamsToWorkspaceFolders converts the workspace folders announced at initialization into
// filesystem paths, in order. When the client sends no folders, the root URI is used instead.
// Any folder that cannot be decoded fails the whole conversion.
func InitializeParamsToWorkspaceFolders(params *protocol.InitializeParams) ([]entity.WorkspaceFolder, error) {
	if params == nil {
		return []entity.WorkspaceFolder{}, nil
	}

	folders := params.WorkspaceFolders
	if len(folders) == 0 && params.RootURI != "" {
		folders = []protocol.WorkspaceFolder{{URI: string(params.RootURI)}}
	}

	result := make([]entity.WorkspaceFolder, 0, len(folders))
	for _, f := range folders {
		folder, err := WorkspaceFolderToEntity(f)
		if err != nil {
			return nil, err
		}
		result = append(result, folder)
	}
	return result, nil
}

// WorkspaceFolderToEntity percent-decodes a single workspace folder URI into its filesystem path.
func WorkspaceFolderToEntity(f protocol.WorkspaceFolder) (entity.WorkspaceFolder, error) {
	parsed, err := uri.Parse(f.URI)
	if err != nil {
		return entity.WorkspaceFolder{}, &errors.WorkspaceFolderError{URI: f.URI, Err: err}
	}
	if !isFileURI(parsed) {
		return entity.WorkspaceFolder{}, &errors.WorkspaceFolderError{URI: f.URI, Err: fmt.Errorf("scheme is not %q", uri.FileScheme)}
	}

	return entity.WorkspaceFolder{
		URI:  parsed,
		Name: f.Name,
		Path: parsed.Filename(),
	}, nil
}

func isFileURI(u uri.URI) bool {
	return strings.HasPrefix(string(u), uri.FileScheme+"://")
}

func wrapErrParams(err error) error {
	return jsonrpc2.NewError(jsonrpc2.InvalidParams, fmt.Sprintf("invalid params: %v", err))
}
