package entity

// InitializeResult is the response payload for initialize.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
}

// ServerCapabilities announces the methods served by yls.
// The field set is fixed; it is not derived from protocol.ServerCapabilities so that no other keys are emitted.
type ServerCapabilities struct {
	CompletionProvider        CompletionOptions `json:"completionProvider"`
	DefinitionProvider        bool              `json:"definitionProvider"`
	DocumentHighlightProvider bool              `json:"documentHighlightProvider"`
	ReferencesProvider        bool              `json:"referencesProvider"`
	RenameProvider            bool              `json:"renameProvider"`
}

// CompletionOptions configures completion triggers.
type CompletionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters"`
}

// DefaultInitializeResult returns the capability descriptor announced to every client.
func DefaultInitializeResult() InitializeResult {
	return InitializeResult{
		Capabilities: ServerCapabilities{
			CompletionProvider: CompletionOptions{
				TriggerCharacters: []string{"."},
			},
			DefinitionProvider:        true,
			DocumentHighlightProvider: true,
			ReferencesProvider:        true,
			RenameProvider:            true,
		},
	}
}
