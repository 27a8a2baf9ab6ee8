package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultInitializeResult(t *testing.T) {
	data, err := json.Marshal(DefaultInitializeResult())
	require.NoError(t, err)
	assert.JSONEq(t, `{"capabilities": {
		"completionProvider": {"triggerCharacters": ["."]},
		"definitionProvider": true,
		"documentHighlightProvider": true,
		"referencesProvider": true,
		"renameProvider": true
	}}`, string(data))
}

func TestSessionStateTransitions(t *testing.T) {
	tests := []struct {
		from SessionState
		to   SessionState
		want bool
	}{
		{SessionStateUninitialized, SessionStateInitialized, true},
		{SessionStateUninitialized, SessionStateClosed, true},
		{SessionStateInitialized, SessionStateShuttingDown, true},
		{SessionStateInitialized, SessionStateClosed, true},
		{SessionStateShuttingDown, SessionStateClosed, true},
		{SessionStateInitialized, SessionStateUninitialized, false},
		{SessionStateShuttingDown, SessionStateInitialized, false},
		{SessionStateClosed, SessionStateClosed, false},
		{SessionStateClosed, SessionStateUninitialized, false},
		{SessionStateShuttingDown, SessionState(9), false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestWorkspacePaths(t *testing.T) {
	s := &Session{
		WorkspaceFolders: []WorkspaceFolder{
			{URI: "file:///tmp/b", Path: "/tmp/b"},
			{URI: "file:///tmp/a", Path: "/tmp/a"},
		},
	}
	assert.Equal(t, []string{"/tmp/b", "/tmp/a"}, s.WorkspacePaths())
	assert.Empty(t, (&Session{}).WorkspacePaths())
}
