// Package ylsdaemon implements the yls-daemon business logic.
package ylsdaemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/uber/yara-lsp/src/yls/controller/diagnostics"
	docsync "github.com/uber/yara-lsp/src/yls/controller/doc-sync"
	"github.com/uber/yara-lsp/src/yls/controller/providers"
	"github.com/uber/yara-lsp/src/yls/entity"
	"github.com/uber/yara-lsp/src/yls/gateway/analyzer"
	ideclient "github.com/uber/yara-lsp/src/yls/gateway/ide-client"
	"github.com/uber/yara-lsp/src/yls/repository/session"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=ylsdaemonmock/yls_daemon_mock.go -package=ylsdaemonmock . Controller

const (
	// Configuration keys
	_idleTimeoutMinutesKey = "idleTimeoutMinutes"

	_serverName = "yls"
)

// Controller orchestrates the business logic for each request.
type Controller interface {
	// LSP Methods defined per protocol.
	Initialize(ctx context.Context, params *protocol.InitializeParams) (*entity.InitializeResult, error)
	Initialized(ctx context.Context, params *protocol.InitializedParams) error
	Shutdown(ctx context.Context) error
	Exit(ctx context.Context) error

	// Document related methods.
	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error
	DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error
	DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error
	DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error

	// Codeintel related methods.
	providers.Controller

	// Custom methods for use within this service.
	InitSession(ctx context.Context, n ideclient.Notifier) (uuid.UUID, error)
	EndSession(ctx context.Context, id uuid.UUID) error
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Shutdowner fx.Shutdowner
	Lifecycle  fx.Lifecycle
	Sessions   session.Repository
	IdeGateway ideclient.Gateway
	Logger     *zap.SugaredLogger
	Config     config.Provider
	Analyzer   analyzer.Analyzer

	PluginDocSync     docsync.Controller
	PluginDiagnostics diagnostics.Controller
	PluginProviders   providers.Controller
}

type controller struct {
	providers.Controller

	sessions           session.Repository
	shutdowner         fx.Shutdowner
	idleTimer          *time.Timer
	idleTimerMu        sync.Mutex
	idleTimeoutMinutes time.Duration
	logger             *zap.SugaredLogger
	ideGateway         ideclient.Gateway
	analyzer           analyzer.Analyzer
	docSync            docsync.Controller
	diagnostics        diagnostics.Controller
}

// New constructs a new top-level controller for the service.
func New(p Params) (Controller, error) {
	var timeoutMinutesRaw int64
	if err := p.Config.Get(_idleTimeoutMinutesKey).Populate(&timeoutMinutesRaw); err != nil {
		return nil, fmt.Errorf("unable to get idle timeout from config: %w", err)
	}
	if timeoutMinutesRaw < 0 {
		return nil, fmt.Errorf("%s must not be negative, got %d", _idleTimeoutMinutesKey, timeoutMinutesRaw)
	}

	c := &controller{
		Controller:  p.PluginProviders,
		sessions:    p.Sessions,
		shutdowner:  p.Shutdowner,
		logger:      p.Logger,
		ideGateway:  p.IdeGateway,
		analyzer:    p.Analyzer,
		docSync:     p.PluginDocSync,
		diagnostics: p.PluginDiagnostics,

		idleTimeoutMinutes: time.Duration(timeoutMinutesRaw) * time.Minute,
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return c.refreshIdleTimer(ctx)
		},
		OnStop: func(ctx context.Context) error {
			c.stopIdleTimer()
			return nil
		},
	})
	return c, nil
}
