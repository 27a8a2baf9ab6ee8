package ylsdaemon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/uber/yara-lsp/src/yls/entity"
	ideclient "github.com/uber/yara-lsp/src/yls/gateway/ide-client"
	"github.com/uber/yara-lsp/src/yls/mapper"
	"go.lsp.dev/protocol"
)

// Initialize stores the workspace announced by the client and returns the server capabilities.
// A malformed workspace folder fails the request and leaves the session untouched.
func (c *controller) Initialize(ctx context.Context, params *protocol.InitializeParams) (*entity.InitializeResult, error) {
	folders, err := mapper.InitializeParamsToWorkspaceFolders(params)
	if err != nil {
		return nil, err
	}

	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting session from context: %w", err)
	}

	s.InitializeParams = params
	s.WorkspaceFolders = folders
	if params.ClientInfo != nil {
		s.ClientName = params.ClientInfo.Name
	}
	s.State = entity.SessionStateInitialized
	if err := c.sessions.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("setting updated session state: %w", err)
	}

	c.logger.Infow("session initialized",
		"session", s.UUID.String(),
		"client", s.ClientName,
		"workspace", s.WorkspacePaths(),
	)

	result := entity.DefaultInitializeResult()
	return &result, nil
}

// Initialized reports the server status to the client once the handshake is complete.
func (c *controller) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("getting session from context: %w", err)
	}

	workspace := strings.Join(s.WorkspacePaths(), ", ")
	if workspace == "" {
		workspace = "no workspace folder"
	}
	if err := c.ideGateway.LogMessage(ctx, &protocol.LogMessageParams{
		Message: fmt.Sprintf("%s initialized for %s", _serverName, workspace),
		Type:    protocol.MessageTypeInfo,
	}); err != nil {
		c.logger.Warnf("sending log message: %s", err)
	}

	if !c.analyzer.Enabled() {
		if err := c.ideGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
			Message: "YARA compiler is not installed. Diagnostics are disabled.",
			Type:    protocol.MessageTypeWarning,
		}); err != nil {
			c.logger.Warnf("sending show message: %s", err)
		}
	}
	return nil
}

// Shutdown is sent just before Exit to indicate that the session will exit.
func (c *controller) Shutdown(ctx context.Context) error {
	return c.setState(ctx, entity.SessionStateShuttingDown)
}

// Exit marks the session closed. Resources are released by EndSession once the connection is torn down.
func (c *controller) Exit(ctx context.Context) error {
	return c.setState(ctx, entity.SessionStateClosed)
}

func (c *controller) setState(ctx context.Context, state entity.SessionState) error {
	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return fmt.Errorf("getting session from context: %w", err)
	}
	return c.sessions.UpdateState(ctx, id, state)
}

// InitSession creates a new empty session and returns its UUID.
func (c *controller) InitSession(ctx context.Context, n ideclient.Notifier) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}

	if err := c.ideGateway.RegisterClient(ctx, id, n); err != nil {
		return uuid.Nil, err
	}
	if err := c.sessions.Set(ctx, mapper.UUIDToSession(id)); err != nil {
		return uuid.Nil, err
	}

	if err := c.refreshIdleTimer(ctx); err != nil {
		c.logger.Warn(err)
	}
	return id, nil
}

// EndSession includes any cleanup at the end of the session, during or after the last JSON-RPC request.
func (c *controller) EndSession(ctx context.Context, id uuid.UUID) error {
	defer func() {
		if err := c.refreshIdleTimer(ctx); err != nil {
			c.logger.Warn(err)
		}
	}()

	if err := c.diagnostics.EndSession(ctx, id); err != nil {
		c.logger.Errorf("ending diagnostics for session %s: %s", id, err)
	}
	if err := c.docSync.EndSession(ctx, id); err != nil {
		c.logger.Errorf("ending document sync for session %s: %s", id, err)
	}
	if err := c.ideGateway.DeregisterClient(ctx, id); err != nil {
		c.logger.Error(err)
	}
	return c.sessions.Delete(ctx, id)
}

// refreshIdleTimer ensures that the service shuts down after a defined inactivity period with no connections.
func (c *controller) refreshIdleTimer(ctx context.Context) error {
	if c.idleTimeoutMinutes == 0 {
		return nil
	}

	c.idleTimerMu.Lock()
	defer c.idleTimerMu.Unlock()

	// First call starts the timer and leaves it running prior to the first connection.
	if c.idleTimer == nil {
		c.idleTimer = time.AfterFunc(c.idleTimeoutMinutes, c.onIdle)
		return nil
	}

	// Subsequent calls stop the timer and reset it only if no connections are active.
	currentSessions, err := c.sessions.SessionCount(ctx)
	if err != nil {
		return fmt.Errorf("error resetting timeout: %w", err)
	}

	c.idleTimer.Stop()
	if currentSessions == 0 {
		c.idleTimer.Reset(c.idleTimeoutMinutes)
	}
	return nil
}

func (c *controller) stopIdleTimer() {
	c.idleTimerMu.Lock()
	defer c.idleTimerMu.Unlock()

	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
}

func (c *controller) onIdle() {
	c.logger.Infof("No sessions for %s, shutting down.", c.idleTimeoutMinutes)
	if err := c.shutdowner.Shutdown(); err != nil {
		c.logger.Errorf("requesting shutdown: %s", err)
	}
}
