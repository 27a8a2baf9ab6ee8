// Package ylsdaemon implements the yls-daemon JSON-RPC handlers.
package ylsdaemon

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/uber-go/tally"
	controller "github.com/uber/yara-lsp/src/yls/controller/yls-daemon"
	"github.com/uber/yara-lsp/src/yls/internal/jsonrpcfx"
	"github.com/uber/yara-lsp/src/yls/mapper"
	"go.uber.org/zap"
)

// Handler accepts editor connections from the JSON-RPC module and runs one session per connection.
type Handler = jsonrpcfx.ConnectionManager

type jsonRPCConnectionManager struct {
	ctrl   controller.Controller
	stats  tally.Scope
	logger *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// New constructs a new yls-daemon Handler and registers it with the JSON-RPC module.
func New(ctrl controller.Controller, jsonrpcmod jsonrpcfx.JSONRPCModule, stats tally.Scope, logger *zap.SugaredLogger) (Handler, error) {
	c := &jsonRPCConnectionManager{
		ctrl:     ctrl,
		stats:    stats.SubScope("json_rpc"),
		logger:   logger,
		sessions: make(map[uuid.UUID]*session),
	}
	if err := jsonrpcmod.RegisterConnectionManager(c); err != nil {
		return nil, err
	}
	return c, nil
}

// NewConnection creates a session bound to the stream and stores it under the UUID assigned by the controller.
func (c *jsonRPCConnectionManager) NewConnection(ctx context.Context, stream *jsonrpcfx.Stream) (jsonrpcfx.Session, error) {
	s := newSession(c.ctrl, stream, c.stats, c.logger)

	id, err := c.ctrl.InitSession(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("error while creating new connection: %w", err)
	}
	s.bind(id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[id] = s
	c.stats.Gauge("active_connections").Update(float64(len(c.sessions)))
	return s, nil
}

// RemoveConnection cleans up a closed connection.
func (c *jsonRPCConnectionManager) RemoveConnection(ctx context.Context, id uuid.UUID) {
	c.mu.Lock()
	if s, ok := c.sessions[id]; ok {
		s.markClosed()
		delete(c.sessions, id)
	}
	c.stats.Gauge("active_connections").Update(float64(len(c.sessions)))
	c.mu.Unlock()

	// Ensure session is removed even if no Exit call has been received.
	ctx = mapper.SessionUUIDToContext(ctx, id)
	if err := c.ctrl.EndSession(ctx, id); err != nil {
		c.logger.Warnf("ending session %s: %s", id, err)
	}
}
