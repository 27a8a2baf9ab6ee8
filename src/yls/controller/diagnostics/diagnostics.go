// Package diagnostics compiles open documents and pushes the results to the client.
package diagnostics

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/uber-go/tally"
	"github.com/uber/yara-lsp/src/yls/gateway/analyzer"
	ideclient "github.com/uber/yara-lsp/src/yls/gateway/ide-client"
	ylserrors "github.com/uber/yara-lsp/src/yls/internal/errors"
	"github.com/uber/yara-lsp/src/yls/mapper"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=diagnosticsmock/diagnostics_mock.go -package=diagnosticsmock . Controller

const _nameKey = "diagnostics"

// Controller publishes compiler diagnostics for the documents of each session.
type Controller interface {
	// Refresh compiles the document in the background and publishes the result.
	// Results of a compilation that was superseded by a newer Refresh or Clear are dropped.
	Refresh(ctx context.Context, doc protocol.TextDocumentItem) error
	// Clear publishes an empty diagnostics list for the document.
	Clear(ctx context.Context, doc uri.URI) error
	// EndSession cancels the session's pending compilations and waits for them to return.
	EndSession(ctx context.Context, id uuid.UUID) error
}

// Params are inbound parameters to initialize a new diagnostics controller.
type Params struct {
	fx.In

	Analyzer   analyzer.Analyzer
	IdeGateway ideclient.Gateway
	Logger     *zap.SugaredLogger
	Stats      tally.Scope
}

type sessionDiagnostics struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// publishMu orders publishing so that an older generation never overwrites a newer one.
	publishMu   sync.Mutex
	generations map[uri.URI]uint64
}

type controller struct {
	analyzer   analyzer.Analyzer
	ideGateway ideclient.Gateway
	logger     *zap.SugaredLogger
	stats      tally.Scope

	sessions   map[uuid.UUID]*sessionDiagnostics
	sessionsMu sync.Mutex
}

// New creates a new diagnostics controller.
func New(p Params) Controller {
	return &controller{
		analyzer:   p.Analyzer,
		ideGateway: p.IdeGateway,
		logger:     p.Logger.With("plugin", _nameKey),
		stats:      p.Stats.SubScope(_nameKey),
		sessions:   make(map[uuid.UUID]*sessionDiagnostics),
	}
}

func (c *controller) Refresh(ctx context.Context, doc protocol.TextDocumentItem) error {
	if !c.analyzer.Enabled() {
		return nil
	}
	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return err
	}

	c.sessionsMu.Lock()
	s := c.getOrCreate(id)
	s.publishMu.Lock()
	s.generations[doc.URI]++
	generation := s.generations[doc.URI]
	s.publishMu.Unlock()
	s.wg.Add(1)
	c.sessionsMu.Unlock()

	go func() {
		defer s.wg.Done()

		diagnostics, err := c.analyzer.Compile(s.ctx, doc.URI, doc.Text)
		if err != nil {
			if ylserrors.IsUnavailable(err) {
				c.logger.Debugw("skipping diagnostics", "document", string(doc.URI), "error", err)
			} else if s.ctx.Err() == nil {
				c.logger.Warnw("compiling document", "document", string(doc.URI), "error", err)
			}
			return
		}

		s.publishMu.Lock()
		defer s.publishMu.Unlock()
		if s.generations[doc.URI] != generation {
			return
		}
		c.publish(s.ctx, doc.URI, doc.Version, diagnostics)
	}()
	return nil
}

func (c *controller) Clear(ctx context.Context, doc uri.URI) error {
	if !c.analyzer.Enabled() {
		return nil
	}
	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return err
	}

	c.sessionsMu.Lock()
	s := c.getOrCreate(id)
	c.sessionsMu.Unlock()

	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	s.generations[doc]++
	c.publish(ctx, doc, 0, []protocol.Diagnostic{})
	return nil
}

func (c *controller) EndSession(ctx context.Context, id uuid.UUID) error {
	c.sessionsMu.Lock()
	s, ok := c.sessions[id]
	delete(c.sessions, id)
	c.sessionsMu.Unlock()

	if !ok {
		return nil
	}
	s.cancel()
	s.wg.Wait()
	return nil
}

// getOrCreate must be called with sessionsMu held.
func (c *controller) getOrCreate(id uuid.UUID) *sessionDiagnostics {
	if s, ok := c.sessions[id]; ok {
		return s
	}

	ctx, cancel := context.WithCancel(mapper.SessionUUIDToContext(context.Background(), id))
	s := &sessionDiagnostics{
		ctx:         ctx,
		cancel:      cancel,
		generations: make(map[uri.URI]uint64),
	}
	c.sessions[id] = s
	return s
}

func (c *controller) publish(ctx context.Context, doc uri.URI, version int32, diagnostics []protocol.Diagnostic) {
	params := &protocol.PublishDiagnosticsParams{
		URI:         doc,
		Diagnostics: diagnostics,
	}
	if version > 0 {
		params.Version = uint32(version)
	}

	if err := c.ideGateway.PublishDiagnostics(ctx, params); err != nil {
		if ylserrors.IsUnavailable(err) {
			c.logger.Debugw("dropping diagnostics", "document", string(doc), "error", err)
		} else {
			c.logger.Warnw("publishing diagnostics", "document", string(doc), "error", err)
		}
		return
	}
	c.stats.Counter("diagnostics_published").Inc(1)
}
