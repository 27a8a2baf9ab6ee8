// Package docsync tracks the text of the documents each session has open.
package docsync

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/uber-go/tally"
	ylserrors "github.com/uber/yara-lsp/src/yls/internal/errors"
	"github.com/uber/yara-lsp/src/yls/mapper"
	"github.com/uber/yara-lsp/src/yls/repository/session"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=docsyncmock/doc_sync_mock.go -package=docsyncmock . Controller

const (
	_nameKey   = "doc-sync"
	_configKey = "docSync"

	_defaultMaxFileSizeBytes = 8 << 20
)

// Controller defines the interface for a document sync controller.
type Controller interface {
	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error
	DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error
	DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error
	DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error

	// GetTextDocument returns the current version of the text document as of the last received change.
	GetTextDocument(ctx context.Context, doc protocol.TextDocumentIdentifier) (protocol.TextDocumentItem, error)

	// EndSession drops every document held for the session.
	EndSession(ctx context.Context, id uuid.UUID) error
}

// Params are inbound parameters to initialize a new document sync controller.
type Params struct {
	fx.In

	Sessions session.Repository
	Logger   *zap.SugaredLogger
	Stats    tally.Scope
	Config   config.Provider
}

type docSyncConfig struct {
	MaxFileSizeBytes int64 `yaml:"maxFileSizeBytes"`
}

type documentStore map[uuid.UUID]map[uri.URI]protocol.TextDocumentItem

type controller struct {
	sessions         session.Repository
	logger           *zap.SugaredLogger
	stats            tally.Scope
	documents        documentStore
	documentsMu      sync.RWMutex
	maxFileSizeBytes int64
}

// New creates a new controller for document sync.
func New(p Params) (Controller, error) {
	cfg := docSyncConfig{MaxFileSizeBytes: _defaultMaxFileSizeBytes}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}
	if cfg.MaxFileSizeBytes <= 0 {
		return nil, fmt.Errorf("%s.maxFileSizeBytes must be positive, got %d", _configKey, cfg.MaxFileSizeBytes)
	}

	c := &controller{
		sessions:         p.Sessions,
		logger:           p.Logger.With("plugin", _nameKey),
		stats:            p.Stats.SubScope("doc_sync"),
		documents:        make(documentStore),
		maxFileSizeBytes: cfg.MaxFileSizeBytes,
	}
	c.updateMetrics()
	return c, nil
}

func (c *controller) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return err
	}
	if err := c.checkSize(params.TextDocument.URI, params.TextDocument.Text); err != nil {
		return err
	}

	c.documentsMu.Lock()
	if _, ok := c.documents[s.UUID]; !ok {
		c.documents[s.UUID] = make(map[uri.URI]protocol.TextDocumentItem)
	}
	c.documents[s.UUID][params.TextDocument.URI] = params.TextDocument
	c.documentsMu.Unlock()

	c.updateMetrics()
	return nil
}

func (c *controller) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return err
	}

	defer c.updateMetrics()
	c.documentsMu.Lock()
	defer c.documentsMu.Unlock()

	doc, ok := c.documents[s.UUID][params.TextDocument.URI]
	if !ok {
		return &ylserrors.DocumentNotFoundError{Document: params.TextDocument.TextDocumentIdentifier}
	}
	if params.TextDocument.Version != 0 && params.TextDocument.Version <= doc.Version {
		c.logger.Infof("ignoring change for outdated document %q. Received version %d, current version is %d", doc.URI, params.TextDocument.Version, doc.Version)
		return nil
	}

	text, err := mapper.ApplyContentChanges(doc.URI, doc.Text, params.ContentChanges)
	if err != nil {
		return err
	}
	if err := c.checkSize(doc.URI, text); err != nil {
		return err
	}

	doc.Text = text
	doc.Version = params.TextDocument.Version
	c.documents[s.UUID][doc.URI] = doc
	return nil
}

func (c *controller) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return err
	}

	c.documentsMu.Lock()
	delete(c.documents[s.UUID], params.TextDocument.URI)
	c.documentsMu.Unlock()

	c.updateMetrics()
	return nil
}

// DidSave reconciles the stored text with the saved text when the client includes it.
func (c *controller) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return err
	}

	defer c.updateMetrics()
	c.documentsMu.Lock()
	defer c.documentsMu.Unlock()

	doc, ok := c.documents[s.UUID][params.TextDocument.URI]
	if !ok {
		return &ylserrors.DocumentNotFoundError{Document: params.TextDocument}
	}
	if params.Text == "" || params.Text == doc.Text {
		return nil
	}
	if err := c.checkSize(doc.URI, params.Text); err != nil {
		return err
	}

	doc.Text = params.Text
	c.documents[s.UUID][doc.URI] = doc
	return nil
}

func (c *controller) GetTextDocument(ctx context.Context, doc protocol.TextDocumentIdentifier) (protocol.TextDocumentItem, error) {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return protocol.TextDocumentItem{}, err
	}

	c.documentsMu.RLock()
	defer c.documentsMu.RUnlock()

	if _, ok := c.documents[s.UUID]; !ok {
		return protocol.TextDocumentItem{}, &ylserrors.UUIDNotFoundError{UUID: s.UUID}
	}
	item, ok := c.documents[s.UUID][doc.URI]
	if !ok {
		return protocol.TextDocumentItem{}, &ylserrors.DocumentNotFoundError{Document: doc}
	}
	return item, nil
}

func (c *controller) EndSession(ctx context.Context, id uuid.UUID) error {
	c.documentsMu.Lock()
	delete(c.documents, id)
	c.documentsMu.Unlock()

	c.updateMetrics()
	return nil
}

func (c *controller) checkSize(doc uri.URI, text string) error {
	if size := int64(len(text)); size > c.maxFileSizeBytes {
		return &ylserrors.DocumentSizeLimitError{Document: doc, Size: size, Limit: c.maxFileSizeBytes}
	}
	return nil
}

func (c *controller) updateMetrics() {
	c.documentsMu.RLock()
	defer c.documentsMu.RUnlock()

	openDocs := 0
	openBytes := 0
	for _, sessionDocs := range c.documents {
		openDocs += len(sessionDocs)
		for _, doc := range sessionDocs {
			openBytes += len(doc.Text)
		}
	}
	c.stats.Gauge("open_documents").Update(float64(openDocs))
	c.stats.Gauge("open_bytes").Update(float64(openBytes))
}
