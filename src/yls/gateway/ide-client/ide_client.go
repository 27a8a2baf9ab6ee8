package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/uber/yara-lsp/src/yls/mapper"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=ideclientmock/ide_client_mock.go -package=ideclientmock . Gateway
//go:generate mockgen -destination=notifiermock/notifier_mock.go -package=notifiermock . Notifier

const _errSendToClient = "sending notification to IDE: %w"

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Notifier is the one-way send path of a single client connection.
// Implementations serialize concurrent calls so that frames are never interleaved.
type Notifier interface {
	Notify(ctx context.Context, method string, params interface{}) error
}

// Gateway is used to send outbound notifications to the IDE.
// All calls to the gateway should include a context with a session UUID, which will be used to route outbound notifications to the correct IDE session.
type Gateway interface {
	// RegisterClient registers a new client with the gateway. Should be called each time a new IDE connection is accepted.
	RegisterClient(ctx context.Context, id uuid.UUID, n Notifier) error
	// DeregisterClient removes a client from the gateway. Should be called each time an IDE connection is closed.
	DeregisterClient(ctx context.Context, id uuid.UUID) error

	LogMessage(ctx context.Context, params *protocol.LogMessageParams) (err error)
	PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) (err error)
	ShowMessage(ctx context.Context, params *protocol.ShowMessageParams) (err error)
}

// Params are inbound parameters to create the gateway.
type Params struct {
	fx.In

	Logger *zap.SugaredLogger
}

type gateway struct {
	clients   map[uuid.UUID]Notifier
	clientsMu sync.Mutex
	logger    *zap.SugaredLogger
}

// New returns a Gateway for sending IDE notifications.
func New(p Params) Gateway {
	return &gateway{
		clients: make(map[uuid.UUID]Notifier),
		logger:  p.Logger.Named("ide-client"),
	}
}

func (g *gateway) RegisterClient(ctx context.Context, id uuid.UUID, n Notifier) error {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	if n == nil {
		return fmt.Errorf("client with id %q has no notifier", id)
	}
	g.clients[id] = n
	return nil
}

func (g *gateway) DeregisterClient(ctx context.Context, id uuid.UUID) error {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	delete(g.clients, id)
	return nil
}

func (g *gateway) LogMessage(ctx context.Context, params *protocol.LogMessageParams) (err error) {
	return g.notify(ctx, protocol.MethodWindowLogMessage, params)
}

func (g *gateway) PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) (err error) {
	if params.Diagnostics == nil {
		// An absent list would be encoded as null, which clients reject.
		params.Diagnostics = []protocol.Diagnostic{}
	}
	return g.notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, params)
}

func (g *gateway) ShowMessage(ctx context.Context, params *protocol.ShowMessageParams) (err error) {
	return g.notify(ctx, protocol.MethodWindowShowMessage, params)
}

func (g *gateway) notify(ctx context.Context, method string, params interface{}) error {
	n, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	if err := n.Notify(ctx, method, params); err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	return nil
}

func (g *gateway) getClient(ctx context.Context) (Notifier, error) {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return nil, err
	}

	n, ok := g.clients[id]
	if !ok {
		return nil, fmt.Errorf("client with id %q not found", id)
	}
	return n, nil
}
