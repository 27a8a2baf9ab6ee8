// Package jsonrpcfx accepts editor connections and hands each one to a registered ConnectionManager.
package jsonrpcfx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/uber/yara-lsp/src/yls/internal/serverinfofile"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_configKey = "jsonrpc"
	_outputKey = "lsp-address"

	_acceptRetryDelay = 50 * time.Millisecond
)

//go:generate mockgen -destination=jsonrpcfxmock/json_rpc_mock.go -package=jsonrpcfxmock . JSONRPCModule

// Module is an fx module to handle JSON-RPC connections.
var Module = fx.Provide(New)

// JSONRPCModule represents a module to manage JSON-RPC connections.
type JSONRPCModule interface {
	OnStart(ctx context.Context) error
	OnStop(ctx context.Context) error
	ServeStream(ctx context.Context, stream *Stream) error
	RegisterConnectionManager(connectionManager ConnectionManager) error
}

// Session serves the requests of a single connection.
type Session interface {
	// Serve runs until the stream closes, the protocol session ends, or ctx is cancelled.
	Serve(ctx context.Context) error
	UUID() uuid.UUID
}

// ConnectionManager will manage each active connection and its corresponding Session throughout the lifecycle of a connection.
type ConnectionManager interface {
	NewConnection(ctx context.Context, stream *Stream) (Session, error)
	RemoveConnection(ctx context.Context, id uuid.UUID)
}

type jsonrpcConfig struct {
	Address string `yaml:"address"`
	Stdio   bool   `yaml:"stdio"`
}

type module struct {
	cfg jsonrpcConfig

	connectionMgr  ConnectionManager
	ln             net.Listener
	logger         *zap.SugaredLogger
	serverInfoFile serverinfofile.ServerInfoFile
	shutdowner     fx.Shutdowner

	// stdin and stdout back the single session served in stdio mode.
	stdin  io.ReadCloser
	stdout io.WriteCloser

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Params define values to be used by the JSON-RPC module.
type Params struct {
	fx.In

	Config         config.Provider
	Lifecycle      fx.Lifecycle
	Logger         *zap.SugaredLogger
	ServerInfoFile serverinfofile.ServerInfoFile
	Shutdowner     fx.Shutdowner
}

// New creates a new server to handle JSON-RPC connections on the configured address, or on stdin and stdout.
func New(p Params) (JSONRPCModule, error) {
	if p.Lifecycle == nil || p.Config == nil {
		return nil, errors.New("required parameters are missing")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &module{
		logger:         p.Logger,
		serverInfoFile: p.ServerInfoFile,
		shutdowner:     p.Shutdowner,
		stdin:          os.Stdin,
		stdout:         os.Stdout,
		ctx:            ctx,
		cancel:         cancel,
	}

	if err := m.processConfig(p.Config); err != nil {
		cancel()
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: m.OnStart,
		OnStop:  m.OnStop,
	})
	return m, nil
}

// OnStart begins serving connections in the background.
func (m *module) OnStart(ctx context.Context) error {
	if m.cfg.Stdio {
		m.wg.Add(1)
		go m.serveStdio()
		return nil
	}

	ln, err := net.Listen("tcp", m.cfg.Address)
	if err != nil {
		return fmt.Errorf("listening on %q: %w", m.cfg.Address, err)
	}
	m.ln = ln

	address := ln.Addr().String()
	if err := m.serverInfoFile.UpdateField(_outputKey, address); err != nil {
		return multierr.Append(fmt.Errorf("writing server info: %w", err), ln.Close())
	}
	m.logger.Infow("started JSON-RPC inbound", zap.String("address", address))

	m.wg.Add(1)
	go m.serve()
	return nil
}

// OnStop stops accepting connections, ends every active session and waits for them to be released.
func (m *module) OnStop(ctx context.Context) error {
	m.cancel()

	var err error
	if m.ln != nil {
		if closeErr := m.ln.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			err = closeErr
		}
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return multierr.Append(err, fmt.Errorf("waiting for sessions to end: %w", ctx.Err()))
	}
}

// ServeStream runs one session on the stream and releases the stream when the session ends.
func (m *module) ServeStream(ctx context.Context, stream *Stream) error {
	if m.connectionMgr == nil {
		m.logger.Errorf("cannot serve connection, no connection manager set")
		return multierr.Append(errors.New("cannot serve connection, no connection manager set"), stream.Close())
	}

	session, err := m.connectionMgr.NewConnection(ctx, stream)
	if err != nil {
		return multierr.Append(err, stream.Close())
	}
	m.logger.Infow("client connected", zap.Stringer("uuid", session.UUID()))

	err = session.Serve(ctx)

	// Release the stream first so that pending notifications fail fast instead of blocking on a peer that stopped reading.
	err = multierr.Append(err, stream.Close())

	// Cleanup after connection, even if the client never sent exit.
	m.connectionMgr.RemoveConnection(ctx, session.UUID())
	m.logger.Infow("client disconnected", zap.Stringer("uuid", session.UUID()))
	return err
}

// RegisterConnectionManager sets the connection manager, which keeps track of current active connections and provides a Session implementation.
func (m *module) RegisterConnectionManager(connectionMgr ConnectionManager) error {
	if m.connectionMgr != nil {
		return errors.New("cannot register a duplicate connection manager")
	}
	m.connectionMgr = connectionMgr
	return nil
}

func (m *module) serve() {
	defer m.wg.Done()

	for {
		conn, err := m.ln.Accept()
		if err != nil {
			if m.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			m.logger.Warnf("accepting connection: %s", err)
			time.Sleep(_acceptRetryDelay)
			continue
		}

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := m.ServeStream(m.ctx, NewConnStream(conn)); err != nil {
				m.logger.Warnw("session ended with error", zap.Error(err))
			}
		}()
	}
}

func (m *module) serveStdio() {
	defer m.wg.Done()

	m.logger.Infow("serving JSON-RPC on stdio")
	if err := m.ServeStream(m.ctx, NewStream(m.stdin, m.stdout, m.stdin, m.stdout)); err != nil {
		m.logger.Warnw("session ended with error", zap.Error(err))
	}

	// The process has no other client to wait for.
	if m.ctx.Err() == nil && m.shutdowner != nil {
		if err := m.shutdowner.Shutdown(); err != nil {
			m.logger.Errorf("requesting shutdown: %s", err)
		}
	}
}

// processConfig will parse the configuration for any values required by this module.
func (m *module) processConfig(cfg config.Provider) error {
	if err := cfg.Get(_configKey).Populate(&m.cfg); err != nil {
		// incorrectly formatted config
		return fmt.Errorf("getting config field %q: %w", _configKey, err)
	}

	if m.cfg.Address == "" && !m.cfg.Stdio {
		// yaml is missing either the key or value
		return fmt.Errorf("missing field %q in config", _configKey+".address")
	}
	return nil
}
