package ylsdaemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/gofrs/uuid"
	"github.com/uber-go/tally"
	controller "github.com/uber/yara-lsp/src/yls/controller/yls-daemon"
	"github.com/uber/yara-lsp/src/yls/entity"
	"github.com/uber/yara-lsp/src/yls/internal/envelope"
	ylserrors "github.com/uber/yara-lsp/src/yls/internal/errors"
	"github.com/uber/yara-lsp/src/yls/internal/framing"
	"github.com/uber/yara-lsp/src/yls/internal/jsonrpcfx"
	"github.com/uber/yara-lsp/src/yls/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// session runs the protocol state machine of one client connection.
// Messages are read, dispatched and answered one at a time, so responses keep the client's request order.
// Notify may be called concurrently from other goroutines; the framing writer serializes whole frames.
type session struct {
	id     uuid.UUID
	ctrl   controller.Controller
	router *router
	stream *jsonrpcfx.Stream
	reader *framing.Reader
	writer *framing.Writer
	stats  tally.Scope
	logger *zap.SugaredLogger

	stateMu sync.Mutex
	state   entity.SessionState
	closed  atomic.Bool
}

func newSession(ctrl controller.Controller, stream *jsonrpcfx.Stream, stats tally.Scope, logger *zap.SugaredLogger) *session {
	return &session{
		ctrl:   ctrl,
		router: newRouter(ctrl, stats, logger),
		stream: stream,
		reader: framing.NewReader(stream),
		writer: framing.NewWriter(stream),
		stats:  stats,
		logger: logger,
		state:  entity.SessionStateUninitialized,
	}
}

func (s *session) bind(id uuid.UUID) {
	s.id = id
	s.logger = s.logger.With("session", id.String())
}

// UUID returns the session's id.
func (s *session) UUID() uuid.UUID {
	return s.id
}

// State returns the current lifecycle state.
func (s *session) State() entity.SessionState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *session) setState(next entity.SessionState) bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if !s.state.CanTransitionTo(next) {
		return false
	}
	s.state = next
	return true
}

func (s *session) markClosed() {
	s.closed.Store(true)
	s.setState(entity.SessionStateClosed)
}

// Serve reads messages until the stream ends, the client exits, or ctx is cancelled.
// A clean end of stream returns nil; a framing error or an unrecoverable envelope is returned and ends only this session.
func (s *session) Serve(ctx context.Context) error {
	ctx = mapper.SessionUUIDToContext(ctx, s.id)

	// Cancellation must unblock the pending read.
	stop := context.AfterFunc(ctx, func() { s.stream.Close() })
	defer stop()
	defer s.markClosed()

	for {
		msg, err := s.reader.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			var frameErr *framing.Error
			if errors.As(err, &frameErr) {
				s.stats.Counter("framing_errors").Inc(1)
				s.logger.Warnw("closing session after framing error", zap.Error(err))
			}
			return fmt.Errorf("reading message: %w", err)
		}

		done, err := s.handleMessage(ctx, msg.Body)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Notify sends a server-initiated notification to the client.
func (s *session) Notify(ctx context.Context, method string, params interface{}) error {
	if s.closed.Load() {
		return ylserrors.SessionClosedError
	}

	n, err := envelope.NewNotification(method, params)
	if err != nil {
		return err
	}
	if err := s.write(n); err != nil {
		if s.closed.Load() {
			return ylserrors.SessionClosedError
		}
		return err
	}
	return nil
}

func (s *session) write(e envelope.Envelope) error {
	body, err := envelope.Encode(e)
	if err != nil {
		return err
	}
	return s.writer.WriteMessage(body)
}

// handleMessage processes a single frame body and reports whether the session is done.
func (s *session) handleMessage(ctx context.Context, body []byte) (done bool, err error) {
	env, err := envelope.Decode(body)
	if err != nil {
		s.stats.Counter("decode_errors").Inc(1)

		var decodeErr *envelope.DecodeError
		if errors.As(err, &decodeErr) && decodeErr.Answerable() {
			s.logger.Warnw("answering malformed request", zap.Error(err))
			return false, s.reply(decodeErr.InvalidRequest())
		}
		s.logger.Warnw("closing session after malformed message", zap.Error(err))
		return true, err
	}

	switch e := env.(type) {
	case *envelope.Request:
		return false, s.handleRequest(ctx, e)
	case *envelope.Notification:
		return s.handleNotification(ctx, e), nil
	case *envelope.Response:
		s.logger.Debugw("dropping response from client", "id", fmt.Sprint(e.ID))
	}
	return false, nil
}

func (s *session) handleRequest(ctx context.Context, req *envelope.Request) error {
	result, err := s.dispatchRequest(ctx, req)
	if err != nil {
		return s.reply(envelope.NewErrorResponse(req.ID, err))
	}

	resp, err := envelope.NewResult(req.ID, result)
	if err != nil {
		s.logger.Errorw("encoding result", "method", req.Method, zap.Error(err))
		resp = envelope.NewErrorResponse(req.ID, jsonrpc2.NewError(jsonrpc2.InternalError, err.Error()))
	}
	return s.reply(resp)
}

func (s *session) dispatchRequest(ctx context.Context, req *envelope.Request) (interface{}, error) {
	switch state := s.State(); state {
	case entity.SessionStateUninitialized:
		if req.Method == protocol.MethodInitialize {
			return s.initialize(ctx, req.Params)
		}
		// Early requests are answered so that the client does not stall, but are never processed.
		s.logger.Warnw("request received before initialize", "method", req.Method)
		return struct{}{}, nil

	case entity.SessionStateInitialized:
		switch req.Method {
		case protocol.MethodInitialize:
			return nil, jsonrpc2.NewError(jsonrpc2.InvalidRequest, "server already initialized")
		case protocol.MethodShutdown:
			return s.shutdown(ctx)
		}
		return s.router.dispatch(ctx, req.Method, req.Params)

	default:
		err := &ylserrors.InvalidStateError{Method: req.Method, State: state}
		s.logger.Warn(err)
		return nil, jsonrpc2.NewError(jsonrpc2.InvalidRequest, err.Error())
	}
}

func (s *session) initialize(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	params, err := mapper.RawToInitializeParams(raw)
	if err != nil {
		return nil, err
	}

	result, err := s.ctrl.Initialize(ctx, params)
	if err != nil {
		var folderErr *ylserrors.WorkspaceFolderError
		if errors.As(err, &folderErr) {
			return nil, jsonrpc2.NewError(jsonrpc2.InvalidParams, err.Error())
		}
		return nil, err
	}

	s.setState(entity.SessionStateInitialized)
	return result, nil
}

func (s *session) shutdown(ctx context.Context) (interface{}, error) {
	if err := s.ctrl.Shutdown(ctx); err != nil {
		return nil, err
	}
	s.setState(entity.SessionStateShuttingDown)
	return nil, nil
}

// handleNotification processes a notification and reports whether the session is done.
// Notifications never produce a response.
func (s *session) handleNotification(ctx context.Context, n *envelope.Notification) bool {
	state := s.State()

	if state == entity.SessionStateUninitialized {
		s.logger.Warnw("ignoring notification received before initialize", "method", n.Method)
		return false
	}

	if n.Method == protocol.MethodExit {
		if err := s.ctrl.Exit(ctx); err != nil {
			s.logger.Warnf("exiting session: %s", err)
		}
		s.setState(entity.SessionStateClosed)
		return true
	}

	if state != entity.SessionStateInitialized {
		s.logger.Warnw("ignoring notification received after shutdown", "method", n.Method)
		return false
	}

	if err := s.router.notify(ctx, n.Method, n.Params); err != nil {
		s.logger.Warnw("handling notification", "method", n.Method, zap.Error(err))
	}
	return false
}

func (s *session) reply(resp *envelope.Response) error {
	if err := s.write(resp); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}
