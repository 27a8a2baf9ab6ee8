// Package envelope encodes and decodes JSON-RPC 2.0 envelopes carried in a frame body.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
	"go.lsp.dev/jsonrpc2"
)

// Version is the only JSON-RPC version accepted and emitted.
const Version = "2.0"

// Kind identifies the variant of an Envelope.
type Kind int

const (
	// KindRequest is a call that expects a Response.
	KindRequest Kind = iota + 1
	// KindNotification is a call that never receives a Response.
	KindNotification
	// KindResponse answers a Request.
	KindResponse
)

// Envelope is one decoded JSON-RPC unit: *Request, *Notification or *Response.
type Envelope interface {
	Kind() Kind
}

// Request carries an id, a method and its params.
type Request struct {
	ID     jsonrpc2.ID
	Method string
	Params json.RawMessage
}

// Kind implements Envelope.
func (*Request) Kind() Kind { return KindRequest }

// Notification carries a method and its params, and has no id.
type Notification struct {
	Method string
	Params json.RawMessage
}

// Kind implements Envelope.
func (*Notification) Kind() Kind { return KindNotification }

// Response carries either a result or an error for the request with the same id.
type Response struct {
	ID jsonrpc2.ID
	// RawID, when set, is written in place of ID. It echoes request ids that jsonrpc2.ID cannot hold.
	RawID  json.RawMessage
	Result json.RawMessage
	Error  *jsonrpc2.Error
}

// Kind implements Envelope.
func (*Response) Kind() Kind { return KindResponse }

// DecodeError reports a body that is not a well-formed envelope.
// ID is set when the request id could still be recovered, in which case the peer can be answered.
// RawID holds a numeric id that is valid JSON but out of jsonrpc2.ID's range.
type DecodeError struct {
	ID     *jsonrpc2.ID
	RawID  json.RawMessage
	Reason string
	Err    error
}

// Error is an implementation of the error interface.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed envelope: %s: %v", e.Reason, e.Err)
	}
	return "malformed envelope: " + e.Reason
}

// Unwrap returns the underlying parse error, if any.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Answerable reports whether the peer can be sent an error response for the body.
func (e *DecodeError) Answerable() bool {
	return e.ID != nil || len(e.RawID) > 0
}

// InvalidRequest builds the InvalidRequest response for an answerable body.
func (e *DecodeError) InvalidRequest() *Response {
	resp := &Response{RawID: e.RawID, Error: jsonrpc2.NewError(jsonrpc2.InvalidRequest, e.Error())}
	if e.ID != nil {
		resp.ID = *e.ID
	}
	return resp
}

// wireMessage keeps field order stable: jsonrpc, id, method, params, result, error.
type wireMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

var errNullID = errors.New("id must not be null")

// Decode parses a frame body.
func Decode(data []byte) (Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		res := gjson.GetBytes(data, "id")
		if !res.Exists() {
			return nil, &DecodeError{Reason: "body is not a JSON object", Err: err}
		}
		id, rawID, _ := readID(res)
		return nil, &DecodeError{ID: id, RawID: rawID, Reason: "body is not a JSON object", Err: err}
	}

	var id *jsonrpc2.ID
	if raw, ok := fields["id"]; ok {
		parsed, rawID, err := readID(gjson.ParseBytes(raw))
		if err != nil {
			return nil, &DecodeError{RawID: rawID, Reason: "invalid id", Err: err}
		}
		id = parsed
	}

	if raw, ok := fields["jsonrpc"]; ok {
		var version string
		if err := json.Unmarshal(raw, &version); err != nil || version != Version {
			return nil, &DecodeError{ID: id, Reason: fmt.Sprintf("unsupported jsonrpc version %s", raw)}
		}
	}

	if raw, ok := fields["method"]; ok {
		var method string
		if err := json.Unmarshal(raw, &method); err != nil || method == "" {
			return nil, &DecodeError{ID: id, Reason: "method must be a non-empty string"}
		}
		params := normalizeParams(fields["params"])
		if id == nil {
			return &Notification{Method: method, Params: params}, nil
		}
		return &Request{ID: *id, Method: method, Params: params}, nil
	}

	rawResult, hasResult := fields["result"]
	rawError, hasError := fields["error"]
	if !hasResult && !hasError {
		return nil, &DecodeError{ID: id, Reason: "neither method nor result or error present"}
	}
	if id == nil {
		return nil, &DecodeError{Reason: "response without id"}
	}

	resp := &Response{ID: *id}
	if hasError {
		var we wireError
		if err := json.Unmarshal(rawError, &we); err != nil {
			return nil, &DecodeError{ID: id, Reason: "invalid error object", Err: err}
		}
		resp.Error = jsonrpc2.NewError(jsonrpc2.Code(we.Code), we.Message)
		return resp, nil
	}
	resp.Result = rawResult
	return resp, nil
}

// Encode serializes an envelope. Responses always carry exactly one of result or error.
func Encode(e Envelope) ([]byte, error) {
	var msg wireMessage
	switch m := e.(type) {
	case *Request:
		id, err := json.Marshal(m.ID)
		if err != nil {
			return nil, fmt.Errorf("encoding id: %w", err)
		}
		msg = wireMessage{JSONRPC: Version, ID: id, Method: m.Method, Params: m.Params}
	case *Notification:
		msg = wireMessage{JSONRPC: Version, Method: m.Method, Params: m.Params}
	case *Response:
		id := m.RawID
		if len(id) == 0 {
			var err error
			if id, err = json.Marshal(m.ID); err != nil {
				return nil, fmt.Errorf("encoding id: %w", err)
			}
		}
		msg = wireMessage{JSONRPC: Version, ID: id}
		if m.Error != nil {
			msg.Error = &wireError{Code: int64(m.Error.Code), Message: m.Error.Message}
		} else {
			msg.Result = m.Result
			if len(msg.Result) == 0 {
				msg.Result = json.RawMessage("null")
			}
		}
	default:
		return nil, fmt.Errorf("unsupported envelope type %T", e)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding envelope: %w", err)
	}
	return data, nil
}

// NewResult builds a successful Response. A nil result is encoded as JSON null.
func NewResult(id jsonrpc2.ID, result interface{}) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &Response{ID: id, Result: raw}, nil
}

// NewErrorResponse builds a failed Response. Errors that are not already JSON-RPC errors become InternalError.
func NewErrorResponse(id jsonrpc2.ID, err error) *Response {
	var rpcErr *jsonrpc2.Error
	if !errors.As(err, &rpcErr) {
		rpcErr = jsonrpc2.NewError(jsonrpc2.InternalError, err.Error())
	}
	return &Response{ID: id, Error: rpcErr}
}

// NewNotification builds a Notification with marshaled params.
func NewNotification(method string, params interface{}) (*Notification, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshaling params: %w", err)
	}
	return &Notification{Method: method, Params: raw}, nil
}

// readID parses an id. A number that jsonrpc2.ID cannot represent is returned as its raw JSON
// text alongside the error, so that the peer can still be answered with the id it sent.
func readID(res gjson.Result) (*jsonrpc2.ID, json.RawMessage, error) {
	id, err := parseID(res)
	if err == nil {
		return &id, nil, nil
	}
	if res.Type == gjson.Number && json.Valid([]byte(res.Raw)) {
		return nil, json.RawMessage(res.Raw), err
	}
	return nil, nil, err
}

func parseID(res gjson.Result) (jsonrpc2.ID, error) {
	switch res.Type {
	case gjson.Number:
		n := res.Int()
		if float64(n) != res.Float() || n < math.MinInt32 || n > math.MaxInt32 {
			return jsonrpc2.ID{}, fmt.Errorf("numeric id %s is not a 32-bit integer", res.Raw)
		}
		return jsonrpc2.NewNumberID(int32(n)), nil
	case gjson.String:
		return jsonrpc2.NewStringID(res.String()), nil
	case gjson.Null:
		if res.Exists() {
			return jsonrpc2.ID{}, errNullID
		}
		return jsonrpc2.ID{}, errors.New("id not present")
	default:
		return jsonrpc2.ID{}, fmt.Errorf("id must be a number or string, got %s", res.Raw)
	}
}

func normalizeParams(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
