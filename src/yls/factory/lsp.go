package factory

import (
	"fmt"
	"strings"
)

// Frame is a factory for one Content-Length framed message carrying body.
func Frame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

// Frames concatenates the framed form of each body.
func Frames(bodies ...string) string {
	var b strings.Builder
	for _, body := range bodies {
		b.WriteString(Frame(body))
	}
	return b.String()
}

// RequestBody is a factory for a JSON-RPC request body with a numeric id.
func RequestBody(id int, method string, params string) string {
	if params == "" {
		return fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":%q}`, id, method)
	}
	return fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":%q,"params":%s}`, id, method, params)
}

// NotificationBody is a factory for a JSON-RPC notification body.
func NotificationBody(method string, params string) string {
	if params == "" {
		return fmt.Sprintf(`{"jsonrpc":"2.0","method":%q}`, method)
	}
	return fmt.Sprintf(`{"jsonrpc":"2.0","method":%q,"params":%s}`, method, params)
}
