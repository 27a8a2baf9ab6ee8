package errors

import "fmt"

// WorkspaceFolderError indicates a workspace folder URI that cannot be converted to a filesystem path.
type WorkspaceFolderError struct {
	URI string
	Err error
}

// Error is an implementation of the error interface.
func (n *WorkspaceFolderError) Error() string {
	return fmt.Sprintf("invalid workspace folder %q: %v", n.URI, n.Err)
}

// Unwrap returns the underlying parse error.
func (n *WorkspaceFolderError) Unwrap() error {
	return n.Err
}

// InvalidStateError indicates a request that is not allowed in the session's current lifecycle state.
type InvalidStateError struct {
	Method string
	State  fmt.Stringer
}

// Error is an implementation of the error interface.
func (n *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: %q is not allowed while the session is %s", n.Method, n.State)
}

// StateTransitionError indicates an attempt to move a session backwards in its lifecycle.
type StateTransitionError struct {
	From fmt.Stringer
	To   fmt.Stringer
}

// Error is an implementation of the error interface.
func (n *StateTransitionError) Error() string {
	return fmt.Sprintf("session cannot move from %s to %s", n.From, n.To)
}
