package errors

import stderr "errors"

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(msg string) error {
	return stderr.New(msg)
}

var (
	// SessionClosedError reports a write attempted after the session's stream was released.
	SessionClosedError = New("session is closed")
	// AnalyzerUnavailableError reports that no YARA compiler is configured or installed.
	AnalyzerUnavailableError = New("yara compiler is not available")
)

// IsUnavailable reports whether the error means the requested resource cannot currently serve requests.
func IsUnavailable(e error) bool {
	return stderr.Is(e, SessionClosedError) || stderr.Is(e, AnalyzerUnavailableError)
}
