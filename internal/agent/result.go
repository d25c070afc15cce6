package agent

import (
	"encoding/json"
	"fmt"
)

// Error kinds returned by the dispatcher.
const (
	ErrKindUnknownTool   = "unknown_tool"
	ErrKindInvalidArgs   = "invalid_arguments"
	ErrKindUpstream      = "upstream_error"
	ErrKindNoActiveQuote = "no_active_quote"
)

// DispatchError describes a tool failure in a form the model can read.
type DispatchError struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Result is the tagged outcome of one tool dispatch: either a payload or a
// structured error. It is serialized only at the point of feeding the
// completion backend, never raised as a Go error past the dispatcher.
type Result struct {
	payload any
	err     *DispatchError
}

// OK wraps a successful payload.
func OK(payload any) Result {
	return Result{payload: payload}
}

// Fail builds an error result with a kind and formatted detail.
func Fail(kind, format string, args ...any) Result {
	return Result{err: &DispatchError{Kind: kind, Detail: fmt.Sprintf(format, args...)}}
}

// Failed reports whether the result is an error.
func (r Result) Failed() bool { return r.err != nil }

// ErrKind returns the error kind, or "" for success results.
func (r Result) ErrKind() string {
	if r.err == nil {
		return ""
	}
	return r.err.Kind
}

// JSON serializes the result for appending as a tool-result turn.
func (r Result) JSON() string {
	var out []byte
	var err error
	if r.err != nil {
		out, err = json.Marshal(map[string]*DispatchError{"error": r.err})
	} else {
		out, err = json.Marshal(r.payload)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":{"kind":"serialization","detail":%q}}`, err.Error())
	}
	return string(out)
}
