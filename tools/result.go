package tools

import "fmt"

// ErrorKind classifies a failure so callers can branch without matching on text
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindUpstream       ErrorKind = "upstream"
	KindInvalidInput   ErrorKind = "invalid_input"
	KindMissingFields  ErrorKind = "missing_fields"
	KindOrchestration  ErrorKind = "orchestration"
)

// Error is a structured, user-presentable failure
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Result is what every tool returns: either an output payload or a structured error.
// Tools never surface Go errors past their boundary; the reasoning loop observes Text().
type Result struct {
	Output string `json:"output,omitempty"`
	Err    *Error `json:"error,omitempty"`
}

// Ok wraps a successful payload
func Ok(output string) Result {
	return Result{Output: output}
}

// Fail builds a failed result with a formatted message
func Fail(kind ErrorKind, format string, args ...interface{}) Result {
	return Result{Err: &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// Failed reports whether the result carries an error
func (r Result) Failed() bool {
	return r.Err != nil
}

// Text renders the result as the observation the agent sees
func (r Result) Text() string {
	if r.Err != nil {
		return r.Err.Message
	}
	return r.Output
}
