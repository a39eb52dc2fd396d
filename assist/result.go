package assist

// ErrorKind classifies why a completion failed.
type ErrorKind string

const (
	// KindNotConfigured means no backend could be resolved. It is detected
	// before any network activity and is not retryable without an operator
	// fixing configuration.
	KindNotConfigured ErrorKind = "not_configured"
	// KindBackendFailure covers any fault raised while invoking a resolved
	// backend, including timeouts and malformed replies.
	KindBackendFailure ErrorKind = "backend_failure"
)

// detailNotConfigured is the detail reported for KindNotConfigured.
const detailNotConfigured = "no valid API key found"

// Error is the failure arm of a Result.
type Error struct {
	Kind   ErrorKind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.cause }

// Result is the outcome of one completion. Exactly one of Text and Err is
// meaningful: Err is nil on success.
type Result struct {
	Text string
	Err  *Error
}

// OK reports whether the completion succeeded.
func (r Result) OK() bool { return r.Err == nil }

func okResult(text string) Result {
	return Result{Text: text}
}

func errResult(kind ErrorKind, detail string, cause error) Result {
	return Result{Err: &Error{Kind: kind, Detail: detail, cause: cause}}
}
