package errs

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Kind classifies a failure. The set is closed: every fallible operation in
// this module fails with exactly one of these kinds.
type Kind int

const (
	// Network covers non-success HTTP statuses and lower-level transport
	// failures (DNS, connection reset, refused).
	Network Kind = iota
	// Timeout is a request that exceeded its configured deadline.
	Timeout
	// Parse is a response body that could not be decoded as JSON, including
	// empty bodies and non-JSON content types.
	Parse
	// DataFormat is valid JSON whose shape does not match the expected schema.
	DataFormat
	// API is a resource the server reports as nonexistent (HTTP 404).
	// Retrying an API error is pointless and the retry layer treats it as
	// non-retryable.
	API
	// Validation is a bad input caught before any I/O happened.
	Validation
)

func (k Kind) String() string {
	switch k {
	case Network:
		return "NETWORK"
	case Timeout:
		return "TIMEOUT"
	case Parse:
		return "PARSE"
	case DataFormat:
		return "DATA_FORMAT"
	case API:
		return "API"
	case Validation:
		return "VALIDATION"
	default:
		return "UNKNOWN"
	}
}

// Context carries the structured failure context. Enough detail to
// reconstruct the failure from a log line without re-running the operation.
type Context struct {
	URL         string
	Status      int
	ContentType string
	Preview     string
	Timeout     time.Duration
	Attempts    int
}

// Error is the one error type every fallible operation in this module
// returns. The cause chain (if any) is preserved for errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
	Context Context
	cause   error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Context.URL != "" {
		fmt.Fprintf(&sb, " (url=%s", e.Context.URL)
		if e.Context.Status != 0 {
			fmt.Fprintf(&sb, " status=%d", e.Context.Status)
		}
		if e.Context.Attempts > 0 {
			fmt.Fprintf(&sb, " attempts=%d", e.Context.Attempts)
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a taxonomy error with no cause.
func New(kind Kind, message string, ctx Context) *Error {
	return &Error{Kind: kind, Message: message, Context: ctx}
}

// Wrap creates a taxonomy error preserving the underlying cause.
func Wrap(cause error, kind Kind, message string, ctx Context) *Error {
	return &Error{Kind: kind, Message: message, Context: ctx, cause: errors.WithStack(cause)}
}

// KindOf reports the taxonomy kind of err, unwrapping as needed. The second
// return is false when err is not a taxonomy error at all.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// WithAttempts returns a copy of err annotated with the number of attempts
// made before giving up. Kind and message are unchanged.
func WithAttempts(err error, attempts int) error {
	var e *Error
	if !errors.As(err, &e) {
		return errors.Wrapf(err, "after %d attempts", attempts)
	}
	clone := *e
	clone.Context.Attempts = attempts
	// keep the original in the chain so errors.Is against it still matches
	clone.cause = e
	return &clone
}

// previewLimit bounds how much of an offending response body is captured in
// error context.
const previewLimit = 100

// Preview truncates body to previewLimit characters, marking truncation with
// a trailing ellipsis.
func Preview(body string) string {
	if len(body) <= previewLimit {
		return body
	}
	return body[:previewLimit] + "..."
}
