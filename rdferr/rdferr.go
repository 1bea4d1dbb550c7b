// Package rdferr defines the error kinds shared by every rdfcore package.
//
// Every fallible operation returns a Go error (an *Error when rdfcore
// itself raised it, so the caller can switch on Kind); there is no
// separate success/failure status code. This mirrors internal/model's
// ErrorCode/sentinel-error split in the teacher repo, adapted to Go's
// idiomatic error-return convention instead of a status-code return.
package rdferr

import "errors"

// Kind classifies a failure the way spec.md §7 enumerates them.
type Kind int

const (
	OutOfMemory Kind = iota
	InvalidArgument
	InvalidEncoding
	BackendFailure
	NotFound
	Conflict
	ParseError
	SerializeError
	QueryError
)

func (k Kind) String() string {
	switch k {
	case OutOfMemory:
		return "out_of_memory"
	case InvalidArgument:
		return "invalid_argument"
	case InvalidEncoding:
		return "invalid_encoding"
	case BackendFailure:
		return "backend_failure"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case ParseError:
		return "parse_error"
	case SerializeError:
		return "serialize_error"
	case QueryError:
		return "query_error"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind and, for parser/serializer
// failures, a source Locator.
type Error struct {
	Kind    Kind
	Message string
	Locator *Locator
	Cause   error
}

func (e *Error) Error() string {
	if e.Locator != nil {
		return e.Kind.String() + ": " + e.Message + " (" + e.Locator.String() + ")"
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with no locator.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error around an existing cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithLocator attaches a source locator and returns the same error for
// chaining at the call site.
func (e *Error) WithLocator(l *Locator) *Error {
	e.Locator = l
	return e
}

// Locator pinpoints where in a parsed source a problem occurred.
type Locator struct {
	Line   int
	Column int
	Offset int64
}

func (l *Locator) String() string {
	if l == nil {
		return ""
	}
	return "line " + itoa(l.Line) + ", col " + itoa(l.Column)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Sentinel errors usable with errors.Is, mirroring internal/model/errors.go's
// ErrNoMatchesFound-style sentinels in the teacher repo.
var (
	ErrNilHandle       = errors.New("rdfcore: nil handle")
	ErrEmptyURI        = errors.New("rdfcore: empty uri string")
	ErrUnknownFactory  = errors.New("rdfcore: unknown factory name")
	ErrFactoryTaken    = errors.New("rdfcore: factory name already registered")
	ErrMalformedOption = errors.New("rdfcore: malformed option string")
	ErrTruncated       = errors.New("rdfcore: truncated encoding")
	ErrBadTag          = errors.New("rdfcore: invalid encoding tag")
)
