// Package storage implements spec.md §4.I/§4.J: the pluggable backend a
// Model stores its statements in. Two implementations are required: the
// indexed "hashes" backend (SPO/POS/OSP plus a Contexts index, each
// built on hashkv.Hash) and a linear-scan "memory" backend for small
// graphs or tests where building indexes is wasted work.
package storage

import (
	"strings"

	"github.com/oxhq/rdfcore/node"
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/statement"
	"github.com/oxhq/rdfcore/stream"
)

// Options configures a Storage at construction time, mirroring the
// "key='value'" option strings spec.md §6 standardizes across backends
// and the recognized entries spec.md §4.I lists for the hashes backend.
//
// ReadOnly and New are the Go-idiomatic (default-false) inversion of
// spec.md's `write`/`new` string keys: a bare Options{} must keep
// opening writable with no truncation, matching every existing caller
// that never sets either field, so the zero value cannot itself mean
// "read-only" or "fresh". OptionsFromMap below does the `write`
// bool-to-ReadOnly negation when parsing the external string form.
type Options struct {
	Identifier      string
	Dir             string
	Hashes          string // backend name used to build each index Hash, e.g. "memory" or "dbhash"
	ContextsEnabled bool
	ReadOnly        bool // spec.md §4.I's "write" option, negated
	New             bool // spec.md §4.I's "new" option: create empty, truncating any existing store
}

// OptionsFromMap builds Options from the recognized entries spec.md
// §4.I lists (`new`, `dir`, `hash-type`, `contexts`, `write`); `index-
// predicates` and `merge` are recognized names with no storage-level
// effect yet, so they are accepted without warning. Anything else is
// unrecognized and reported through warn (if non-nil), per spec.md
// §4.I's "Unknown options are ignored with a warning."
func OptionsFromMap(identifier string, m map[string]string, warn func(key string)) Options {
	opts := Options{Identifier: identifier}
	for k, v := range m {
		switch k {
		case "new":
			opts.New = parseBoolOption(v)
		case "dir":
			opts.Dir = v
		case "hash-type":
			opts.Hashes = v
		case "contexts":
			opts.ContextsEnabled = parseBoolOption(v)
		case "write":
			opts.ReadOnly = !parseBoolOption(v)
		case "index-predicates", "merge":
			// recognized by spec.md §4.I; no distinct code path yet.
		default:
			if warn != nil {
				warn(k)
			}
		}
	}
	return opts
}

func parseBoolOption(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

// Storage is the statement-level contract a Model stores through.
// Implementations never interpret node contents beyond the wildcard
// convention already defined by package statement.
type Storage interface {
	// Open prepares the backend for use; Close releases its resources.
	Open(opts Options) error
	Close() error
	Sync() error

	// Size reports the number of distinct statements, or -1 if the
	// backend cannot report it cheaply.
	Size() int64

	// AddStatement inserts t. An identical statement (same S,P,O,graph)
	// already present is a silent no-op per spec.md §4.I/§7, not an error.
	AddStatement(t *statement.Statement) error

	// RemoveStatement deletes the exact statement t names; not found is
	// not an error (mirrors spec.md §4.I's silent-success removal).
	RemoveStatement(t *statement.Statement) error

	// ContainsStatement reports whether the exact statement exists.
	ContainsStatement(t *statement.Statement) (bool, error)

	// FindStatements returns every statement matching pattern (a
	// partially bound statement per package statement's wildcard
	// convention), dispatched to the narrowest applicable index.
	FindStatements(pattern *statement.Statement) (*stream.Stream, error)

	// HasArcIn reports whether any statement has the given object and
	// predicate (property ? --predicate--> node).
	HasArcIn(n, predicate *node.Node) (bool, error)
	// HasArcOut reports whether any statement has the given subject and
	// predicate (node --predicate--> ?).
	HasArcOut(n, predicate *node.Node) (bool, error)

	// Contexts lists every distinct graph node statements are stored
	// under; the default graph is never included.
	Contexts() ([]*node.Node, error)

	// FindInContext answers spec.md §4.I's "Contexts-serialize(graph)"
	// directly: every statement stored under the given graph. The
	// hashes backend answers this against the Contexts index alone,
	// without touching SPO/POS/OSP.
	FindInContext(graph *node.Node) (*stream.Stream, error)
}

// defaultGraphSentinel marks the default-graph slot in the Contexts
// index; the empty byte string is never a valid node.Encode output
// (every encoding starts with a nonzero tag byte), so it cannot collide.
var defaultGraphSentinel = []byte{}

func graphKey(g *node.Node) []byte {
	if g == nil {
		return defaultGraphSentinel
	}
	return node.Encode(g)
}

// requireBound returns an InvalidArgument error when AddStatement,
// RemoveStatement or ContainsStatement is asked to operate on a wildcard
// pattern, which only FindStatements accepts, and otherwise applies
// Statement.Validate.
func requireBound(t *statement.Statement) error {
	if t.Subject == nil || t.Predicate == nil || t.Object == nil {
		return rdferr.New(rdferr.InvalidArgument, "storage: statement must be fully bound (subject, predicate, object)")
	}
	return t.Validate()
}
