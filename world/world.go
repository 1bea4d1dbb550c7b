// Package world implements spec.md §4.A: the process-wide (per-instance)
// registry a client must create before doing anything else. It holds
// the factory tables (hash/storage/parser/serializer/query/digest),
// the per-kind node/URI intern caches, the blank-node identifier
// counter, and the log sink.
//
// No implicit global singleton exists: every other package's
// constructors take a *World explicitly, mirroring the teacher repo's
// internal/registry.Registry, which is likewise constructed explicitly
// (NewRegistry) rather than reached through a package-level variable.
package world

import (
	"fmt"
	"sync"
	"time"

	"github.com/oxhq/rdfcore/digest"
	"github.com/oxhq/rdfcore/node"
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/uri"
)

// Severity matches spec.md §6's log protocol.
type Severity int

const (
	Debug Severity = iota
	Info
	Warn
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Facility names the subsystem a log message originates from, per
// spec.md §6.
type Facility int

const (
	FacURI Facility = iota
	FacNode
	FacStatement
	FacModel
	FacStorage
	FacHash
	FacParser
	FacSerializer
	FacQuery
	FacDigest
	FacOther
)

// Message is what a LogSink receives.
type Message struct {
	Severity Severity
	Facility Facility
	Code     int
	Text     string
	Locator  *rdferr.Locator
}

// LogSink is the World-wide log callback. A Fatal message aborts the
// process after the handler returns, per spec.md §6.
type LogSink func(Message)

// Registry is a generic, append-only, name-keyed factory table, reused
// for every pluggable kind (hash, storage, parser, serializer, query).
// Kept generic over `any` so that package world never needs to import
// the higher-level packages (storage, parser, serializer, query) that
// populate it — see DESIGN.md for why that would otherwise be a cycle.
// Each owning package exposes its own strongly-typed Register/Lookup
// wrapper that performs the single type assertion at its boundary.
type Registry struct {
	mu    sync.RWMutex
	items map[string]any
}

func newRegistry() *Registry {
	return &Registry{items: make(map[string]any)}
}

// Register adds a named factory. Registration is append-only for a
// World's lifetime: re-registering an existing name is a Conflict.
func (r *Registry) Register(name string, item any) error {
	if name == "" {
		return rdferr.Wrap(rdferr.InvalidArgument, "world: empty factory name", rdferr.ErrUnknownFactory)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[name]; exists {
		return rdferr.Wrap(rdferr.Conflict, fmt.Sprintf("world: factory %q already registered", name), rdferr.ErrFactoryTaken)
	}
	r.items[name] = item
	return nil
}

// Get looks up a factory by name; lookups never mutate the table.
func (r *Registry) Get(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[name]
	return v, ok
}

// Names lists every registered factory name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.items))
	for k := range r.items {
		out = append(out, k)
	}
	return out
}

// World is the process-wide context described in spec.md §4.A.
type World struct {
	// idMu guards the identifier counter and the five factory
	// registries together, per spec.md §5's "one for the identifier
	// counter and factory registries". Acquisition order across the
	// three mandated mutexes is fixed: identifier < nodes < uris.
	idMu       sync.Mutex
	counter    uint64
	startEpoch int64

	Hash       *Registry
	Storage    *Registry
	Parser     *Registry
	Serializer *Registry
	Query      *Registry
	Digests    *digest.Registry

	// NodeCaches and URICache each carry their own internal mutex
	// (node.Caches: one per kind; uri.Cache: one), satisfying spec.md
	// §5's "one for the URI intern cache, one for node intern caches".
	NodeCaches *node.Caches
	URICache   *uri.Cache

	logMu   sync.RWMutex
	logSink LogSink

	opened bool
	freed  bool
}

// Config carries construction-time options (spec.md §4.A "configure").
type Config struct {
	DigestName string
	LogSink    LogSink
}

// New constructs a World. It is not yet open: Open must be called
// before anything registers or interns.
func New(cfg Config) *World {
	w := &World{
		startEpoch: time.Now().Unix(),
		Hash:       newRegistry(),
		Storage:    newRegistry(),
		Parser:     newRegistry(),
		Serializer: newRegistry(),
		Query:      newRegistry(),
		logSink:    cfg.LogSink,
	}
	return w
}

// Open initializes all registered factories and the intern caches,
// running module init hooks in spec.md §4.A's fixed order: digest →
// hash → uri → node → statement → model → storage → parser →
// serializer → query. It is idempotent.
func (w *World) Open() error {
	w.idMu.Lock()
	defer w.idMu.Unlock()
	if w.opened {
		return nil
	}
	w.Digests = digest.NewRegistry()
	// hash: nothing to initialize beyond the registry itself, already
	// built in New.
	w.URICache = uri.NewCache()
	w.NodeCaches = node.NewCaches()
	// statement, model: stateless at the World level.
	// storage, parser, serializer, query: registries already built; any
	// built-in factories are registered by their owning packages' init
	// helpers, called by the client after Open (spec.md §4.A: "Open
	// runs module init hooks"; built-ins are not forced on the client,
	// mirroring internal/registry.Registry's "no built-in providers").
	w.opened = true
	return nil
}

// Free drops all factories and caches in reverse dependency order. It
// may be called exactly once; repeated calls are no-ops.
func (w *World) Free() {
	w.idMu.Lock()
	defer w.idMu.Unlock()
	if w.freed {
		return
	}
	w.freed = true
	w.Query = nil
	w.Serializer = nil
	w.Parser = nil
	w.Storage = nil
	w.NodeCaches = nil
	w.URICache = nil
	w.Hash = nil
	w.Digests = nil
}

// MintIdentifier returns a fresh blank-node identifier of the form
// "r{startEpoch}r{counter++}", unique within this World instance
// (spec.md §4.A, and tested by spec.md §8 scenario S3).
func (w *World) MintIdentifier() []byte {
	w.idMu.Lock()
	n := w.counter
	w.counter++
	epoch := w.startEpoch
	w.idMu.Unlock()
	return []byte(fmt.Sprintf("r%dr%d", epoch, n))
}

// SetLogSink installs the World-wide log callback.
func (w *World) SetLogSink(sink LogSink) {
	w.logMu.Lock()
	defer w.logMu.Unlock()
	w.logSink = sink
}

// Log delivers a message to the installed sink, if any. A Fatal message
// aborts the process after the handler returns, per spec.md §6.
func (w *World) Log(msg Message) {
	w.logMu.RLock()
	sink := w.logSink
	w.logMu.RUnlock()
	if sink != nil {
		sink(msg)
	}
	if msg.Severity == Fatal {
		panic(fmt.Sprintf("rdfcore: fatal [%s] code=%d: %s", msg.Text, msg.Code, msg.Text))
	}
}

// NewURI interns bytes into this World's URI cache.
func (w *World) NewURI(bytes []byte) (*uri.URI, error) {
	return uri.New(w.URICache, bytes)
}

// NewIRI interns bytes as an IRI node.
func (w *World) NewIRI(bytes []byte) (*node.Node, error) {
	return node.NewIRIFromString(w.NodeCaches, w.URICache, bytes)
}

// NewLiteral interns a literal node, canonicalizing per spec.md §4.C.
func (w *World) NewLiteral(bytes []byte, lang string, datatype *uri.URI) *node.Node {
	return node.NewLiteral(w.NodeCaches, bytes, lang, datatype)
}

// NewBlank mints a fresh identifier and interns a blank node from it.
func (w *World) NewBlank() *node.Node {
	return node.NewBlank(w.NodeCaches, w.MintIdentifier())
}

// NewBlankFromLabel interns a blank node from an already-known local
// label (e.g. one read off the wire by a parser), rather than minting a
// fresh identifier.
func (w *World) NewBlankFromLabel(label []byte) *node.Node {
	return node.NewBlank(w.NodeCaches, label)
}
