package storage

import (
	"bytes"

	"github.com/oxhq/rdfcore/hashkv"
	"github.com/oxhq/rdfcore/hashkv/dbhash"
	"github.com/oxhq/rdfcore/hashkv/memhash"
	"github.com/oxhq/rdfcore/node"
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/statement"
	"github.com/oxhq/rdfcore/stream"
	"github.com/oxhq/rdfcore/uri"
)

// HashesStorage is the indexed backend of spec.md §4.I: three symmetric
// indexes (SPO, POS, OSP) plus a Contexts index, each a hashkv.Hash.
// Every find dispatches to the narrowest index that has the bound
// fields as its key, then filters the matched bucket in memory.
type HashesStorage struct {
	caches *node.Caches
	uris   *uri.Cache

	spo, pos, osp, ctx hashkv.Hash
	size               int64
}

// NewHashesStorage constructs an unopened indexed backend. caches/uris
// must be the same World-owned intern tables every other component
// uses, since stored keys/values decode back into interned node
// handles.
func NewHashesStorage(caches *node.Caches, uris *uri.Cache) *HashesStorage {
	return &HashesStorage{caches: caches, uris: uris}
}

func newSubHash(backend string) hashkv.Hash {
	switch backend {
	case "dbhash":
		return dbhash.New()
	default:
		return memhash.New()
	}
}

func (s *HashesStorage) Open(opts Options) error {
	backend := opts.Hashes
	s.spo = newSubHash(backend)
	s.pos = newSubHash(backend)
	s.osp = newSubHash(backend)
	s.ctx = newSubHash(backend)

	sub := func(h hashkv.Hash, suffix string) error {
		return h.Open(hashkv.OpenOptions{
			Identifier: opts.Identifier + suffix,
			Dir:        opts.Dir,
			Writable:   !opts.ReadOnly,
			CreateNew:  opts.New,
		})
	}
	// File suffixes are spec.md §6's external interface: "D/N-sp2o.hdb,
	// D/N-po2s.hdb, D/N-os2p.hdb, D/N-contexts.hdb".
	if err := sub(s.spo, "-sp2o"); err != nil {
		return rdferr.Wrap(rdferr.BackendFailure, "storage: open spo index", err)
	}
	if err := sub(s.pos, "-po2s"); err != nil {
		return rdferr.Wrap(rdferr.BackendFailure, "storage: open pos index", err)
	}
	if err := sub(s.osp, "-os2p"); err != nil {
		return rdferr.Wrap(rdferr.BackendFailure, "storage: open osp index", err)
	}
	if err := sub(s.ctx, "-contexts"); err != nil {
		return rdferr.Wrap(rdferr.BackendFailure, "storage: open contexts index", err)
	}

	if n, err := s.spo.ValuesCount(); err == nil {
		s.size = n
	}
	return nil
}

func (s *HashesStorage) Close() error {
	for _, h := range []hashkv.Hash{s.spo, s.pos, s.osp, s.ctx} {
		if h != nil {
			_ = h.Close()
		}
	}
	return nil
}

func (s *HashesStorage) Sync() error {
	for _, h := range []hashkv.Hash{s.spo, s.pos, s.osp, s.ctx} {
		if h != nil {
			if err := h.Sync(); err != nil {
				return rdferr.Wrap(rdferr.BackendFailure, "storage: sync", err)
			}
		}
	}
	return nil
}

func (s *HashesStorage) Size() int64 { return s.size }

// posValue/ospValue/spoValue build the "remaining fields" payload for
// each index, always ending in the graph key so Contexts and per-graph
// filtering share one encoding.
func spoValue(p, o *node.Node, g *node.Node) []byte {
	return concat(node.Encode(p), node.Encode(o), graphKey(g))
}
func posValue(o, subj *node.Node, g *node.Node) []byte {
	return concat(node.Encode(o), node.Encode(subj), graphKey(g))
}
func ospValue(subj, p *node.Node, g *node.Node) []byte {
	return concat(node.Encode(subj), node.Encode(p), graphKey(g))
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func (s *HashesStorage) AddStatement(t *statement.Statement) error {
	if err := requireBound(t); err != nil {
		return err
	}
	sKey, pKey, oKey := node.Encode(t.Subject), node.Encode(t.Predicate), node.Encode(t.Object)
	// spec.md §4.I/§7: duplicate add-statement is a silent no-op, not a
	// Conflict — the hash multimap already de-duplicates (key,value)
	// pairs, but skipping the puts keeps the running size counter correct.
	exists, err := s.ContainsStatement(t)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.spo.Put(sKey, spoValue(t.Predicate, t.Object, t.Graph)); err != nil {
		return rdferr.Wrap(rdferr.BackendFailure, "storage: spo put", err)
	}
	if err := s.pos.Put(pKey, posValue(t.Object, t.Subject, t.Graph)); err != nil {
		return rdferr.Wrap(rdferr.BackendFailure, "storage: pos put", err)
	}
	if err := s.osp.Put(oKey, ospValue(t.Subject, t.Predicate, t.Graph)); err != nil {
		return rdferr.Wrap(rdferr.BackendFailure, "storage: osp put", err)
	}
	if err := s.ctx.Put(graphKey(t.Graph), concat(sKey, pKey, oKey)); err != nil {
		return rdferr.Wrap(rdferr.BackendFailure, "storage: contexts put", err)
	}
	s.size++
	return nil
}

func (s *HashesStorage) RemoveStatement(t *statement.Statement) error {
	if err := requireBound(t); err != nil {
		return err
	}
	exists, err := s.ContainsStatement(t)
	if err != nil || !exists {
		return err
	}
	sKey, pKey, oKey := node.Encode(t.Subject), node.Encode(t.Predicate), node.Encode(t.Object)
	_ = s.spo.DeleteKeyValue(sKey, spoValue(t.Predicate, t.Object, t.Graph))
	_ = s.pos.DeleteKeyValue(pKey, posValue(t.Object, t.Subject, t.Graph))
	_ = s.osp.DeleteKeyValue(oKey, ospValue(t.Subject, t.Predicate, t.Graph))
	_ = s.ctx.DeleteKeyValue(graphKey(t.Graph), concat(sKey, pKey, oKey))
	s.size--
	return nil
}

func (s *HashesStorage) ContainsStatement(t *statement.Statement) (bool, error) {
	if err := requireBound(t); err != nil {
		return false, err
	}
	sKey := node.Encode(t.Subject)
	ok, err := s.spo.Contains(sKey, spoValue(t.Predicate, t.Object, t.Graph))
	if err != nil {
		return false, rdferr.Wrap(rdferr.BackendFailure, "storage: contains", err)
	}
	return ok, nil
}

// FindStatements dispatches to the narrowest applicable index per
// spec.md §4.I: a bound subject picks SPO, else a bound predicate picks
// POS, else a bound object picks OSP, else a full scan over SPO.
func (s *HashesStorage) FindStatements(pattern *statement.Statement) (*stream.Stream, error) {
	var results []*statement.Statement
	var contexts []*node.Node

	collect := func(subj, pred, obj, g *node.Node) {
		if !fieldOK(pattern.Subject, subj) || !fieldOK(pattern.Predicate, pred) || !fieldOK(pattern.Object, obj) || !fieldOK(pattern.Graph, g) {
			return
		}
		results = append(results, statement.NewFromNodes(subj, pred, obj))
		contexts = append(contexts, g)
	}

	switch {
	case pattern.Subject != nil:
		vals, err := s.spo.GetAll(node.Encode(pattern.Subject))
		if err != nil {
			return nil, rdferr.Wrap(rdferr.BackendFailure, "storage: spo scan", err)
		}
		for _, v := range vals {
			pred, o, g, err := s.decodeSuffix2(v)
			if err != nil {
				return nil, err
			}
			collect(pattern.Subject, pred, o, g)
		}
	case pattern.Predicate != nil:
		vals, err := s.pos.GetAll(node.Encode(pattern.Predicate))
		if err != nil {
			return nil, rdferr.Wrap(rdferr.BackendFailure, "storage: pos scan", err)
		}
		for _, v := range vals {
			o, subj, g, err := s.decodeSuffix2(v)
			if err != nil {
				return nil, err
			}
			collect(subj, pattern.Predicate, o, g)
		}
	case pattern.Object != nil:
		vals, err := s.osp.GetAll(node.Encode(pattern.Object))
		if err != nil {
			return nil, rdferr.Wrap(rdferr.BackendFailure, "storage: osp scan", err)
		}
		for _, v := range vals {
			subj, pred, g, err := s.decodeSuffix2(v)
			if err != nil {
				return nil, err
			}
			collect(subj, pred, pattern.Object, g)
		}
	default:
		keys, err := s.spo.Keys()
		if err != nil {
			return nil, rdferr.Wrap(rdferr.BackendFailure, "storage: full scan keys", err)
		}
		for _, k := range keys {
			subj, err := s.decodeOne(k)
			if err != nil {
				return nil, err
			}
			vals, err := s.spo.GetAll(k)
			if err != nil {
				return nil, rdferr.Wrap(rdferr.BackendFailure, "storage: full scan values", err)
			}
			for _, v := range vals {
				pred, o, g, err := s.decodeSuffix2(v)
				if err != nil {
					return nil, err
				}
				collect(subj, pred, o, g)
			}
		}
	}
	return stream.FromSlice(results, contexts), nil
}

func fieldOK(pattern, candidate *node.Node) bool {
	if pattern == nil {
		return true
	}
	return pattern.Equals(candidate)
}

func (s *HashesStorage) HasArcIn(n, predicate *node.Node) (bool, error) {
	vals, err := s.osp.GetAll(node.Encode(n))
	if err != nil {
		return false, rdferr.Wrap(rdferr.BackendFailure, "storage: has-arc-in", err)
	}
	for _, v := range vals {
		_, pred, _, err := s.decodeSuffix2(v)
		if err != nil {
			return false, err
		}
		if pred.Equals(predicate) {
			return true, nil
		}
	}
	return false, nil
}

func (s *HashesStorage) HasArcOut(n, predicate *node.Node) (bool, error) {
	vals, err := s.spo.GetAll(node.Encode(n))
	if err != nil {
		return false, rdferr.Wrap(rdferr.BackendFailure, "storage: has-arc-out", err)
	}
	for _, v := range vals {
		pred, _, _, err := s.decodeSuffix2(v)
		if err != nil {
			return false, err
		}
		if pred.Equals(predicate) {
			return true, nil
		}
	}
	return false, nil
}

// FindInContext answers spec.md §4.I's Contexts-serialize(graph)
// directly against the Contexts index, decoding each inline S‖P‖O
// value back into a full statement without touching SPO/POS/OSP.
func (s *HashesStorage) FindInContext(graph *node.Node) (*stream.Stream, error) {
	vals, err := s.ctx.GetAll(graphKey(graph))
	if err != nil {
		return nil, rdferr.Wrap(rdferr.BackendFailure, "storage: contexts find", err)
	}
	results := make([]*statement.Statement, 0, len(vals))
	contexts := make([]*node.Node, 0, len(vals))
	for _, v := range vals {
		subj, n1, err := node.Decode(s.caches, s.uris, v)
		if err != nil {
			return nil, err
		}
		pred, n2, err := node.Decode(s.caches, s.uris, v[n1:])
		if err != nil {
			return nil, err
		}
		obj, _, err := node.Decode(s.caches, s.uris, v[n1+n2:])
		if err != nil {
			return nil, err
		}
		results = append(results, statement.NewFromNodes(subj, pred, obj))
		contexts = append(contexts, graph)
	}
	return stream.FromSlice(results, contexts), nil
}

func (s *HashesStorage) Contexts() ([]*node.Node, error) {
	keys, err := s.ctx.Keys()
	if err != nil {
		return nil, rdferr.Wrap(rdferr.BackendFailure, "storage: contexts", err)
	}
	var out []*node.Node
	for _, k := range keys {
		if bytes.Equal(k, defaultGraphSentinel) {
			continue
		}
		n, _, err := node.Decode(s.caches, s.uris, k)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// decodeSuffix2 splits a 3-field index value (two nodes plus a graph
// key) back into its parts.
func (s *HashesStorage) decodeSuffix2(v []byte) (a, b *node.Node, g *node.Node, err error) {
	a, n1, err := node.Decode(s.caches, s.uris, v)
	if err != nil {
		return nil, nil, nil, err
	}
	b, n2, err := node.Decode(s.caches, s.uris, v[n1:])
	if err != nil {
		return nil, nil, nil, err
	}
	rest := v[n1+n2:]
	if len(rest) == 0 {
		return a, b, nil, nil
	}
	g, _, err = node.Decode(s.caches, s.uris, rest)
	if err != nil {
		return nil, nil, nil, err
	}
	return a, b, g, nil
}

func (s *HashesStorage) decodeOne(v []byte) (*node.Node, error) {
	n, _, err := node.Decode(s.caches, s.uris, v)
	return n, err
}

var _ Storage = (*HashesStorage)(nil)
