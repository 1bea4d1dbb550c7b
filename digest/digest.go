// Package digest defines the pluggable crypto interface spec.md §1 names
// as an external collaborator ("Message digest primitives (MD5/SHA-1) —
// a pluggable crypto interface used only to fingerprint URIs for the
// storage key space"). The core fixes only the interface; this package
// also registers the minimum concrete algorithms needed to exercise it,
// the same way internal/db/encrypt.go in the teacher repo selects among
// named Encryptor implementations.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Digest fingerprints arbitrary bytes (in rdfcore, always a URI's byte
// sequence) into a fixed-width key. Its caller is cmd/rdf-digest; no
// storage backend, hashkv/dbhash included, calls a Digest.
type Digest interface {
	Name() string
	Sum(data []byte) []byte
}

type md5Digest struct{}

func (md5Digest) Name() string     { return "md5" }
func (md5Digest) Sum(b []byte) []byte { s := md5.Sum(b); return s[:] }

type sha1Digest struct{}

func (sha1Digest) Name() string       { return "sha1" }
func (sha1Digest) Sum(b []byte) []byte { s := sha1.Sum(b); return s[:] }

type blake2bDigest struct{}

func (blake2bDigest) Name() string { return "blake2b" }
func (blake2bDigest) Sum(b []byte) []byte {
	s := blake2b.Sum256(b)
	return s[:]
}

// Registry is the digest factory table, populated at World-open time
// (see world.Open's fixed init order). It is concurrency-safe because
// spec.md §5 permits read-only operations on a shared World from
// multiple threads.
type Registry struct {
	mu    sync.RWMutex
	table map[string]Digest
}

// NewRegistry returns a registry with md5, sha1 and blake2b pre-registered.
func NewRegistry() *Registry {
	r := &Registry{table: make(map[string]Digest)}
	_ = r.Register(md5Digest{})
	_ = r.Register(sha1Digest{})
	_ = r.Register(blake2bDigest{})
	return r
}

// Register adds a named digest implementation. Registration is append-only
// for the life of a World: a duplicate name is an error.
func (r *Registry) Register(d Digest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.table[d.Name()]; exists {
		return fmt.Errorf("digest: %q already registered", d.Name())
	}
	r.table[d.Name()] = d
	return nil
}

// Get looks up a digest implementation by name.
func (r *Registry) Get(name string) (Digest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.table[name]
	return d, ok
}

// HexSum fingerprints data with the named digest and hex-encodes the result;
// used by cmd/rdf-digest, the programmatic counterpart of utils/rdf-digest.c.
func (r *Registry) HexSum(name string, data []byte) (string, error) {
	d, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("digest: unknown algorithm %q", name)
	}
	return hex.EncodeToString(d.Sum(data)), nil
}
