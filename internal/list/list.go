// Package list implements spec.md §2 component F: a doubly-linked
// ordered sequence with a §4.G-style iterator, sitting below Iterator
// and Stream (G/H) in the dependency order `{E,F} ← {G,H}`.
//
// Grounded directly in original_source/librdf's rdf_list.c/rdf_list.h:
// the same first/last-node shape, add (push)/unshift/shift/pop
// operations, an overridable equals function for Remove/Contains
// (default: pointer/value equality, since T is constrained comparable
// rather than always falling back to a raw pointer compare), and
// librdf_list_get_iterator's current-node walk, here built on top of
// package iterator's Source contract instead of a bespoke iterator.
package list

import "github.com/oxhq/rdfcore/iterator"

// Node is one link in a List; the pointer returned by Add/Unshift can
// be retained by a caller that wants O(1) removal via RemoveNode rather
// than a find-by-value Remove.
type Node[T any] struct {
	next, prev *Node[T]
	data       T
}

// Value returns the node's stored item.
func (n *Node[T]) Value() T { return n.data }

// Next returns the following node, or nil at the end of the list.
func (n *Node[T]) Next() *Node[T] { return n.next }

// Prev returns the preceding node, or nil at the start of the list.
func (n *Node[T]) Prev() *Node[T] { return n.prev }

// List is the doubly-linked sequence itself. T must be comparable so
// Remove/Contains have a sensible default equals (librdf_list defaults
// to comparing void* pointers when no equals function is set); SetEquals
// overrides it for value types that need field-wise comparison.
type List[T comparable] struct {
	first, last *Node[T]
	length      int
	equals      func(a, b T) bool
}

// New builds an empty list.
func New[T comparable]() *List[T] {
	return &List[T]{}
}

// SetEquals installs the comparison function used by Remove and
// Contains, mirroring librdf_list_set_equals.
func (l *List[T]) SetEquals(fn func(a, b T) bool) { l.equals = fn }

// Len returns the number of items currently in the list.
func (l *List[T]) Len() int { return l.length }

// First returns the first node, or nil if the list is empty.
func (l *List[T]) First() *Node[T] { return l.first }

// Last returns the last node, or nil if the list is empty.
func (l *List[T]) Last() *Node[T] { return l.last }

// Add appends data to the end of the list (push); a subsequent Pop
// returns it, per librdf_list_add's doc comment.
func (l *List[T]) Add(data T) *Node[T] {
	n := &Node[T]{data: data}
	if l.last != nil {
		n.prev = l.last
		l.last.next = n
	}
	l.last = n
	if l.first == nil {
		l.first = n
	}
	l.length++
	return n
}

// Unshift prepends data to the start of the list; a subsequent Shift
// returns it.
func (l *List[T]) Unshift(data T) *Node[T] {
	n := &Node[T]{data: data}
	if l.first != nil {
		n.next = l.first
		l.first.prev = n
	}
	l.first = n
	if l.last == nil {
		l.last = n
	}
	l.length++
	return n
}

// Shift removes and returns the item at the start of the list.
func (l *List[T]) Shift() (T, bool) {
	n := l.first
	if n == nil {
		var zero T
		return zero, false
	}
	l.first = n.next
	if l.first != nil {
		l.first.prev = nil
	} else {
		l.last = nil
	}
	l.length--
	return n.data, true
}

// Pop removes and returns the item at the end of the list.
func (l *List[T]) Pop() (T, bool) {
	n := l.last
	if n == nil {
		var zero T
		return zero, false
	}
	l.last = n.prev
	if l.last != nil {
		l.last.next = nil
	} else {
		l.first = nil
	}
	l.length--
	return n.data, true
}

func (l *List[T]) eq(a, b T) bool {
	if l.equals != nil {
		return l.equals(a, b)
	}
	return a == b
}

func (l *List[T]) find(data T) *Node[T] {
	for n := l.first; n != nil; n = n.next {
		if l.eq(n.data, data) {
			return n
		}
	}
	return nil
}

// RemoveNode unlinks an already-located node in O(1), for a caller
// holding the Node returned by Add/Unshift.
func (l *List[T]) RemoveNode(n *Node[T]) {
	if n == l.first {
		l.first = n.next
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n == l.last {
		l.last = n.prev
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	n.next, n.prev = nil, nil
	l.length--
}

// Remove finds data by the installed equals function (or plain ==) and
// unlinks its node, returning the stored value and whether it was found.
func (l *List[T]) Remove(data T) (T, bool) {
	n := l.find(data)
	if n == nil {
		var zero T
		return zero, false
	}
	found := n.data
	l.RemoveNode(n)
	return found, true
}

// Contains reports whether data is present, by the same equals rule
// Remove uses.
func (l *List[T]) Contains(data T) bool { return l.find(data) != nil }

// Clear empties the list.
func (l *List[T]) Clear() {
	l.first, l.last = nil, nil
	l.length = 0
}

// ForEach walks the list front to back, calling fn on every item.
func (l *List[T]) ForEach(fn func(T)) {
	for n := l.first; n != nil; n = n.next {
		fn(n.data)
	}
}

// source adapts a List into an iterator.Source, the Go shape of
// librdf_list_get_iterator's current-node walk.
type source[T comparable] struct {
	next *Node[T]
	cur  *Node[T]
}

func (s *source[T]) Next() bool {
	if s.next == nil {
		return false
	}
	s.cur = s.next
	s.next = s.next.next
	return true
}

func (s *source[T]) Item() T { return s.cur.data }

func (s *source[T]) Aux(iterator.Projection) (any, bool) { return nil, false }

func (s *source[T]) Close() error { return nil }

// Iterator returns a fresh spec.md §4.G iterator walking the list from
// its current first node, per librdf_list_get_iterator.
func (l *List[T]) Iterator() *iterator.Iterator[T] {
	return iterator.New[T](&source[T]{next: l.first})
}
