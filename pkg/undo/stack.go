// Package undo keeps revision-keyed snapshots of a document root so an
// editing host can restore any prior state. Mutations run inside Store
// calls, which may nest; only the outermost call advances the revision
// and captures a snapshot, so a compound edit lands as a single undo step.
package undo

import (
	"errors"
	"sort"
	"sync"
)

// ErrRevisionUnknown is returned when a requested revision was never
// recorded or has been pruned.
var ErrRevisionUnknown = errors.New("undo: unknown revision")

// RevisionSource hands out monotonically increasing revision numbers.
// The editing host owns the counter; the stack only reads and bumps it.
type RevisionSource interface {
	CurrentRevision() int
	IncrementRevision() int
}

// Stack records one snapshot per outermost mutation.
type Stack struct {
	mu        sync.Mutex
	source    RevisionSource
	snapshots map[int]any
	order     []int // recorded revisions, ascending
	current   int   // last revision the stack produced or resynced to
	depth     int
	enabled   bool
}

// NewStack builds an empty, enabled stack over the given revision source.
func NewStack(source RevisionSource) *Stack {
	return &Stack{
		source:    source,
		snapshots: map[int]any{},
		enabled:   true,
	}
}

// Enabled reports whether the stack is recording. Detached document
// copies disable their stacks so scratch edits cost nothing.
func (s *Stack) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled toggles recording. Disabling does not drop existing
// snapshots.
func (s *Stack) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// Store runs fn as one undoable step. Nested Store calls fold into the
// outermost one. When the outermost fn returns without error, the
// revision is bumped and clone() is recorded under the new number.
// clone must capture the document root the snapshot belongs to.
func (s *Stack) Store(clone func() any, fn func() error) error {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return fn()
	}
	s.depth++
	s.mu.Unlock()

	err := fn()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.depth--
	if s.depth > 0 || err != nil {
		return err
	}
	rev := s.source.IncrementRevision()
	s.set(rev, clone())
	s.current = rev
	return nil
}

// Set records value under revision, discarding any snapshots with a
// strictly greater revision. Editing after an undo abandons the redo
// branch, same as any linear-history editor.
func (s *Stack) Set(revision int, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(revision, value)
}

func (s *Stack) set(revision int, value any) {
	cut := sort.SearchInts(s.order, revision)
	for _, rev := range s.order[cut:] {
		delete(s.snapshots, rev)
	}
	s.order = s.order[:cut]
	s.order = append(s.order, revision)
	s.snapshots[revision] = value
}

// GetRevision returns the snapshot stored at revision and remembers it
// as the stack's current state, so the caller can resync after the host
// rewound (or replayed) its revision counter. Asking for the revision
// the stack already sits at returns ErrRevisionUnknown: the live
// document is that state and restoring it would be a no-op.
func (s *Stack) GetRevision(revision int) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if revision == s.current {
		return nil, ErrRevisionUnknown
	}
	value, ok := s.snapshots[revision]
	if !ok {
		return nil, ErrRevisionUnknown
	}
	s.current = revision
	return value, nil
}

// Revisions lists the recorded revision numbers in ascending order.
func (s *Stack) Revisions() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// Purge drops every snapshot and resets the stack to revision 0.
func (s *Stack) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = map[int]any{}
	s.order = nil
	s.current = 0
}
