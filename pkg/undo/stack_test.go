package undo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ rev int }

func (c *counter) CurrentRevision() int   { return c.rev }
func (c *counter) IncrementRevision() int { c.rev++; return c.rev }

func TestStoreSnapshotsOutermostOnly(t *testing.T) {
	src := &counter{}
	s := NewStack(src)

	state := 0
	err := s.Store(func() any { return state }, func() error {
		state = 1
		return s.Store(func() any { return state }, func() error {
			state = 2
			return nil
		})
	})
	require.NoError(t, err)

	assert.Equal(t, 1, src.rev)
	assert.Equal(t, []int{1}, s.Revisions())

	require.NoError(t, s.Store(func() any { return state }, func() error {
		state = 3
		return nil
	}))

	src.rev = 1 // host undo rewound the counter
	got, err := s.GetRevision(1)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestStoreSkipsSnapshotOnError(t *testing.T) {
	src := &counter{}
	s := NewStack(src)
	boom := errors.New("boom")

	err := s.Store(func() any { return nil }, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.Revisions())
	assert.Equal(t, 0, src.rev)
}

func TestSetPrunesFutureRevisions(t *testing.T) {
	src := &counter{}
	s := NewStack(src)
	for i := 1; i <= 5; i++ {
		s.Set(i, i*10)
	}

	// Host undid back to revision 3 and made a new edit.
	s.Set(3, 99)

	assert.Equal(t, []int{1, 2, 3}, s.Revisions())
	src.rev = 5
	got, err := s.GetRevision(3)
	require.NoError(t, err)
	assert.Equal(t, 99, got)

	_, err = s.GetRevision(4)
	assert.ErrorIs(t, err, ErrRevisionUnknown)
}

func TestGetRevisionResyncsAfterHostRewind(t *testing.T) {
	src := &counter{}
	s := NewStack(src)
	for _, state := range []string{"one", "two", "three"} {
		state := state
		require.NoError(t, s.Store(func() any { return state }, func() error { return nil }))
	}

	// Host undo rewound its counter; the stack hands back the snapshot
	// for the requested revision and adopts it as current.
	src.rev = 2
	got, err := s.GetRevision(2)
	require.NoError(t, err)
	assert.Equal(t, "two", got)

	// Already sitting at 2: nothing to resync.
	_, err = s.GetRevision(2)
	assert.ErrorIs(t, err, ErrRevisionUnknown)

	// Host redo moves forward again.
	src.rev = 3
	got, err = s.GetRevision(3)
	require.NoError(t, err)
	assert.Equal(t, "three", got)
}

func TestDisabledStackStillRunsMutation(t *testing.T) {
	src := &counter{}
	s := NewStack(src)
	s.SetEnabled(false)

	ran := false
	require.NoError(t, s.Store(func() any { return nil }, func() error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
	assert.Empty(t, s.Revisions())
	assert.Equal(t, 0, src.rev)
}

func TestPurge(t *testing.T) {
	src := &counter{}
	s := NewStack(src)
	s.Set(1, "a")
	s.Set(2, "b")
	s.Purge()
	assert.Empty(t, s.Revisions())

	// Back at revision 0, so a re-recorded snapshot is reachable again.
	s.Set(1, "c")
	got, err := s.GetRevision(1)
	require.NoError(t, err)
	assert.Equal(t, "c", got)
}
