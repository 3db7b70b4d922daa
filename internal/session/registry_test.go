package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/draftqueue/internal/errors"
	"github.com/vogiaan1904/draftqueue/internal/models"
)

func newSession(id string, users ...string) *models.DraftSession {
	s := models.NewDraftSession(id)
	for _, u := range users {
		s.AddUser(u)
	}
	return s
}

func TestMemoryRegistry_AddHasRemove(t *testing.T) {
	r := NewMemoryRegistry()

	s := newSession("s1", "a")
	require.NoError(t, r.Add(s))
	assert.True(t, r.Has("s1"))
	assert.Error(t, r.Add(newSession("s1")))

	got, err := r.Remove("s1")
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.False(t, r.Has("s1"))

	_, err = r.Remove("s1")
	assert.ErrorIs(t, err, errors.ErrSessionNotFound)
}

func TestMemoryRegistry_FindByPlayerSkipsEndedSessions(t *testing.T) {
	r := NewMemoryRegistry()

	ended := newSession("old", "a")
	ended.End()
	require.NoError(t, r.Add(ended))

	_, ok := r.FindByPlayer("a")
	assert.False(t, ok)

	live := newSession("new", "a", "b")
	require.NoError(t, r.Add(live))

	got, ok := r.FindByPlayer("b")
	require.True(t, ok)
	assert.Equal(t, "new", got.ID)
}

func TestMemoryRegistry_List(t *testing.T) {
	r := NewMemoryRegistry()
	require.NoError(t, r.Add(newSession("b")))
	require.NoError(t, r.Add(newSession("a")))

	assert.Len(t, r.List(), 2)
}
