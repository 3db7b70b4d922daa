package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/draftqueue/internal/models"
)

func TestListeners_FireKeepsSetOpen(t *testing.T) {
	var ls Listeners[int]

	var got []int
	_, err := ls.Add(func(v int) { got = append(got, v) })
	require.NoError(t, err)
	assert.Equal(t, 1, ls.Fire(1))

	_, err = ls.Add(func(v int) { got = append(got, v*10) })
	require.NoError(t, err)
	assert.Equal(t, 1, ls.Fire(2))

	assert.Equal(t, []int{1, 20}, got)
}

func TestListeners_AddAfterCloseAndFireFails(t *testing.T) {
	var ls Listeners[struct{}]

	fired := 0
	_, err := ls.Add(func(struct{}) { fired++ })
	require.NoError(t, err)
	assert.Equal(t, 1, ls.CloseAndFire(struct{}{}))

	unsub, err := ls.Add(func(struct{}) { fired++ })
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Nil(t, unsub)
	assert.Zero(t, ls.Fire(struct{}{}))
	assert.Equal(t, 1, fired)
}

func TestListeners_CloseDropsWithoutFiring(t *testing.T) {
	var ls Listeners[int]

	_, err := ls.Add(func(int) { t.Fatal("dropped listener ran") })
	require.NoError(t, err)
	ls.Close()

	assert.Zero(t, ls.Len())
	_, err = ls.Add(func(int) {})
	assert.ErrorIs(t, err, ErrNotConnected)
}

// A subscriber that looked the connection up just before it went away must
// not be left waiting on a listener that can never fire.
func TestMemoryHub_SubscribeOnDeadConnectionFails(t *testing.T) {
	h := NewMemoryHub()
	h.Connect("p1")

	c, ok := h.get("p1")
	require.True(t, ok)
	h.Disconnect("p1")

	_, err := c.disconnect.Add(func(struct{}) {})
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = c.ready.Add(func(models.ReadyState) {})
	assert.ErrorIs(t, err, ErrNotConnected)
}
