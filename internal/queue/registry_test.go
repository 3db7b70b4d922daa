package queue

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/draftqueue/internal/catalog"
	"github.com/vogiaan1904/draftqueue/internal/connection"
	"github.com/vogiaan1904/draftqueue/internal/dispatch"
	"github.com/vogiaan1904/draftqueue/internal/errors"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/internal/session"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

type handOffRecorder struct {
	groups  []startedGroup
	inCheck map[string]bool
}

type startedGroup struct {
	queueID string
	players []string
}

func (h *handOffRecorder) Start(queueID string, players []string) {
	h.groups = append(h.groups, startedGroup{queueID: queueID, players: players})
}

func (h *handOffRecorder) InCheck(playerID string) bool {
	return h.inCheck[playerID]
}

type leftRecorder struct {
	left []startedGroup
}

func (r *leftRecorder) PlayerDisconnected(_ context.Context, playerID, queueID string) {
	r.left = append(r.left, startedGroup{queueID: queueID, players: []string{playerID}})
}

type fixture struct {
	loop     *dispatch.Loop
	cat      *catalog.Catalog
	hub      *connection.MemoryHub
	sessions session.Registry
	reg      Registry
	handOff  *handOffRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	l := logger.InitializeTestZapLogger()
	cat, err := catalog.New([]models.QueueDefinition{
		{ID: "dmu", Name: "Dominaria United", PlayerCount: 8, SetCode: "dmu"},
		{ID: "mom", Name: "March of the Machine", PlayerCount: 8, SetCode: "mom"},
		{ID: "duo", Name: "Duo", PlayerCount: 2, SetCode: "dmu"},
	})
	require.NoError(t, err)

	lp := dispatch.New(l)
	require.NoError(t, lp.Start(context.Background()))
	t.Cleanup(func() { _ = lp.Stop() })

	f := &fixture{
		loop:     lp,
		cat:      cat,
		hub:      connection.NewMemoryHub(),
		sessions: session.NewMemoryRegistry(),
		handOff:  &handOffRecorder{},
	}
	f.reg = NewRegistry(lp, cat, f.hub, f.sessions, l)
	f.reg.OnQueueFilled(f.handOff)
	return f
}

func (f *fixture) players(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", prefix, i)
		f.hub.Connect(out[i])
	}
	return out
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, f.loop.Flush(ctx))
}

func (f *fixture) groups(t *testing.T) []startedGroup {
	t.Helper()
	var out []startedGroup
	require.NoError(t, f.loop.Do(context.Background(), func() {
		out = append(out, f.handOff.groups...)
	}))
	return out
}

// assertInvariants checks that every player waits at most once across all
// queues and that no queue sits at or above its player count.
func assertInvariants(t *testing.T, f *fixture) {
	t.Helper()

	waiting, err := f.reg.Waiting(context.Background())
	require.NoError(t, err)

	seen := map[string]string{}
	for queueID, players := range waiting {
		def, ok := f.cat.Get(queueID)
		require.True(t, ok)
		assert.Less(t, len(players), def.PlayerCount, "queue %s at capacity", queueID)

		for _, p := range players {
			if prev, dup := seen[p]; dup {
				t.Fatalf("player %s waits in %s and %s", p, prev, queueID)
			}
			seen[p] = queueID
		}
	}
}

func TestRegistry_SevenPlayersWait(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, p := range f.players("p", 7) {
		require.NoError(t, f.reg.Register(ctx, p, "dmu"))
	}

	status, err := f.reg.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, status["dmu"])
	assert.Empty(t, f.groups(t))
	assertInvariants(t, f)
}

func TestRegistry_EighthPlayerHandsOffEarliestGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	players := f.players("p", 9)
	for _, p := range players {
		require.NoError(t, f.reg.Register(ctx, p, "dmu"))
	}

	groups := f.groups(t)
	require.Len(t, groups, 1)
	assert.Equal(t, "dmu", groups[0].queueID)
	assert.Equal(t, players[:8], groups[0].players)

	waiting, err := f.reg.Waiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{players[8]}, waiting["dmu"])

	for _, p := range players[:8] {
		d, _ := f.hub.Listening(p)
		assert.Zero(t, d, "handed-off player %s still subscribed", p)
	}
	assertInvariants(t, f)
}

func TestRegistry_ReRegisterMovesPlayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.players("p", 1)[0]

	require.NoError(t, f.reg.Register(ctx, p, "dmu"))
	require.NoError(t, f.reg.Register(ctx, p, "mom"))
	require.NoError(t, f.reg.Register(ctx, p, "mom"))

	waiting, err := f.reg.Waiting(ctx)
	require.NoError(t, err)
	assert.Empty(t, waiting["dmu"])
	assert.Equal(t, []string{p}, waiting["mom"])

	d, _ := f.hub.Listening(p)
	assert.Equal(t, 1, d)
}

func TestRegistry_RegisterErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.players("p", 1)[0]

	err := f.reg.Register(ctx, "ghost", "dmu")
	assert.ErrorIs(t, err, errors.ErrInternalInconsistency)

	err = f.reg.Register(ctx, p, "nope")
	require.ErrorIs(t, err, errors.ErrInvalidQueue)
	assert.Equal(t, "invalid queue 'nope'", err.Error())

	s := models.NewDraftSession("s1")
	s.AddUser(p)
	require.NoError(t, f.sessions.Add(s))
	assert.ErrorIs(t, f.reg.Register(ctx, p, "dmu"), errors.ErrAlreadyInSession)

	status, err := f.reg.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status["dmu"])
}

func TestRegistry_InvalidQueueKeepsCurrentPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.players("p", 1)[0]

	require.NoError(t, f.reg.Register(ctx, p, "dmu"))
	require.ErrorIs(t, f.reg.Register(ctx, p, "nope"), errors.ErrInvalidQueue)

	waiting, err := f.reg.Waiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{p}, waiting["dmu"])
}

func TestRegistry_UnregisterUnknownPlayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	players := f.players("p", 3)

	for _, p := range players[:2] {
		require.NoError(t, f.reg.Register(ctx, p, "dmu"))
	}
	before, err := f.reg.Waiting(ctx)
	require.NoError(t, err)

	_, err = f.reg.Unregister(ctx, players[2], "")
	assert.ErrorIs(t, err, errors.ErrPlayerNotFound)
	_, err = f.reg.Unregister(ctx, players[0], "mom")
	assert.ErrorIs(t, err, errors.ErrPlayerNotFound)
	_, err = f.reg.Unregister(ctx, players[0], "nope")
	assert.ErrorIs(t, err, errors.ErrInvalidQueue)

	after, err := f.reg.Waiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRegistry_Unregister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	players := f.players("p", 2)

	require.NoError(t, f.reg.Register(ctx, players[0], "dmu"))
	require.NoError(t, f.reg.Register(ctx, players[1], "mom"))

	left, err := f.reg.Unregister(ctx, players[0], "")
	require.NoError(t, err)
	assert.Equal(t, "dmu", left)

	left, err = f.reg.Unregister(ctx, players[1], "mom")
	require.NoError(t, err)
	assert.Equal(t, "mom", left)

	status, err := f.reg.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status["dmu"])
	assert.Zero(t, status["mom"])

	d, _ := f.hub.Listening(players[0])
	assert.Zero(t, d)
}

func TestRegistry_DisconnectWhileWaiting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	players := f.players("p", 2)

	events := &leftRecorder{}
	f.reg.SetEvents(events)

	for _, p := range players {
		require.NoError(t, f.reg.Register(ctx, p, "dmu"))
	}
	f.hub.Disconnect(players[0])
	f.flush(t)

	waiting, err := f.reg.Waiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{players[1]}, waiting["dmu"])

	var left []startedGroup
	require.NoError(t, f.loop.Do(ctx, func() { left = append(left, events.left...) }))
	assert.Equal(t, []startedGroup{{queueID: "dmu", players: []string{players[0]}}}, left)
}

func TestRegistry_RejectsPlayerInReadyCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	players := f.players("p", 2)

	require.NoError(t, f.reg.Register(ctx, players[0], "mom"))
	require.NoError(t, f.loop.Do(ctx, func() {
		f.handOff.inCheck = map[string]bool{players[0]: true, players[1]: true}
	}))

	assert.ErrorIs(t, f.reg.Register(ctx, players[0], "dmu"), errors.ErrInReadyCheck)
	assert.ErrorIs(t, f.reg.Register(ctx, players[1], "dmu"), errors.ErrInReadyCheck)

	waiting, err := f.reg.Waiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{players[0]}, waiting["mom"])
	assert.Empty(t, waiting["dmu"])
}

func TestRegistry_StaleDisconnectIgnoredAfterReconnect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.players("p", 1)[0]

	require.NoError(t, f.reg.Register(ctx, p, "dmu"))
	f.hub.Disconnect(p)
	f.hub.Connect(p)
	require.NoError(t, f.reg.Register(ctx, p, "mom"))
	f.flush(t)

	waiting, err := f.reg.Waiting(ctx)
	require.NoError(t, err)
	assert.Empty(t, waiting["dmu"])
	assert.Equal(t, []string{p}, waiting["mom"])
}

func TestRegistry_RequeueRunsAsSeparateReaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	players := f.players("p", 2)

	f.reg.Requeue(players[0], "duo")
	f.reg.Requeue(players[1], "duo")
	f.reg.Requeue("ghost", "duo")
	f.flush(t)

	groups := f.groups(t)
	require.Len(t, groups, 1)
	assert.Equal(t, players, groups[0].players)

	status, err := f.reg.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status["duo"])
}

func TestRegistry_RandomOperationsKeepInvariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	players := f.players("p", 40)
	queues := []string{"dmu", "mom", "duo"}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		p := players[rng.Intn(len(players))]
		switch rng.Intn(4) {
		case 0, 1:
			_ = f.reg.Register(ctx, p, queues[rng.Intn(len(queues))])
		case 2:
			_, _ = f.reg.Unregister(ctx, p, "")
		case 3:
			f.hub.Disconnect(p)
			f.hub.Connect(p)
		}

		if i%50 == 0 {
			f.flush(t)
			assertInvariants(t, f)
		}
	}

	f.flush(t)
	assertInvariants(t, f)

	for _, g := range f.groups(t) {
		def, ok := f.cat.Get(g.queueID)
		require.True(t, ok)
		require.Len(t, g.players, def.PlayerCount)

		distinct := map[string]struct{}{}
		for _, p := range g.players {
			distinct[p] = struct{}{}
		}
		assert.Len(t, distinct, def.PlayerCount)
	}
}
