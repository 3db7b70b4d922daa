package status

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/draftqueue/internal/catalog"
	"github.com/vogiaan1904/draftqueue/internal/connection"
	"github.com/vogiaan1904/draftqueue/internal/dispatch"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/internal/queue"
	"github.com/vogiaan1904/draftqueue/internal/session"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

func addSession(t *testing.T, sessions session.Registry, id string, managed bool, sets []string, users ...string) *models.DraftSession {
	t.Helper()
	s := models.NewDraftSession(id)
	s.Managed = managed
	s.SetRestriction = sets
	for _, u := range users {
		s.AddUser(u)
	}
	require.NoError(t, sessions.Add(s))
	return s
}

func TestReporter_Report(t *testing.T) {
	l := logger.InitializeTestZapLogger()
	cat, err := catalog.New([]models.QueueDefinition{
		{ID: "dmu", Name: "Dominaria United", PlayerCount: 8, SetCode: "dmu"},
		{ID: "mom", Name: "March of the Machine", PlayerCount: 8, SetCode: "mom"},
	})
	require.NoError(t, err)

	lp := dispatch.New(l)
	require.NoError(t, lp.Start(context.Background()))
	t.Cleanup(func() { _ = lp.Stop() })

	hub := connection.NewMemoryHub()
	sessions := session.NewMemoryRegistry()
	reg := queue.NewRegistry(lp, cat, hub, sessions, l)

	for _, p := range []string{"w1", "w2", "w3"} {
		hub.Connect(p)
		require.NoError(t, reg.Register(context.Background(), p, "dmu"))
	}

	addSession(t, sessions, "s1", true, []string{"dmu"}, "a", "b", "c")
	addSession(t, sessions, "s2", true, []string{"dmu"}, "d", "e")
	addSession(t, sessions, "s3", true, []string{"dmu", "mom"}, "f", "g", "h", "i")
	addSession(t, sessions, "s4", false, []string{"mom"}, "j")
	addSession(t, sessions, "s5", true, []string{"mom"}, "k").End()

	st, err := NewReporter(cat, reg, sessions).Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 9, st.Playing)
	assert.Equal(t, models.QueueOccupancy{Set: "dmu", InQueue: 3, Playing: 5}, st.Queues["dmu"])
	assert.Equal(t, models.QueueOccupancy{Set: "mom", InQueue: 0, Playing: 0}, st.Queues["mom"])
	assert.False(t, st.GeneratedAt.IsZero())
}
