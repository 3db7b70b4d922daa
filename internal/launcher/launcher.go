// Package launcher turns a confirmed ready-check group into a running draft session.
package launcher

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vogiaan1904/draftqueue/config"
	"github.com/vogiaan1904/draftqueue/internal/catalog"
	"github.com/vogiaan1904/draftqueue/internal/connection"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/internal/session"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

const sessionIDPrefix = "DraftQueue-"

// Events is notified of every session the launcher starts. Implementations must not block.
type Events interface {
	SessionLaunched(ctx context.Context, s *models.DraftSession)
}

type Launcher struct {
	catalog  *catalog.Catalog
	hub      connection.Hub
	sessions session.Registry
	events   Events
	maxTimer time.Duration
	newID    func() string
	l        logger.Logger
}

func New(
	cat *catalog.Catalog,
	hub connection.Hub,
	sessions session.Registry,
	events Events,
	cfg config.LauncherConfig,
	l logger.Logger,
) *Launcher {
	return &Launcher{
		catalog:  cat,
		hub:      hub,
		sessions: sessions,
		events:   events,
		maxTimer: cfg.MaxTimer,
		newID:    uuid.NewString,
		l:        l,
	}
}

// Launch builds a session for players from the queue definition, tells every
// player about it and starts the draft. It runs on the dispatch loop.
func (lc *Launcher) Launch(queueID string, players []string) {
	ctx := context.Background()

	def, ok := lc.catalog.Get(queueID)
	if !ok {
		lc.l.Errorf(ctx, "launcher.Launcher.Launch: queue %s not found, dropping %d players", queueID, len(players))
		return
	}

	s := models.NewDraftSession(lc.sessionID(queueID))
	s.QueueID = queueID
	s.Managed = true
	s.SetRestriction = []string{def.SetCode}
	s.MaxTimer = lc.maxTimer
	if def.Settings != nil && def.Settings.PickedCardsPerRound > 0 {
		s.PickedCardsPerRound = def.Settings.PickedCardsPerRound
	}

	msg := models.SetSessionMessage{SessionID: s.ID}
	for _, p := range players {
		s.AddUser(p)
		if err := lc.hub.Send(p, models.EventSetSession, msg); err != nil {
			lc.l.Warnf(ctx, "launcher.Launcher.Launch: notify %s of session %s: %v", p, s.ID, err)
		}
	}

	if err := lc.sessions.Add(s); err != nil {
		lc.l.Errorf(ctx, "launcher.Launcher.Launch: register session %s: %v", s.ID, err)
		return
	}

	if err := s.StartDraft(); err != nil {
		lc.l.Errorf(ctx, "launcher.Launcher.Launch: start draft %s: %v", s.ID, err)
		return
	}

	lc.l.Info(ctx, "Draft session launched",
		"session_id", s.ID,
		"queue_id", queueID,
		"players", s.UserCount(),
	)
	if lc.events != nil {
		lc.events.SessionLaunched(ctx, s)
	}
}

func (lc *Launcher) sessionID(queueID string) string {
	prefix := sessionIDPrefix + strings.ToUpper(queueID) + "-"
	for {
		id := prefix + lc.newID()
		if !lc.sessions.Has(id) {
			return id
		}
	}
}
