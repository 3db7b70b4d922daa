package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vogiaan1904/draftqueue/internal/delivery"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/internal/service"
	pkgErrors "github.com/vogiaan1904/draftqueue/pkg/errors"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
	"github.com/vogiaan1904/draftqueue/pkg/response"
)

type registerRequest struct {
	QueueID string `json:"queueId"`
}

type unregisterRequest struct {
	QueueID string `json:"queueId,omitempty"`
}

type setReadyStateRequest struct {
	State models.ReadyState `json:"state"`
}

type ackMessage struct {
	RequestEvent string                   `json:"requestEvent"`
	Error        *pkgErrors.BusinessError `json:"error,omitempty"`
}

var (
	errUnknownEvent = pkgErrors.NewBusinessError("DQ008", "unknown event")
	errBadPayload   = pkgErrors.NewBusinessError("DQ009", "malformed payload")
	errInternal     = pkgErrors.NewBusinessError("DQ999", "internal error")
)

// Handler upgrades authenticated requests and routes player events to the service.
type Handler struct {
	hub      *Hub
	svc      service.DraftQueueService
	auth     service.PlayerAuthService
	upgrader websocket.Upgrader
	l        logger.Logger
}

func NewHandler(hub *Hub, svc service.DraftQueueService, auth service.PlayerAuthService, l logger.Logger) *Handler {
	return &Handler{
		hub:  hub,
		svc:  svc,
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		l: l,
	}
}

// Serve expects the player token in the "token" query parameter.
func (h *Handler) Serve(c *gin.Context) {
	ctx := c.Request.Context()

	playerID, err := h.auth.VerifyToken(ctx, c.Query("token"))
	if err != nil {
		h.l.Warnf(ctx, "ws.Handler.Serve: %v", err)
		c.JSON(response.ParseHTTPError(httpError(err)))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.l.Errorf(ctx, "ws.Handler.Serve: %v", err)
		return
	}

	cl := newClient(h.hub, conn, playerID)
	h.hub.register(cl)
	h.l.Infof(ctx, "Player %s connected", playerID)

	go cl.writePump()
	go cl.readPump(h.handle)
}

func (h *Handler) handle(cl *client, f inboundFrame) {
	ctx := context.Background()

	switch f.Event {
	case models.EventRegister:
		var req registerRequest
		if err := decode(f.Data, &req); err != nil {
			h.ack(cl, f.Event, errBadPayload)
			return
		}
		err := h.svc.RegisterPlayer(ctx, service.RegisterPlayerInput{PlayerID: cl.playerID, QueueID: req.QueueID})
		h.ack(cl, f.Event, businessError(err))

	case models.EventUnregister:
		var req unregisterRequest
		if err := decode(f.Data, &req); err != nil {
			h.ack(cl, f.Event, errBadPayload)
			return
		}
		err := h.svc.UnregisterPlayer(ctx, service.UnregisterPlayerInput{PlayerID: cl.playerID, QueueID: req.QueueID})
		h.ack(cl, f.Event, businessError(err))

	case models.EventSetReadyState:
		var req setReadyStateRequest
		if err := decode(f.Data, &req); err != nil {
			h.ack(cl, f.Event, errBadPayload)
			return
		}
		cl.ready.Fire(req.State)
		h.ack(cl, f.Event, nil)

	case models.EventQueueStatus:
		st, err := h.svc.GetQueueStatus(ctx)
		if err != nil {
			h.ack(cl, f.Event, businessError(err))
			return
		}
		h.send(cl, models.EventQueueStatus, st)

	default:
		h.ack(cl, f.Event, errUnknownEvent)
	}
}

func (h *Handler) ack(cl *client, event string, berr *pkgErrors.BusinessError) {
	h.send(cl, models.EventAck, ackMessage{RequestEvent: event, Error: berr})
}

func (h *Handler) send(cl *client, event string, payload any) {
	data, err := encodeFrame(event, payload)
	if err != nil {
		h.l.Errorf(context.Background(), "ws.Handler.send: %v", err)
		return
	}
	if err := cl.enqueue(data); err != nil {
		h.l.Warnf(context.Background(), "ws.Handler.send: player %s: %v", cl.playerID, err)
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func businessError(err error) *pkgErrors.BusinessError {
	if err == nil {
		return nil
	}
	if f, ok := delivery.MapError(err); ok {
		return pkgErrors.NewBusinessError(f.Code, f.Message)
	}
	return errInternal
}

func httpError(err error) error {
	if f, ok := delivery.MapError(err); ok {
		return pkgErrors.NewHTTPError(f.Code, f.HTTPStatus, f.Message)
	}
	return err
}
