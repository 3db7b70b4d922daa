package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vogiaan1904/draftqueue/internal/delivery"
	"github.com/vogiaan1904/draftqueue/internal/service"
	pkgErrors "github.com/vogiaan1904/draftqueue/pkg/errors"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
	"github.com/vogiaan1904/draftqueue/pkg/response"
)

type revokeTokenRequest struct {
	Token  string `json:"token" binding:"required"`
	Reason string `json:"reason"`
}

type HTTPHandler struct {
	svc  service.DraftQueueService
	auth service.PlayerAuthService
	l    logger.Logger
}

func NewHTTPHandler(svc service.DraftQueueService, auth service.PlayerAuthService, l logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:  svc,
		auth: auth,
		l:    l,
	}
}

// Router builds the HTTP surface. ws serves the player websocket endpoint.
func (h *HTTPHandler) Router(ws gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", h.HealthCheck)
	if ws != nil {
		r.GET("/ws", ws)
	}

	v1 := r.Group("/api/v1")
	v1.GET("/queues", h.ListQueues)
	v1.GET("/queues/status", h.GetQueueStatus)
	v1.POST("/auth/token", h.IssueToken)
	v1.POST("/auth/revoke", h.RevokeToken)

	return r
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "draftqueue-service",
	})
}

func (h *HTTPHandler) ListQueues(c *gin.Context) {
	c.JSON(http.StatusOK, response.OK(h.svc.ListQueues(c.Request.Context())))
}

func (h *HTTPHandler) GetQueueStatus(c *gin.Context) {
	ctx := c.Request.Context()

	st, err := h.svc.GetQueueStatus(ctx)
	if err != nil {
		h.l.Errorf(ctx, "delivery.http.GetQueueStatus: %v", err)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(st))
}

func (h *HTTPHandler) IssueToken(c *gin.Context) {
	ctx := c.Request.Context()

	var in service.IssueTokenInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			h.respondError(c, pkgErrors.NewHTTPError("DQ009", http.StatusBadRequest, err.Error()))
			return
		}
	}

	out, err := h.auth.IssueToken(ctx, in)
	if err != nil {
		h.l.Errorf(ctx, "delivery.http.IssueToken: %v", err)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.OK(out))
}

func (h *HTTPHandler) RevokeToken(c *gin.Context) {
	ctx := c.Request.Context()

	var req revokeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, pkgErrors.NewHTTPError("DQ009", http.StatusBadRequest, err.Error()))
		return
	}

	if err := h.auth.RevokeToken(ctx, req.Token, req.Reason); err != nil {
		h.l.Warnf(ctx, "delivery.http.RevokeToken: %v", err)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(nil))
}

func (h *HTTPHandler) respondError(c *gin.Context, err error) {
	if f, ok := delivery.MapError(err); ok {
		err = pkgErrors.NewHTTPError(f.Code, f.HTTPStatus, f.Message)
	}
	c.JSON(response.ParseHTTPError(err))
}
