package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/draftqueue/config"
	"github.com/vogiaan1904/draftqueue/internal/catalog"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/internal/service"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

type fakeService struct {
	service.DraftQueueService
}

func (fakeService) ListQueues(context.Context) []models.QueueDefinition {
	return catalog.Default(true).All()
}

func (fakeService) GetQueueStatus(context.Context) (*models.QueueStatus, error) {
	return &models.QueueStatus{
		Playing: 8,
		Queues:  map[string]models.QueueOccupancy{"dmu": {Set: "dmu", InQueue: 1, Playing: 8}},
	}, nil
}

func newRouter(t *testing.T) (*gin.Engine, service.PlayerAuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	l := logger.InitializeTestZapLogger()
	auth := service.NewPlayerAuthService(nil, config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}, l)
	return NewHTTPHandler(fakeService{}, auth, l).Router(nil), auth
}

type envelope struct {
	ErrorCode string          `json:"error_code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHealthCheck(t *testing.T) {
	r, _ := newRouter(t)
	w, _ := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListQueues(t *testing.T) {
	r, _ := newRouter(t)
	w, env := do(t, r, http.MethodGet, "/api/v1/queues", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var queues []models.QueueDefinition
	require.NoError(t, json.Unmarshal(env.Data, &queues))
	assert.NotEmpty(t, queues)
}

func TestGetQueueStatus(t *testing.T) {
	r, _ := newRouter(t)
	w, env := do(t, r, http.MethodGet, "/api/v1/queues/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var st models.QueueStatus
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, 8, st.Playing)
	assert.Equal(t, 1, st.Queues["dmu"].InQueue)
}

func TestIssueToken_IgnoresClientPlayerID(t *testing.T) {
	r, auth := newRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/auth/token", map[string]string{"player_id": "p1"})
	require.Equal(t, http.StatusCreated, w.Code)

	var out service.IssueTokenOutput
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.NotEmpty(t, out.PlayerID)
	assert.NotEqual(t, "p1", out.PlayerID)

	playerID, err := auth.VerifyToken(context.Background(), out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.PlayerID, playerID)
}

func TestIssueToken_Renew(t *testing.T) {
	r, _ := newRouter(t)
	_, env := do(t, r, http.MethodPost, "/api/v1/auth/token", nil)
	var first service.IssueTokenOutput
	require.NoError(t, json.Unmarshal(env.Data, &first))

	w, env := do(t, r, http.MethodPost, "/api/v1/auth/token", map[string]string{"token": first.Token})
	require.Equal(t, http.StatusCreated, w.Code)
	var renewed service.IssueTokenOutput
	require.NoError(t, json.Unmarshal(env.Data, &renewed))
	assert.Equal(t, first.PlayerID, renewed.PlayerID)

	w, env = do(t, r, http.MethodPost, "/api/v1/auth/token", map[string]string{"token": "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "DQ010", env.ErrorCode)
}

func TestIssueToken_Anonymous(t *testing.T) {
	r, _ := newRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/auth/token", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var out service.IssueTokenOutput
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.NotEmpty(t, out.PlayerID)
}

func TestRevokeToken_Unavailable(t *testing.T) {
	r, _ := newRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/auth/revoke", map[string]string{"token": "abc"})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "DQ012", env.ErrorCode)
}

func TestRevokeToken_MissingToken(t *testing.T) {
	r, _ := newRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/auth/revoke", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DQ009", env.ErrorCode)
}
