package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func syncRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/sync", RequireSyncToken(testSecret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("sync_subject"))
	})
	return r
}

func doSync(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSyncToken(t *testing.T) {
	r := syncRouter()

	token, err := IssueSyncToken(testSecret, "peer-1", time.Minute)
	require.NoError(t, err)

	w := doSync(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "peer-1", w.Body.String())
}

func TestRequireSyncTokenRejects(t *testing.T) {
	r := syncRouter()

	wrongKey, err := IssueSyncToken("other-secret", "peer-1", time.Minute)
	require.NoError(t, err)
	expired, err := IssueSyncToken(testSecret, "peer-1", -time.Minute)
	require.NoError(t, err)
	noScope, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "peer-1",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub":   "peer-1",
		"scope": SyncScope,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := map[string]string{
		"missing":      "",
		"not bearer":   "Token " + wrongKey,
		"wrong key":    "Bearer " + wrongKey,
		"expired":      "Bearer " + expired,
		"no scope":     "Bearer " + noScope,
		"wrong method": "Bearer " + wrongAlg,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, doSync(r, header).Code)
		})
	}
}

func TestWebSocketOriginAllowed(t *testing.T) {
	dev := &config.Config{Environment: "development"}
	assert.True(t, WebSocketOriginAllowed(dev, "http://localhost:3000"))
	assert.True(t, WebSocketOriginAllowed(dev, ""))
	assert.False(t, WebSocketOriginAllowed(dev, "https://evil.example"))

	prod := &config.Config{Environment: "production", FrontendURL: "https://pool.example"}
	assert.True(t, WebSocketOriginAllowed(prod, "https://pool.example"))
	assert.False(t, WebSocketOriginAllowed(prod, "http://localhost:5173"))
	assert.False(t, WebSocketOriginAllowed(prod, ""))
}

func TestWebSocketCORSCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.Config{Environment: "production", FrontendURL: "https://pool.example"}
	r.GET("/ws", WebSocketCORSCheck(cfg), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
