package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/middleware"
	"github.com/playmatatu/poolsim/internal/table"
	"github.com/playmatatu/poolsim/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testConfig = &config.Config{Environment: "test", JWTSecret: "route-secret"}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	session := table.NewSession(game.DefaultConfig(), time.Millisecond, nil)
	hub := ws.NewHub(session, nil, nil)
	router := gin.New()
	SetupRoutes(router, session, hub, testConfig, zap.NewNop())
	return router
}

func do(router *gin.Engine, method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeUpdate(t *testing.T, w *httptest.ResponseRecorder) table.Update {
	t.Helper()
	var u table.Update
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	return u
}

func TestHealth(t *testing.T) {
	w := do(newRouter(t), http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestGetTableAndGeometry(t *testing.T) {
	router := newRouter(t)

	w := do(router, http.MethodGet, "/api/v1/table", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	u := decodeUpdate(t, w)
	assert.Len(t, u.Frame.Snapshot.Balls, game.NumBalls)
	assert.Equal(t, game.StateIdle, u.Frame.State)
	assert.Equal(t, u.Frame.Snapshot.Checksum(), u.Checksum)

	w = do(router, http.MethodGet, "/api/v1/table/geometry", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var geo struct {
		BallRadius float64       `json:"ball_radius"`
		Pockets    []game.Pocket `json:"pockets"`
		Boundary   []game.Vec2   `json:"boundary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &geo))
	assert.Equal(t, game.DefaultBallRadius, geo.BallRadius)
	assert.Len(t, geo.Pockets, 6)
	assert.Len(t, geo.Boundary, 24)
}

func TestTakeShot(t *testing.T) {
	router := newRouter(t)

	w := do(router, http.MethodPost, "/api/v1/table/shot", map[string]interface{}{"angleDegrees": 0, "power": 150}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/v1/table/shot", map[string]interface{}{
		"angleDegrees": 0,
		"power":        80,
		"spin":         map[string]float64{"side": 10, "vertical": -20},
	}, nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["shot_id"])
	assert.Equal(t, resp["shot_id"], w.Header().Get("X-Shot-ID"))

	// Nothing ticks the session here, so the shot stays in flight.
	w = do(router, http.MethodPost, "/api/v1/table/shot", map[string]interface{}{"angleDegrees": 0, "power": 80}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = do(router, http.MethodPost, "/api/v1/table/rack", nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	u := decodeUpdate(t, do(router, http.MethodGet, "/api/v1/table", nil, nil))
	assert.Equal(t, game.StateSimulating, u.Frame.State)
	assert.Equal(t, resp["shot_id"], u.ShotID)
}

func TestCueBallPlacement(t *testing.T) {
	router := newRouter(t)
	apex := game.StandardTableConfig().Rack[1]

	w := do(router, http.MethodGet, "/api/v1/table/cue-ball/valid?x=-300&y=40", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())

	w = do(router, http.MethodGet, "/api/v1/table/cue-ball/valid?x=-300", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/v1/table/cue-ball", map[string]float64{"x": -300}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/v1/table/cue-ball", map[string]float64{"x": apex.X, "y": apex.Y}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(router, http.MethodPost, "/api/v1/table/cue-ball", map[string]float64{"x": -300, "y": 40}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cue := decodeUpdate(t, w).Frame.Snapshot.Balls[game.CueBall]
	assert.Equal(t, -300.0, cue.X)
	assert.Equal(t, 40.0, cue.Y)
}

func TestSyncRequiresToken(t *testing.T) {
	router := newRouter(t)
	body := map[string]interface{}{
		"balls": []game.Record{{Number: 5, X: 0, Y: 0, VX: 3, OnTable: true}},
	}

	w := do(router, http.MethodPost, "/api/v1/table/sync", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := middleware.IssueSyncToken(testConfig.JWTSecret, "peer", time.Minute)
	require.NoError(t, err)
	auth := http.Header{"Authorization": {"Bearer " + token}}

	w = do(router, http.MethodPost, "/api/v1/table/sync", map[string]interface{}{"balls": []game.Record{}}, auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/v1/table/sync", body, auth)
	require.Equal(t, http.StatusOK, w.Code)
	u := decodeUpdate(t, w)
	assert.Equal(t, game.StateSimulating, u.Frame.State)
	assert.Equal(t, 0.0, u.Frame.Snapshot.Balls[5].X)
}
