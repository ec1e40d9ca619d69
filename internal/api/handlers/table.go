package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/table"
	"go.uber.org/zap"
)

type geometryResponse struct {
	BallRadius   float64       `json:"ball_radius"`
	PocketRadius float64       `json:"pocket_radius"`
	Playable     game.Rect     `json:"playable"`
	Boundary     []game.Vec2   `json:"boundary"`
	Pockets      []game.Pocket `json:"pockets"`
}

type placementRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

type syncRequest struct {
	Balls []game.Record `json:"balls" binding:"required,min=1,max=16,dive"`
}

// GetTable returns the current frame of the table.
func GetTable(session *table.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, session.Current())
	}
}

// GetGeometry returns the static table geometry for viewers.
func GetGeometry(session *table.Session) gin.HandlerFunc {
	t := session.Table()
	resp := geometryResponse{
		BallRadius:   t.BallRadius,
		PocketRadius: t.PocketRadius,
		Playable:     t.Playable,
		Boundary:     t.Boundary,
		Pockets:      t.Pockets,
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, resp)
	}
}

// TakeShot starts a shot. The result streams over the websocket.
func TakeShot(session *table.Session, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req table.ShotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shot. Power must be between 0 and 100."})
			return
		}

		shotID, err := session.Shoot(req)
		if err != nil {
			log.Debug("shot rejected", zap.Error(err))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		c.Header("X-Shot-ID", shotID)
		c.JSON(http.StatusAccepted, gin.H{"shot_id": shotID})
	}
}

// Rack re-racks the table.
func Rack(session *table.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := session.Rack(); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, session.Current())
	}
}

// PlaceCueBall respots the cue ball after validating the spot.
func PlaceCueBall(session *table.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req placementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "x and y required"})
			return
		}

		err := session.PlaceCueBall(*req.X, *req.Y)
		switch {
		case errors.Is(err, table.ErrInvalidPlacement):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case err != nil:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, session.Current())
		}
	}
}

// CheckPlacement reports whether the cue ball may go at ?x=&y=.
func CheckPlacement(session *table.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q struct {
			X *float64 `form:"x" binding:"required"`
			Y *float64 `form:"y" binding:"required"`
		}
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "x and y query parameters required"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": session.CanPlaceCueBall(*q.X, *q.Y)})
	}
}

// SyncTable overwrites ball state with an authoritative snapshot.
func SyncTable(session *table.Session, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req syncRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "balls required"})
			return
		}

		if err := session.Sync(req.Balls); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Info("table synced over http", zap.String("subject", c.GetString("sync_subject")))
		c.JSON(http.StatusOK, session.Current())
	}
}
