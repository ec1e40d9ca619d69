package table

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playmatatu/poolsim/internal/game"
	"go.uber.org/zap"
)

var (
	ErrShotRejected     = errors.New("shot rejected: cue ball not on the table or shot in progress")
	ErrInvalidPlacement = errors.New("invalid cue ball placement")
	ErrBusy             = errors.New("a shot is in progress")
)

// ShotRequest is the shot command from the input layer.
type ShotRequest struct {
	Angle float64   `json:"angleDegrees"`
	Power float64   `json:"power" binding:"gte=0,lte=100"`
	Spin  game.Spin `json:"spin"`
}

// Update is one frame as published to viewers and peers.
type Update struct {
	ShotID   string     `json:"shotId,omitempty"`
	Frame    game.Frame `json:"frame"`
	Checksum uint64     `json:"checksum"`
	Final    bool       `json:"final"` // the table came to rest with this frame
}

// Session hosts one engine for concurrent callers. All engine access goes
// through mu; Run drives ticks at the configured rate.
type Session struct {
	mu       sync.Mutex
	engine   *game.Engine
	interval time.Duration
	shotID   string

	subMu sync.RWMutex
	subs  map[chan Update]struct{}

	log *zap.Logger
}

// NewSession creates a racked table.
func NewSession(cfg game.Config, interval time.Duration, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		engine:   game.NewEngine(cfg, game.WithLogger(log.Named("engine"))),
		interval: interval,
		subs:     make(map[chan Update]struct{}),
		log:      log,
	}
	s.engine.On(game.EventBallIntoHole, func(ev game.Event) {
		s.log.Info("ball potted",
			zap.String("shot_id", s.shotID),
			zap.Int("ball", ev.Ball),
			zap.Int("pocket", ev.Pocket))
	})
	s.engine.On(game.EventBallsStopped, func(game.Event) {
		s.log.Info("table at rest", zap.String("shot_id", s.shotID), zap.Uint64("tick", s.engine.TickCount()))
	})
	return s
}

// Table returns the immutable table geometry.
func (s *Session) Table() *game.Table {
	return s.engine.Table()
}

// Shoot starts a shot and returns its id.
func (s *Session) Shoot(req ShotRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.engine.Shoot(req.Angle, req.Power, req.Spin) {
		return "", ErrShotRejected
	}
	s.shotID = uuid.NewString()
	s.log.Info("shot accepted",
		zap.String("shot_id", s.shotID),
		zap.Float64("angle", req.Angle),
		zap.Float64("power", req.Power),
		zap.Float64("side", req.Spin.Side),
		zap.Float64("vertical", req.Spin.Vertical))

	u := s.updateLocked(s.engine.Frame())
	s.broadcast(u)
	return s.shotID, nil
}

// Rack re-racks all balls.
func (s *Session) Rack() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.State() == game.StateSimulating {
		return ErrBusy
	}
	s.engine.InitRack()
	s.shotID = ""
	s.log.Info("table racked")
	s.broadcast(s.updateLocked(s.engine.Frame()))
	return nil
}

// CanPlaceCueBall reports whether the cue ball may be placed at (x, y).
func (s *Session) CanPlaceCueBall(x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.IsValidCueBallPlacement(x, y)
}

// PlaceCueBall validates and respots the cue ball.
func (s *Session) PlaceCueBall(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.State() == game.StateSimulating {
		return ErrBusy
	}
	if !s.engine.IsValidCueBallPlacement(x, y) {
		return ErrInvalidPlacement
	}
	if !s.engine.RespotCueBall(x, y) {
		return ErrBusy
	}
	s.log.Info("cue ball placed", zap.Float64("x", x), zap.Float64("y", y))
	s.broadcast(s.updateLocked(s.engine.Frame()))
	return nil
}

// Sync applies authoritative ball records.
func (s *Session) Sync(records []game.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.engine.SyncFromExternal(records) {
		return ErrBusy
	}
	s.log.Info("table synced", zap.Int("balls", len(records)), zap.String("state", string(s.engine.State())))
	s.broadcast(s.updateLocked(s.engine.Frame()))
	return nil
}

// Current returns the table as it stands, without ticking.
func (s *Session) Current() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(s.engine.Frame())
}

// Step runs one tick if a shot is in flight and publishes the frame. It
// reports whether a tick ran.
func (s *Session) Step() (Update, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.State() != game.StateSimulating {
		return Update{}, false
	}

	// Broadcast under the lock so frames reach subscribers in tick order,
	// ahead of anything the next command publishes.
	u := s.updateLocked(s.engine.Tick())
	s.broadcast(u)
	return u, true
}

// Run ticks at the session rate until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("tick loop started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("tick loop stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Step()
		}
	}
}

// Subscribe returns a channel of updates and a cancel func. Slow
// subscribers miss frames rather than stall the tick loop.
func (s *Session) Subscribe(buffer int) (<-chan Update, func()) {
	ch := make(chan Update, buffer)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Session) broadcast(u Update) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for ch := range s.subs {
		select {
		case ch <- u:
		default:
			s.log.Debug("subscriber buffer full, dropping frame", zap.Uint64("tick", u.Frame.Tick))
		}
	}
}

func (s *Session) updateLocked(f game.Frame) Update {
	return Update{
		ShotID:   s.shotID,
		Frame:    f,
		Checksum: f.Snapshot.Checksum(),
		Final:    f.State == game.StateIdle,
	}
}
