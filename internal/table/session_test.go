package table

import (
	"context"
	"testing"
	"time"

	"github.com/playmatatu/poolsim/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return NewSession(game.DefaultConfig(), time.Millisecond, nil)
}

func TestShootAndStepToRest(t *testing.T) {
	s := newTestSession()

	id, err := s.Shoot(ShotRequest{Angle: 0, Power: 100})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = s.Shoot(ShotRequest{Angle: 0, Power: 100})
	assert.ErrorIs(t, err, ErrShotRejected)
	assert.ErrorIs(t, s.Rack(), ErrBusy)
	assert.ErrorIs(t, s.PlaceCueBall(-300, 0), ErrBusy)

	var last Update
	for i := 0; i < 10000; i++ {
		u, ok := s.Step()
		if !ok {
			break
		}
		last = u
	}

	assert.True(t, last.Final)
	assert.Equal(t, id, last.ShotID)
	assert.True(t, last.Frame.Snapshot.AllStopped)
	assert.Equal(t, last.Frame.Snapshot.Checksum(), last.Checksum)

	_, ok := s.Step()
	assert.False(t, ok)
	assert.Equal(t, last.Checksum, s.Current().Checksum)
}

func TestPlaceCueBall(t *testing.T) {
	s := newTestSession()
	rack := game.StandardTableConfig().Rack

	assert.False(t, s.CanPlaceCueBall(rack[1].X, rack[1].Y))
	assert.ErrorIs(t, s.PlaceCueBall(rack[1].X, rack[1].Y), ErrInvalidPlacement)

	require.True(t, s.CanPlaceCueBall(-300, 40))
	require.NoError(t, s.PlaceCueBall(-300, 40))

	ball := s.Current().Frame.Snapshot.Balls[game.CueBall]
	assert.Equal(t, -300.0, ball.X)
	assert.Equal(t, 40.0, ball.Y)
}

func TestSyncStartsSimulation(t *testing.T) {
	s := newTestSession()

	require.NoError(t, s.Sync([]game.Record{{Number: 3, X: 0, Y: 0, VX: 5, OnTable: true}}))
	assert.Equal(t, game.StateSimulating, s.Current().Frame.State)

	_, ok := s.Step()
	assert.True(t, ok)
}

func TestRunPublishesFinalFrame(t *testing.T) {
	s := newTestSession()
	updates, cancelSub := s.Subscribe(4096)
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	_, err := s.Shoot(ShotRequest{Angle: 180, Power: 20})
	require.NoError(t, err)

	timeout := time.After(10 * time.Second)
	var final *Update
	for final == nil {
		select {
		case u := <-updates:
			if u.Final && u.Frame.Tick > 0 {
				final = &u
			}
		case <-timeout:
			t.Fatal("no final frame published")
		}
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.True(t, final.Frame.Snapshot.AllStopped)
}

func TestSubscribeCancelIsIdempotent(t *testing.T) {
	s := newTestSession()
	ch, cancel := s.Subscribe(1)
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	require.NoError(t, s.Rack())
}

func TestUpdatesKeepShotOrder(t *testing.T) {
	s := newTestSession()
	updates, cancelSub := s.Subscribe(1 << 16)
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	angles := []float64{90, 270, 90, 270}
	for _, angle := range angles {
		require.Eventually(t, func() bool {
			return s.Current().Frame.State == game.StateIdle
		}, 10*time.Second, time.Millisecond)
		_, err := s.Shoot(ShotRequest{Angle: angle, Power: 5})
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool {
		return s.Current().Frame.State == game.StateIdle
	}, 10*time.Second, time.Millisecond)
	cancel()

	// Once a shot's frames start, no frame from an earlier shot follows.
	seen := map[string]bool{}
	current := ""
	var lastTick uint64
	for {
		select {
		case u := <-updates:
			require.GreaterOrEqual(t, u.Frame.Tick, lastTick)
			lastTick = u.Frame.Tick
			if u.ShotID != current {
				require.False(t, seen[u.ShotID], "frame for shot %s arrived after a later shot", u.ShotID)
				seen[current] = true
				current = u.ShotID
			}
		default:
			assert.Len(t, seen, len(angles))
			return
		}
	}
}
