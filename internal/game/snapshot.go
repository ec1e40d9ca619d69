package game

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// BallSnapshot is one ball as seen by renderers.
type BallSnapshot struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	VX      float64 `json:"vx"`
	VY      float64 `json:"vy"`
	OnTable bool    `json:"onTable"`
}

// Snapshot is the table state handed to renderers and peers.
type Snapshot struct {
	Balls         map[int]BallSnapshot `json:"balls"`
	AllStopped    bool                 `json:"allStopped"`
	FirstBallHit  *int                 `json:"firstBallHit"`
	PocketedBalls []PocketedBall       `json:"pocketedBalls"`
}

// Checksum hashes the ball states in ball-number order so two peers can
// compare tables without shipping them.
func (s Snapshot) Checksum() uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}
	for n := 0; n < NumBalls; n++ {
		b, ok := s.Balls[n]
		if !ok {
			continue
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		_, _ = d.Write(buf[:])
		put(b.X)
		put(b.Y)
		put(b.VX)
		put(b.VY)
		if b.OnTable {
			_, _ = d.Write([]byte{1})
		} else {
			_, _ = d.Write([]byte{0})
		}
	}
	return d.Sum64()
}

// Records converts the snapshot back to per-ball records, e.g. to feed
// another engine's SyncFromExternal.
func (s Snapshot) Records() []Record {
	pockets := make(map[int]int, len(s.PocketedBalls))
	for _, p := range s.PocketedBalls {
		pockets[p.Number] = p.PocketID
	}
	out := make([]Record, 0, len(s.Balls))
	for n := 0; n < NumBalls; n++ {
		b, ok := s.Balls[n]
		if !ok {
			continue
		}
		r := Record{Number: n, X: b.X, Y: b.Y, VX: b.VX, VY: b.VY, OnTable: b.OnTable}
		if id, ok := pockets[n]; ok {
			r.PocketID = &id
		}
		out = append(out, r)
	}
	return out
}
