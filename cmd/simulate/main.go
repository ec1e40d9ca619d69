// Command simulate racks a table, plays one shot to rest and prints the
// resulting snapshot. Table and tuning come from the same environment as
// the server, so it doubles as a tuning check.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/logger"
	"go.uber.org/zap"
)

func main() {
	angle := flag.Float64("angle", 0, "shot direction in degrees")
	power := flag.Float64("power", 100, "shot power, 0 to 100")
	side := flag.Float64("side", 0, "side spin (english)")
	vertical := flag.Float64("vertical", 0, "vertical spin, positive for topspin")
	maxTicks := flag.Int("max-ticks", 20000, "give up after this many ticks")
	events := flag.Bool("events", false, "include every event in the output")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	sim, err := cfg.Simulation()
	if err != nil {
		log.Fatal("simulation config", zap.Error(err))
	}

	engine := game.NewEngine(sim, game.WithLogger(log.Named("engine")))
	if !engine.Shoot(*angle, *power, game.Spin{Side: *side, Vertical: *vertical}) {
		log.Fatal("shot rejected")
	}

	evs, ok := engine.SimulateToRest(*maxTicks)
	if !ok {
		log.Warn("table still moving", zap.Int("max_ticks", *maxTicks))
	}

	snap := engine.Snapshot()
	out := struct {
		Ticks    uint64        `json:"ticks"`
		AtRest   bool          `json:"at_rest"`
		Checksum string        `json:"checksum"`
		Events   int           `json:"event_count"`
		Snapshot game.Snapshot `json:"snapshot"`
		All      []game.Event  `json:"events,omitempty"`
	}{
		Ticks:    engine.TickCount(),
		AtRest:   ok,
		Checksum: fmt.Sprintf("%016x", snap.Checksum()),
		Events:   len(evs),
		Snapshot: snap,
	}
	if *events {
		out.All = evs
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal("encode result", zap.Error(err))
	}
}
