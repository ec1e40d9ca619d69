package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playmatatu/poolsim/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("TICK_RATE_HZ", "")
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60, cfg.TickRateHz)
	assert.Equal(t, time.Second/60, cfg.TickInterval())

	sim, err := cfg.Simulation()
	require.NoError(t, err)
	assert.Equal(t, game.DefaultConfig(), sim)
}

func TestTuningOverridesFromEnv(t *testing.T) {
	t.Setenv("FRICTION", "0.97")
	t.Setenv("MAX_FORCE", "55")
	cfg := Load()

	sim, err := cfg.Simulation()
	require.NoError(t, err)
	assert.Equal(t, 0.97, sim.Tuning.Friction)
	assert.Equal(t, 55.0, sim.Tuning.MaxForce)
}

func TestTuningOverrideValidated(t *testing.T) {
	t.Setenv("FRICTION", "2")
	_, err := Load().Simulation()
	assert.ErrorIs(t, err, game.ErrInvalidTuning)

	t.Setenv("FRICTION", "fast")
	_, err = Load().Simulation()
	assert.Error(t, err)
}

func TestTableConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tuning:\n  cushion_restitution: 0.5\n"), 0o600))
	t.Setenv("TABLE_CONFIG", path)

	sim, err := Load().Simulation()
	require.NoError(t, err)
	assert.Equal(t, 0.5, sim.Tuning.CushionRestitution)

	t.Setenv("TABLE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load().Simulation()
	assert.Error(t, err)
}
