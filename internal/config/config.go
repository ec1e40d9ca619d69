package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/playmatatu/poolsim/internal/game"
)

type Config struct {
	// Environment
	Environment string
	LogLevel    string

	// Redis (empty URL disables frame publishing and remote sync)
	RedisURL         string
	FramesChannel    string
	SyncChannel      string
	PublishEveryTick bool

	// Server
	Port        string
	FrontendURL string

	// Simulation
	TickRateHz  int
	TableConfig string // optional YAML file with table geometry and tuning

	// Security
	JWTSecret string

	// Tuning overrides, applied over the table file or the defaults
	tuningOverrides map[string]string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Redis
		RedisURL:         getEnv("REDIS_URL", ""),
		FramesChannel:    getEnv("REDIS_FRAMES_CHANNEL", "table_frames"),
		SyncChannel:      getEnv("REDIS_SYNC_CHANNEL", "table_sync"),
		PublishEveryTick: getEnvBool("REDIS_PUBLISH_EVERY_TICK", false),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		TickRateHz:  getEnvInt("TICK_RATE_HZ", 60),
		TableConfig: getEnv("TABLE_CONFIG", ""),

		// Security
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),

		tuningOverrides: map[string]string{},
	}

	for _, key := range tuningKeys {
		if v := os.Getenv(key); v != "" {
			cfg.tuningOverrides[key] = v
		}
	}
	return cfg
}

// TickInterval is the wall-clock period of one simulation tick.
func (c *Config) TickInterval() time.Duration {
	hz := c.TickRateHz
	if hz <= 0 {
		hz = 60
	}
	return time.Second / time.Duration(hz)
}

// Simulation returns the table geometry and tuning: the TABLE_CONFIG file
// when set, the standard table otherwise, with env overrides on top.
func (c *Config) Simulation() (game.Config, error) {
	sim := game.DefaultConfig()
	if c.TableConfig != "" {
		f, err := os.Open(c.TableConfig)
		if err != nil {
			return game.Config{}, fmt.Errorf("open table config: %w", err)
		}
		defer f.Close()
		if sim, err = game.LoadConfig(f); err != nil {
			return game.Config{}, fmt.Errorf("load table config %s: %w", c.TableConfig, err)
		}
	}

	if err := applyTuningOverrides(&sim.Tuning, c.tuningOverrides); err != nil {
		return game.Config{}, err
	}
	if err := sim.Tuning.Validate(); err != nil {
		return game.Config{}, err
	}
	return sim, nil
}

var tuningKeys = []string{
	"FRICTION", "CUSHION_LOSS", "BALL_ELASTICITY", "MIN_FORCE_SQ", "MAX_FORCE",
	"SUB_STEP_LENGTH", "SIDE_SPIN_ANGLE", "SIDE_SPIN_DECAY", "DRAW_FACTOR", "SPIN_DECAY",
}

func applyTuningOverrides(t *game.Tuning, overrides map[string]string) error {
	fields := map[string]*float64{
		"FRICTION":        &t.Friction,
		"CUSHION_LOSS":    &t.CushionRestitution,
		"BALL_ELASTICITY": &t.BallElasticity,
		"MIN_FORCE_SQ":    &t.MinForceSquared,
		"MAX_FORCE":       &t.MaxForce,
		"SUB_STEP_LENGTH": &t.SubStepLength,
		"SIDE_SPIN_ANGLE": &t.SideSpinAngle,
		"SIDE_SPIN_DECAY": &t.SideSpinDecay,
		"DRAW_FACTOR":     &t.DrawFactor,
		"SPIN_DECAY":      &t.SpinDecay,
	}
	for key, raw := range overrides {
		dst, ok := fields[key]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = v
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
