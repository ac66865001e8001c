// Package config loads service configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config carries the settings of all three binaries; each one reads the
// subset it needs.
type Config struct {
	// Port is the stream gateway's HTTP listen port.
	Port string
	// EnginePort is the simulation engine's HTTP listen port.
	EnginePort string
	// RunnerURL is the base URL of the simulation engine's scenario API.
	RunnerURL string

	// PollInterval is the snapshot poll cadence of the stream gateway.
	PollInterval time.Duration
	// PollTimeout bounds each upstream fetch; it is kept below
	// PollInterval so polls never overlap.
	PollTimeout time.Duration

	// RenderTick is the viewer's frame period.
	RenderTick time.Duration
	// SimulationSpeed is the multiplier mapping wall-clock time to
	// simulated time on the viewer side.
	SimulationSpeed float64

	// SimTick is the engine's advance period.
	SimTick time.Duration

	MongoURI string
	MongoDB  string

	MQTTBroker   string
	MQTTClientID string

	// StreamAuthSecret enables bearer-token protection of the stream
	// endpoint when non-empty.
	StreamAuthSecret string
}

// Load reads the configuration. A missing .env file is not an error.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Info("loaded configuration from .env")
	}

	return Config{
		Port:             envString("PORT", "8080"),
		EnginePort:       envString("ENGINE_PORT", "8090"),
		RunnerURL:        envString("RUNNER_URL", "http://localhost:8090"),
		PollInterval:     time.Duration(envInt("POLL_INTERVAL_SECONDS", 2)) * time.Second,
		PollTimeout:      time.Duration(envInt("POLL_TIMEOUT_MS", 1000)) * time.Millisecond,
		RenderTick:       time.Duration(envInt("RENDER_TICK_MS", 50)) * time.Millisecond,
		SimulationSpeed:  envFloat("SIMULATION_SPEED", 1),
		SimTick:          time.Duration(envInt("SIM_TICK_MS", 100)) * time.Millisecond,
		MongoURI:         envString("MONGO_URI", ""),
		MongoDB:          envString("MONGO_DB", "dispatch"),
		MQTTBroker:       envString("MQTT_BROKER", ""),
		MQTTClientID:     envString("MQTT_CLIENT_ID", "dispatch-live"),
		StreamAuthSecret: envString("STREAM_AUTH_SECRET", ""),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.WithField("key", key).Warn("ignoring invalid integer env value")
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
		log.WithField("key", key).Warn("ignoring invalid float env value")
	}
	return fallback
}
