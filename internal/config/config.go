// Package config aggregates application settings from .env files and
// PREPAL_* environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gitenglishhub/prepal/internal/llm"
	"github.com/gitenglishhub/prepal/internal/questiongen"
)

// App holds the full application configuration.
type App struct {
	// DBPath overrides the default SQLite location. Empty uses the XDG
	// default.
	DBPath string
	// RedisURL enables the shared remote question cache when set.
	RedisURL string
	// UserID identifies the learner in telemetry uploads.
	UserID string
	// Telemetry disables session uploads when false.
	Telemetry bool
	// Debug switches logging to the development format.
	Debug bool

	LLM llm.Config
	Gen questiongen.Config
}

// Load reads .env (if present) and the environment, and returns the
// assembled configuration.
func Load() App {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	app := App{
		DBPath:    os.Getenv("PREPAL_DB"),
		RedisURL:  os.Getenv("PREPAL_REDIS_URL"),
		UserID:    envOr("PREPAL_USER_ID", "local"),
		Telemetry: os.Getenv("PREPAL_TELEMETRY") != "off",
		Debug:     os.Getenv("PREPAL_DEBUG") == "1",
		LLM:       llm.ConfigFromEnv(),
		Gen:       questiongen.DefaultConfig(),
	}

	if v, err := strconv.Atoi(os.Getenv("PREPAL_HUMOR_LEVEL")); err == nil && v >= 0 && v <= 10 {
		app.Gen.HumorLevel = v
	}
	if v, err := strconv.Atoi(os.Getenv("PREPAL_ROUND_LENGTH")); err == nil && v >= 0 {
		app.Gen.RoundLength = v
	}
	if v := os.Getenv("PREPAL_VOICE"); v != "" {
		app.Gen.Voice = v
	}

	// Without an explicit provider choice, probe standard key variables.
	if app.LLM.Validate() != nil {
		if discovered, ok := llm.DiscoverConfig(); ok {
			app.LLM = discovered
		}
	}

	return app
}

// NewLogger builds the application logger. Debug mode uses the
// human-readable development format.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
