// Package config loads application configuration from the environment and
// from the YAML weight-profile file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Task store. DatabaseURL selects the Postgres store when set;
	// otherwise the local SQLite store at SQLitePath is used.
	DatabaseURL string
	SQLitePath  string

	// Redis (optional queue cache)
	RedisURL string

	// RabbitMQ (optional event publishing)
	RabbitMQURL string

	// Selection
	ExactSolverEnabled    bool
	SolverTimeout         time.Duration
	DefaultK              int
	MinK                  int
	DefaultTimeboxMinutes int
	MinCourses            int

	// Scoring
	Phase                string
	WeightProfilePath    string
	AnchorBonus          float64
	ChainHeadBonus       float64
	UrgencyMax           float64
	UrgencyHalfLifeHours float64
	ImpactMax            float64
	ImpactSaturation     float64
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("NOWQ_ENV", "development"),
		LogLevel: getEnv("NOWQ_LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("NOWQ_SQLITE_PATH", defaultSQLitePath()),
		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		ExactSolverEnabled:    getBoolEnv("NOWQ_EXACT_SOLVER_ENABLED", true),
		SolverTimeout:         getDurationEnv("NOWQ_SOLVER_TIMEOUT", 2*time.Second),
		DefaultK:              getIntEnv("NOWQ_DEFAULT_K", 5),
		MinK:                  getIntEnv("NOWQ_MIN_K", 1),
		DefaultTimeboxMinutes: getIntEnv("NOWQ_DEFAULT_TIMEBOX_MINUTES", 180),
		MinCourses:            getIntEnv("NOWQ_MIN_COURSES", 2),

		Phase:                getEnv("NOWQ_PHASE", "in-term"),
		WeightProfilePath:    getEnv("NOWQ_WEIGHT_PROFILE", ""),
		AnchorBonus:          getFloatEnv("NOWQ_ANCHOR_BONUS", 2.5),
		ChainHeadBonus:       getFloatEnv("NOWQ_CHAIN_HEAD_BONUS", 1.0),
		UrgencyMax:           getFloatEnv("NOWQ_URGENCY_MAX", 5.0),
		UrgencyHalfLifeHours: getFloatEnv("NOWQ_URGENCY_HALF_LIFE_HOURS", 48.0),
		ImpactMax:            getFloatEnv("NOWQ_IMPACT_MAX", 4.0),
		ImpactSaturation:     getFloatEnv("NOWQ_IMPACT_SATURATION", 3.0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	if c.DefaultK <= 0 {
		return fmt.Errorf("default k must be positive, got %d", c.DefaultK)
	}
	if c.MinK < 0 || c.MinK > c.DefaultK {
		return fmt.Errorf("min k must be in [0, %d], got %d", c.DefaultK, c.MinK)
	}
	if c.DefaultTimeboxMinutes <= 0 {
		return fmt.Errorf("default timebox must be positive, got %d", c.DefaultTimeboxMinutes)
	}
	if c.MinCourses < 0 {
		return fmt.Errorf("min courses must be non-negative, got %d", c.MinCourses)
	}
	if c.SolverTimeout <= 0 {
		return fmt.Errorf("solver timeout must be positive, got %s", c.SolverTimeout)
	}
	if c.UrgencyHalfLifeHours <= 0 {
		return fmt.Errorf("urgency half-life must be positive, got %v", c.UrgencyHalfLifeHours)
	}
	if c.ImpactSaturation <= 0 {
		return fmt.Errorf("impact saturation must be positive, got %v", c.ImpactSaturation)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nowqueue.db"
	}
	return home + "/.nowqueue/nowqueue.db"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
