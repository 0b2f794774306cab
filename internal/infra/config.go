package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"crickbet"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"crickbet"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"crickbet"`

	// Redis (sweep locks). Empty disables distributed locking.
	RedisAddr string `env:"REDIS_ADDR"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3200"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// Sweep cadence
	ResultSweepInterval time.Duration `env:"RESULT_SWEEP_INTERVAL" envDefault:"2m"`
	FancySweepInterval  time.Duration `env:"FANCY_SWEEP_INTERVAL" envDefault:"10m"`
	MarketSweepInterval time.Duration `env:"MARKET_SWEEP_INTERVAL" envDefault:"15m"`

	// Grace windows before the safety net forcibly voids
	FancyVoidAfter  time.Duration `env:"FANCY_VOID_AFTER" envDefault:"30m"`
	MarketVoidAfter time.Duration `env:"MARKET_VOID_AFTER" envDefault:"60m"`
	// Age past which a still-unresolved match is warned about
	AncientAfter time.Duration `env:"ANCIENT_AFTER" envDefault:"24h"`

	// Result sources
	CricScoreBaseURL  string `env:"CRICSCORE_BASE_URL" envDefault:"https://api.cricscore.example.com"`
	CricScoreAPIKey   string `env:"CRICSCORE_API_KEY"`
	SportsFeedBaseURL string `env:"SPORTSFEED_BASE_URL" envDefault:"https://feeds.sportsfeed.example.com"`
	SportsFeedAPIKey  string `env:"SPORTSFEED_API_KEY"`
	OddsFeedBaseURL   string `env:"ODDSFEED_BASE_URL" envDefault:"http://localhost:4100"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects sweep configuration that would starve the safety net.
func (c *Config) Validate() error {
	if c.FancyVoidAfter >= c.MarketVoidAfter {
		return fmt.Errorf("FANCY_VOID_AFTER (%s) must be shorter than MARKET_VOID_AFTER (%s)",
			c.FancyVoidAfter, c.MarketVoidAfter)
	}
	if c.ResultSweepInterval <= 0 {
		return fmt.Errorf("RESULT_SWEEP_INTERVAL must be positive")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
