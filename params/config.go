package params

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	TransportLibp2p = "libp2p"
	TransportRedis  = "redis"
)

type Log struct {
	// File tees logs to this path as well as stdout; empty means stdout only.
	File  string `env:"FILE"`
	Level string `env:"LEVEL" envDefault:"info"`
}

type Writer struct {
	DataDir string `env:"DATA_DIR" envDefault:"data"`
	// QueueSize is how many entries wait for the disk before Add blocks.
	QueueSize int `env:"QUEUE_SIZE" envDefault:"1024"`
}

type Libp2p struct {
	ListenAddr string   `env:"LISTEN" envDefault:"/ip4/0.0.0.0/tcp/4001"`
	Bootstrap  []string `env:"BOOTSTRAP" envSeparator:","`
}

type Redis struct {
	URL      string        `env:"URL" envDefault:"redis://localhost:6379"`
	Stream   string        `env:"STREAM" envDefault:"libstock:records"`
	Group    string        `env:"GROUP" envDefault:"recorder"`
	Consumer string        `env:"CONSUMER" envDefault:"recorder-1"`
	Block    time.Duration `env:"BLOCK" envDefault:"5s"`
	MaxLen   int64         `env:"MAXLEN" envDefault:"0"`
}

type Transport struct {
	Kind   string `env:"TRANSPORT" envDefault:"libp2p"`
	Topic  string `env:"TOPIC" envDefault:"libstock-records"`
	Libp2p Libp2p `envPrefix:"P2P_"`
	Redis  Redis  `envPrefix:"REDIS_"`
}

type Store struct {
	// PebblePath enables the record store; empty disables it.
	PebblePath string `env:"PEBBLE_PATH"`
}

type API struct {
	// Addr serves the HTTP API and /metrics; empty disables it.
	Addr           string   `env:"ADDR" envDefault:":8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

type Slack struct {
	// Webhook enables start/stop notifications; empty disables them.
	Webhook  string `env:"WEBHOOK"`
	Channel  string `env:"CHANNEL"`
	Username string `env:"USERNAME" envDefault:"libstock"`
}

type Config struct {
	Log       Log    `envPrefix:"LOG_"`
	Writer    Writer `envPrefix:"WRITER_"`
	Transport Transport
	Store     Store
	API       API   `envPrefix:"API_"`
	Slack     Slack `envPrefix:"SLACK_"`
}

// Default is the configuration with every envDefault applied and nothing read
// from the process environment.
func Default() Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Errorf("params: defaults: %w", err))
	}
	return cfg
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) (Config, error) {
	// .env is optional; godotenv never overrides variables already set
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Writer.DataDir == "" {
		return fmt.Errorf("WRITER_DATA_DIR must not be empty")
	}
	if c.Writer.QueueSize < 0 {
		return fmt.Errorf("WRITER_QUEUE_SIZE must not be negative, got %d", c.Writer.QueueSize)
	}

	switch c.Transport.Kind {
	case TransportLibp2p:
		if c.Transport.Topic == "" {
			return fmt.Errorf("TOPIC must be set for the libp2p transport")
		}
	case TransportRedis:
		r := c.Transport.Redis
		if r.URL == "" || r.Stream == "" || r.Group == "" || r.Consumer == "" {
			return fmt.Errorf("REDIS_URL, REDIS_STREAM, REDIS_GROUP and REDIS_CONSUMER must be set for the redis transport")
		}
	default:
		return fmt.Errorf("invalid transport: %s (want %s or %s)", c.Transport.Kind, TransportLibp2p, TransportRedis)
	}
	return nil
}
