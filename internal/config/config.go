package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr     string `mapstructure:"http_addr"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
	CORSOrigins  string `mapstructure:"cors_origins"`

	StoreDriver   string `mapstructure:"store_driver"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	DatabaseURL   string `mapstructure:"database_url"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDB       string `mapstructure:"mongo_db"`
	EventLog      bool   `mapstructure:"event_log"`

	WordsSource string `mapstructure:"words_source"`
	WordsFile   string `mapstructure:"words_file"`

	RoomTTL           time.Duration `mapstructure:"room_ttl"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	ScoreOncePerRound bool          `mapstructure:"score_once_per_round"`
}

var defaults = map[string]any{
	"http_addr":            ":8080",
	"log_level":            "info",
	"log_format":           "console",
	"max_body_bytes":       10 << 20,
	"cors_origins":         "*",
	"store_driver":         "memory",
	"redis_addr":           "localhost:6379",
	"redis_password":       "",
	"redis_db":             0,
	"database_url":         "",
	"mongo_uri":            "mongodb://localhost:27017",
	"mongo_db":             "drawguess",
	"event_log":            false,
	"words_source":         "static",
	"words_file":           "words.txt",
	"room_ttl":             "30m",
	"sweep_interval":       "1m",
	"score_once_per_round": false,
}

// Load reads an optional .env file, then the environment, on top of the
// defaults above.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "memory", "redis", "mongo":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.WordsSource {
	case "static", "file":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres word source")
		}
	default:
		return fmt.Errorf("unknown WORDS_SOURCE %q", c.WordsSource)
	}

	if c.EventLog && c.DatabaseURL == "" {
		return errors.New("EVENT_LOG needs DATABASE_URL")
	}
	if c.RoomTTL <= 0 || c.SweepInterval <= 0 {
		return errors.New("ROOM_TTL and SWEEP_INTERVAL must be positive")
	}
	return nil
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
