package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Operator string         `yaml:"operator"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

type HTTPConfig struct {
	Addr      string   `yaml:"addr"`
	RateLimit Duration `yaml:"rate_limit"`
}

// PostgresConfig holds the persistence mirror settings. An empty DSN
// selects the in-memory repository.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig holds the read cache settings. An empty Addr disables
// the cache.
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"`
}

// KafkaConfig holds the notification stream settings. Empty Brokers
// disable publishing.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Load reads the yaml file at path when it exists, applies defaults,
// then environment overrides. A missing file is not an error; the
// defaults plus environment are enough to run.
func Load(path string) (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:      ":8080",
			RateLimit: Duration(100 * time.Millisecond),
		},
		Operator: "operator",
		Redis: RedisConfig{
			TTL: Duration(5 * time.Minute),
		},
		Kafka: KafkaConfig{
			Topic: "otc-ledger-events",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.Operator == "" {
		return nil, fmt.Errorf("config: operator identity must not be empty")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OTC_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("OTC_OPERATOR"); v != "" {
		cfg.Operator = v
	}
	if v := os.Getenv("OTC_POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("OTC_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("OTC_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("OTC_KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
}
