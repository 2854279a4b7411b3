package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 100*time.Millisecond, cfg.HTTP.RateLimit.Std())
	assert.Equal(t, "operator", cfg.Operator)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL.Std())
	assert.Equal(t, "otc-ledger-events", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Postgres.DSN)
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
http:
  addr: ":9090"
  rate_limit: 250ms
operator: settler
postgres:
  dsn: postgres://localhost/otc
redis:
  addr: localhost:6379
  db: 2
  ttl: 30s
kafka:
  brokers:
    - broker-1:9092
    - broker-2:9092
  topic: ledger
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.HTTP.RateLimit.Std())
	assert.Equal(t, "settler", cfg.Operator)
	assert.Equal(t, "postgres://localhost/otc", cfg.Postgres.DSN)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL.Std())
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "ledger", cfg.Kafka.Topic)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OTC_OPERATOR", "env-operator")
	t.Setenv("OTC_KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-operator", cfg.Operator)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestLoadRejectsEmptyOperator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`operator: ""`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  rate_limit: soon\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
