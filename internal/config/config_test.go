package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("MAX_UPLOAD_MB", "")

	cfg := Load()
	require.Equal(t, 24*time.Hour, cfg.JWTExpire)
	require.Equal(t, int64(50<<20), cfg.MaxUploadSize)
	require.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "12")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := Load()
	require.Equal(t, 12*time.Hour, cfg.JWTExpire)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
	require.False(t, cfg.MetricsEnabled)
}
