package app

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SIN_ENCRYPTION_KEY", "")
	t.Setenv("SIN_HASH_SALT", "")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("SIN_ENCRYPTION_KEY", "a2V5")
	t.Setenv("SIN_HASH_SALT", "salt")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 12*time.Hour, cfg.JWTTTL)
	require.Equal(t, "5 0 * * *", cfg.OpenPeriodCron)
	require.Equal(t, ":9091", cfg.WorkerMetricsAddr)
	require.False(t, cfg.IsProduction())

	logger := NewLogger(cfg)
	require.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestValidateRejectsMissingSalt(t *testing.T) {
	cfg := &Config{JWTSecret: "jwt", SINEncryptionKey: "a2V5"}
	require.EqualError(t, cfg.Validate(), "sin hash salt must be provided")
}
