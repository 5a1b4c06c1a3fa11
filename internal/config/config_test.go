package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "registration", cfg.RegistrationPackageCode)
	assert.Equal(t, 24*time.Hour, cfg.CancellationWindow)
	assert.Equal(t, 10*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.False(t, cfg.S3.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("CANCELLATION_WINDOW", "12h")
	t.Setenv("GYM_TIMEZONE", "Asia/Jakarta")
	t.Setenv("RATE_LIMIT_BURST", "3")
	t.Setenv("S3_BUCKET", "catalog")
	t.Setenv("S3_ACCESS_KEY_ID", "key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, 12*time.Hour, cfg.CancellationWindow)
	assert.Equal(t, "Asia/Jakarta", cfg.Location.String())
	assert.Equal(t, 3, cfg.RateLimitBurst)
	assert.True(t, cfg.S3.Enabled())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad duration", "CANCELLATION_WINDOW", "tomorrow"},
		{"bad timezone", "GYM_TIMEZONE", "Mars/Olympus"},
		{"bad driver", "STORAGE_DRIVER", "mongo"},
		{"bad int", "RATE_LIMIT_BURST", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
