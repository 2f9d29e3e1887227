package pool

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresDSN(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	_, err := New(Config{}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN is required")
}

func TestWithDefaults(t *testing.T) {
	t.Run("fills zero values", func(t *testing.T) {
		cfg := withDefaults(Config{DSN: "root@tcp(localhost:3306)/MusicFestival"})
		assert.Equal(t, 10, cfg.MaxOpenConnections)
		assert.Equal(t, 5, cfg.MaxIdleConnections)
		assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
		assert.Equal(t, 10*time.Minute, cfg.ConnMaxIdleTime)
		assert.Equal(t, 30*time.Second, cfg.ConnectionTimeout)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		cfg := withDefaults(Config{
			DSN:                "root@tcp(localhost:3306)/MusicFestival",
			MaxOpenConnections: 3,
			MaxIdleConnections: 2,
			ConnMaxLifetime:    time.Hour,
			ConnMaxIdleTime:    15 * time.Minute,
			ConnectionTimeout:  5 * time.Second,
		})
		assert.Equal(t, 3, cfg.MaxOpenConnections)
		assert.Equal(t, 2, cfg.MaxIdleConnections)
		assert.Equal(t, time.Hour, cfg.ConnMaxLifetime)
		assert.Equal(t, 15*time.Minute, cfg.ConnMaxIdleTime)
		assert.Equal(t, 5*time.Second, cfg.ConnectionTimeout)
	})
}

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		name        string
		dsn         string
		contains    []string
		notContains []string
	}{
		{
			name:        "password masked",
			dsn:         "root:secret@tcp(localhost:3306)/MusicFestival?parseTime=true",
			contains:    []string{"root", "*****", "localhost:3306", "MusicFestival"},
			notContains: []string{"secret"},
		},
		{
			name:        "no password",
			dsn:         "root@tcp(localhost:3306)/MusicFestival",
			contains:    []string{"root", "MusicFestival"},
			notContains: []string{"*****"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskDSN(tt.dsn)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, avoid := range tt.notContains {
				assert.NotContains(t, got, avoid)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", MaskDSN(""))
	})

	t.Run("short unparseable", func(t *testing.T) {
		assert.Equal(t, "***", MaskDSN("test.db"))
	})

	t.Run("long unparseable keeps edges", func(t *testing.T) {
		got := MaskDSN("completely-unparseable-string")
		assert.Equal(t, "com***ing", got)
	})
}
