package pool

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	t.Run("RoundTripsThroughDriver", func(t *testing.T) {
		dsn := BuildDSN(DSNParams{
			Host:           "db.internal",
			Port:           3307,
			User:           "bench",
			Password:       "s3cret",
			Database:       "MusicFestival",
			Charset:        "utf8mb4",
			ConnectTimeout: 10 * time.Second,
		})

		cfg, err := mysql.ParseDSN(dsn)
		require.NoError(t, err)
		assert.Equal(t, "bench", cfg.User)
		assert.Equal(t, "s3cret", cfg.Passwd)
		assert.Equal(t, "tcp", cfg.Net)
		assert.Equal(t, "db.internal:3307", cfg.Addr)
		assert.Equal(t, "MusicFestival", cfg.DBName)
		assert.True(t, cfg.ParseTime)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
		assert.Equal(t, "utf8mb4", cfg.Params["charset"])
	})

	t.Run("EmptyDatabaseTargetsServerOnly", func(t *testing.T) {
		dsn := BuildDSN(DSNParams{Host: "localhost", Port: 3306, User: "root"})

		cfg, err := mysql.ParseDSN(dsn)
		require.NoError(t, err)
		assert.Empty(t, cfg.DBName)
		assert.NotContains(t, cfg.Params, "charset")
	})

	t.Run("MaskedForLogging", func(t *testing.T) {
		dsn := BuildDSN(DSNParams{
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "festival",
			Database: "MusicFestival",
		})
		assert.NotContains(t, MaskDSN(dsn), "festival@")
		assert.Contains(t, MaskDSN(dsn), "*****")
	})
}
