package converter

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectRows(t *testing.T) {
	t.Run("normalizes byte slices and keeps column order", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT").WillReturnRows(
			sqlmock.NewRows([]string{"name", "total_revenue", "tickets_sold"}).
				AddRow([]byte("Pop Parade"), []byte("1234.50"), int64(42)).
				AddRow([]byte("Jazz Nights"), nil, int64(17)))

		rows, err := db.Query("SELECT name, total_revenue, tickets_sold FROM t")
		require.NoError(t, err)
		defer rows.Close()

		result, err := New(zerolog.Nop()).CollectRows(rows)
		require.NoError(t, err)

		assert.Equal(t, []string{"name", "total_revenue", "tickets_sold"}, result.Columns)
		require.Len(t, result.Rows, 2)
		assert.Equal(t, "Pop Parade", result.Rows[0]["name"])
		assert.Equal(t, "1234.50", result.Rows[0]["total_revenue"])
		assert.Equal(t, int64(42), result.Rows[0]["tickets_sold"])
		assert.Nil(t, result.Rows[1]["total_revenue"])

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result keeps header", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"a", "b"}))

		rows, err := db.Query("SELECT a, b FROM t")
		require.NoError(t, err)
		defer rows.Close()

		result, err := New(zerolog.Nop()).CollectRows(rows)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, result.Columns)
		assert.Empty(t, result.Rows)
		assert.Equal(t, 0, result.RowCount())
	})

	t.Run("iteration error surfaces", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT").WillReturnRows(
			sqlmock.NewRows([]string{"a"}).
				AddRow(int64(1)).
				AddRow(int64(2)).
				RowError(1, fmt.Errorf("connection reset")))

		rows, err := db.Query("SELECT a FROM t")
		require.NoError(t, err)
		defer rows.Close()

		_, err = New(zerolog.Nop()).CollectRows(rows)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "iterating result rows")
	})
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "abc", NormalizeValue([]byte("abc")))
	assert.Equal(t, int64(7), NormalizeValue(int64(7)))
	assert.Nil(t, NormalizeValue(nil))
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  float64
		ok    bool
	}{
		{"float64", 3.14, 3.14, true},
		{"float32", float32(2.5), 2.5, true},
		{"int", 7, 7, true},
		{"int64", int64(42), 42, true},
		{"uint64", uint64(9), 9, true},
		{"numeric bytes", []byte("1234.5"), 1234.5, true},
		{"numeric string", "99", 99, true},
		{"text string", "Rock", 0, false},
		{"nil", nil, 0, false},
		{"time", time.Now(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil", nil, ""},
		{"string", "Rock", "Rock"},
		{"bytes", []byte("Pop"), "Pop"},
		{"int64", int64(42), "42"},
		{"float64", 3.5, "3.5"},
		{"bool", true, "true"},
		{"date only", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), "2024-07-15"},
		{"datetime", time.Date(2024, 7, 15, 18, 30, 0, 0, time.UTC), "2024-07-15 18:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToString(tt.value))
		})
	}
}
