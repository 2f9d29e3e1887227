package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	ddl := Schema()
	names := Tables()
	require.Len(t, ddl, 17)
	require.Len(t, names, 17)

	t.Run("ParentsPrecedeChildren", func(t *testing.T) {
		pos := make(map[string]int, len(names))
		for i, name := range names {
			pos[name] = i
		}
		assert.Less(t, pos["Location"], pos["Festival"])
		assert.Less(t, pos["Festival"], pos["FestivalDay"])
		assert.Less(t, pos["FestivalDay"], pos["Event"])
		assert.Less(t, pos["Stage"], pos["Event"])
		assert.Less(t, pos["Event"], pos["Performance"])
		assert.Less(t, pos["Artist"], pos["Performance"])
		assert.Less(t, pos["Performance"], pos["Review"])
		assert.Less(t, pos["Visitor"], pos["Ticket"])
		assert.Less(t, pos["Staff"], pos["Staff_Assignment"])
	})

	t.Run("HintedIndexesExist", func(t *testing.T) {
		byName := make(map[string]string, len(names))
		for i, name := range names {
			byName[name] = ddl[i]
		}
		assert.Contains(t, byName["Performance"], "KEY idx_performance_artist (artist_id)")
		assert.Contains(t, byName["Review"], "KEY idx_review_performance (performance_id)")
		assert.Contains(t, byName["Review"], "KEY idx_review_visitor (visitor_id)")
		assert.Contains(t, byName["Ticket"], "KEY idx_ticket_visitor (visitor_id)")
	})

	t.Run("StorageEngine", func(t *testing.T) {
		for i, stmt := range ddl {
			assert.Contains(t, stmt, "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4", "table %s", names[i])
		}
	})
}

func TestDropStatements(t *testing.T) {
	drops := DropStatements()
	names := Tables()
	require.Len(t, drops, len(names))

	for i, stmt := range drops {
		assert.True(t, strings.HasPrefix(stmt, "DROP TABLE IF EXISTS "), "statement %q", stmt)
		assert.Equal(t, names[len(names)-1-i], strings.TrimPrefix(stmt, "DROP TABLE IF EXISTS "))
	}
}

func TestSchemaReturnsCopies(t *testing.T) {
	first := Schema()
	first[0] = "mutated"
	assert.NotEqual(t, "mutated", Schema()[0])

	tables := Tables()
	tables[0] = "mutated"
	assert.NotEqual(t, "mutated", Tables()[0])
}
