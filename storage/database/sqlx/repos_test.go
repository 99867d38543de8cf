package sqlxrepos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_condBuilder(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var cb condBuilder
		assert.Empty(t, cb.where())
		assert.Empty(t, cb.and())
	})

	t.Run("where", func(t *testing.T) {
		var cb condBuilder
		cb.add("class_id = ?", "c1")
		cb.add("date >= ?", "2026-01-04")
		assert.Equal(t, " WHERE class_id = $1 AND date >= $2", cb.where())
		assert.Equal(t, []interface{}{"c1", "2026-01-04"}, cb.args)
	})

	// conds appended to a query that already carries a WHERE prefix;
	// seeded args shift the positional numbering.
	t.Run("and with seeded args", func(t *testing.T) {
		cb := condBuilder{args: []interface{}{"s1"}}
		cb.add("sess.date >= ?", "2026-01-04")
		cb.add("sess.date <= ?", "2026-01-11")
		assert.Equal(t, " AND sess.date >= $2 AND sess.date <= $3", cb.and())
		assert.Equal(t, []interface{}{"s1", "2026-01-04", "2026-01-11"}, cb.args)
	})
}
