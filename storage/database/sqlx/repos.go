// Package sqlxrepos implements the domain repositories over Postgres with
// hand-written SQL. Uniqueness invariants live in the schema's UNIQUE
// constraints; this package only maps the resulting driver errors back to the
// domain sentinels.
package sqlxrepos

import (
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/ebdplacar/backend/core"
)

// pq unique_violation
const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}

// condBuilder accumulates SQL conditions, rewriting each ? to the next
// positional parameter.
type condBuilder struct {
	conds []string
	args  []interface{}
}

func (cb *condBuilder) add(cond string, args ...interface{}) {
	for _, arg := range args {
		cb.args = append(cb.args, arg)
		cond = strings.Replace(cond, "?", "$"+strconv.Itoa(len(cb.args)), 1)
	}
	cb.conds = append(cb.conds, cond)
}

func (cb *condBuilder) where() string {
	if len(cb.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(cb.conds, " AND ")
}

func (cb *condBuilder) and() string {
	if len(cb.conds) == 0 {
		return ""
	}
	return " AND " + strings.Join(cb.conds, " AND ")
}

func orderBy(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
