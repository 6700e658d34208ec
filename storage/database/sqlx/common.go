// Package sqlxrepos implements the domain repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"strings"

	"github.com/trezcool/monitoria/core"
)

// orderBy renders an ORDER BY clause from the requested orderings, keeping
// only fields present in the allowed column map. Unknown fields are dropped
// rather than rejected. fallback is used when nothing valid remains.
func orderBy(orderings []core.DBOrdering, allowed map[string]string, fallback string) string {
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		dir := "DESC"
		if ord.Ascending {
			dir = "ASC"
		}
		clauses = append(clauses, col+" "+dir)
	}
	if len(clauses) == 0 {
		if fallback == "" {
			return ""
		}
		return " ORDER BY " + fallback
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}
