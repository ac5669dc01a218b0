package copyin

import (
	"strings"

	"github.com/jackc/pgx/v5"
)

// BuildCommand returns the COPY statement for a binary load of columns into
// table, qualified by schema when it is not empty. Identifiers are quoted,
// the schema included, so all names are case-sensitive: schema "Sales" targets
// the schema named Sales, not sales.
func BuildCommand(schema, table string, columns []string) string {
	target := pgx.Identifier{table}
	if schema != "" {
		target = pgx.Identifier{schema, table}
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}

	var b strings.Builder
	b.WriteString("COPY ")
	b.WriteString(target.Sanitize())
	b.WriteString(" (")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString(") FROM STDIN BINARY;")
	return b.String()
}
