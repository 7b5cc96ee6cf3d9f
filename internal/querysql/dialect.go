package querysql

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the placeholder style of compiled statements.
// Statement text is otherwise identical across dialects.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

// DialectForDriver maps a database/sql driver name to its Dialect.
func DialectForDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
}

// Rebind rewrites ? placeholders into the dialect's style.
// Compiled SQL never contains a literal ?, since values are always bound,
// so a plain scan is sufficient.
func (d Dialect) Rebind(sql string) string {
	if d != Postgres {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) + 8)
	n := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] != '?' {
			b.WriteByte(sql[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
