package storage

import (
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"ottawa-housing/models"
)

// dialect captures the few places where Postgres and SQLite disagree.
type dialect struct {
	name       string
	driver     string
	idColumn   string
	dateType   string
	numberType string
	stampType  string
	dateExpr   string
	bind       func(n int) string
}

var dialects = map[string]dialect{
	"postgres": {
		name:       "postgres",
		driver:     "postgres",
		idColumn:   "id SERIAL PRIMARY KEY",
		dateType:   "DATE",
		numberType: "DOUBLE PRECISION",
		stampType:  "TIMESTAMPTZ NOT NULL DEFAULT NOW()",
		dateExpr:   "to_char(date, 'YYYY-MM-DD')",
		bind:       func(n int) string { return fmt.Sprintf("$%d", n) },
	},
	"sqlite": {
		name:       "sqlite",
		driver:     "sqlite",
		idColumn:   "id INTEGER PRIMARY KEY AUTOINCREMENT",
		dateType:   "TEXT",
		numberType: "REAL",
		stampType:  "TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP",
		dateExpr:   "date",
		bind:       func(int) string { return "?" },
	},
}

func lookupDialect(name string) (dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return dialect{}, fmt.Errorf("storage: unsupported driver %q", name)
	}
	return d, nil
}

// createTable returns the DDL for one observation table.
func (d dialect) createTable(table string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", table)
	fmt.Fprintf(&b, "\t%s,\n", d.idColumn)
	fmt.Fprintf(&b, "\tdate %s NOT NULL UNIQUE,\n", d.dateType)
	for _, col := range models.Columns(table) {
		fmt.Fprintf(&b, "\t%s %s NULL,\n", col, d.numberType)
	}
	fmt.Fprintf(&b, "\tcreated_at %s\n);\n", d.stampType)
	fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS idx_%s_date ON %s(date);", table, table)
	return b.String()
}

// insertRow returns an insert that leaves an existing row for the date alone.
func (d dialect) insertRow(table string) string {
	cols := append([]string{"date"}, models.Columns(table)...)
	binds := make([]string, len(cols))
	for i := range cols {
		binds[i] = d.bind(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (date) DO NOTHING",
		table, strings.Join(cols, ", "), strings.Join(binds, ", "))
}
