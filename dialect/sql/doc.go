// Package sql wraps database/sql behind the dialect.Driver interface and
// tracks query statistics for the projection runner's sqlstore DataSource.
//
// # Driver
//
// Driver wraps a database/sql.DB (or an already-open database/sql.DB/Tx via
// Conn) and exposes the Exec/Query/Tx/Close/Dialect methods dialect.Driver
// requires:
//
//	import "github.com/syssam/filterql/dialect"
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// # Session variables
//
// WithVar/WithIntVar attach per-request session variables (e.g. a Postgres
// search_path) that are SET before every statement run against a context
// carrying them. On a pooled *sql.DB connection they are reset afterwards
// (RESET on Postgres, SET ... = NULL on MySQL); SQLite connections and
// statements run inside a Tx get no reset.
//
// # Statistics
//
// QueryStats accumulates counters (total queries/execs, slow-query count,
// error count, total duration) across a StatsDriver's lifetime;
// sqlstore.Store.DriverStats returns a snapshot of them when the Store was
// built over a StatsDriver. project.Stats is counted by the Runner itself
// and is not fed from QueryStats.
package sql
