package sqlstore

// Blank-imported so database/sql.Open recognizes the "postgres", "mysql",
// and "sqlite" dialect names dialect/sql.Open/OpenDB pass straight through.
import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)
