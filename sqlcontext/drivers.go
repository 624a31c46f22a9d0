package sqlcontext

// Drivers for every supported dialect register themselves with database/sql.
import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)
