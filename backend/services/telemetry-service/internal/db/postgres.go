package db

import (
	"database/sql"
	"time"

	libdb "pltsmonitor/backend/libs/db"
)

// NewPostgres reuses shared DB initializer. The ping is bounded by the store timeout.
func NewPostgres(dsn string, pingTimeout time.Duration) (*sql.DB, error) {
	return libdb.NewPostgresDB(dsn, libdb.PoolOptions{PingTimeout: pingTimeout})
}
