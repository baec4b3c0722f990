package sqldb

import (
	"fmt"
	"strings"
	"time"

	"mutsamarket/pkg/config"

	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// Connect opens the database selected by DATABASE_DRIVER.
func Connect(cfg *config.AppConfig) (*sqlx.DB, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		return Open(config.DriverSQLite, cfg.SQLitePath)
	default:
		return Open(config.DriverPostgres, cfg.PostgresDSN())
	}
}

func Open(driver, dsn string) (*sqlx.DB, error) {
	if driver == config.DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// One connection: pragmas are per connection and ":memory:" is per connection too.
		db.SetMaxOpenConns(1)
	} else {
		// With 3 replicas × 15 conns = 45 total connections (safer for default PG max_connections=100)
		db.SetMaxOpenConns(15)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(2 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, nil
}

// sqliteDSN enables foreign keys on every connection the pool opens, so
// ON DELETE CASCADE survives connection recycling.
func sqliteDSN(dsn string) string {
	const foreignKeys = "_pragma=foreign_keys(1)"
	if strings.Contains(dsn, foreignKeys) {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + foreignKeys
	}
	return dsn + "?" + foreignKeys
}
