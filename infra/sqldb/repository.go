package sqldb

import (
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping() error {
	return r.db.Ping()
}

// GetPoolStats returns current connection pool statistics
func (r *Repository) GetPoolStats() map[string]interface{} {
	stats := r.db.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,                   // How many times waited for connection
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(), // Total time spent waiting
		"max_idle_closed":      stats.MaxIdleClosed,               // Connections closed due to idle
		"max_lifetime_closed":  stats.MaxLifetimeClosed,           // Connections closed due to max lifetime
	}
}

// Postgres keeps microseconds.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ownerPredicate restricts a row to the user with the given username.
const ownerPredicate = `user_id = (SELECT id FROM users WHERE username = ?)`
