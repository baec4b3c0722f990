// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"mutsamarket/domain"
	"mutsamarket/infra/sqldb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// NewRepository returns a repository over a migrated in-memory SQLite database.
func NewRepository(t *testing.T) *sqldb.Repository {
	t.Helper()

	db, err := sqldb.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqldb.Migrate(context.Background(), db))

	return sqldb.NewRepository(db)
}

// CreateUser stores a user whose password is "password".
func CreateUser(t *testing.T, r *sqldb.Repository, username string) domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	u, err := r.CreateUser(context.Background(), username, string(hash))
	require.NoError(t, err)

	return u
}

func CreateItem(t *testing.T, r *sqldb.Repository, owner domain.User, title string) domain.SalesItem {
	t.Helper()

	item := domain.SalesItem{
		Title:          title,
		Description:    "about " + title,
		MinPriceWanted: decimal.NewFromInt(10000),
		Status:         domain.StatusOnSale,
		UserID:         owner.ID,
	}
	require.NoError(t, r.CreateItem(context.Background(), &item))

	return item
}
