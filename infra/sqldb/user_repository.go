package sqldb

import (
	"context"
	"fmt"

	"mutsamarket/domain"
)

func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string) (domain.User, error) {
	u := domain.User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now(),
	}

	query := r.db.Rebind(`
		INSERT INTO users (username, password_hash, created_at)
		VALUES (?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query, u.Username, u.PasswordHash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrDuplicateUsername
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

func (r *Repository) FindUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	query := r.db.Rebind(`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`)

	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		return u, err
	}

	return u, nil
}
