package user

import (
	"context"
	"mutsamarket/domain"
)

type Repository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (domain.User, error)
}
