package item

import (
	"context"
	"mutsamarket/domain"
	"mutsamarket/pkg/auth"
)

type Repository interface {
	CreateItem(ctx context.Context, item *domain.SalesItem) error
	GetItem(ctx context.Context, id int64) (domain.SalesItem, error)
	GetUserItem(ctx context.Context, id int64, username string) (domain.SalesItem, error)
	GetAllItems(ctx context.Context) ([]domain.SalesItem, error)
	GetItems(ctx context.Context, limit, offset int) ([]domain.SalesItem, error)
	CountItems(ctx context.Context) (int, error)
	UpdateUserItem(ctx context.Context, item domain.SalesItem, username string) (bool, error)
	SetUserItemImage(ctx context.Context, id int64, username, imageURL string) (bool, error)
	DeleteUserItem(ctx context.Context, id int64, username string) (*string, bool, error)
}

type UserResolver interface {
	Resolve(ctx context.Context, principal auth.Principal) (domain.User, error)
}

// ImageStore persists uploaded images under slash separated keys.
type ImageStore interface {
	Prepare(ctx context.Context, dir string) error
	Put(ctx context.Context, key string, data []byte) error
}
