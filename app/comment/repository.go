package comment

import (
	"context"
	"mutsamarket/domain"
	"mutsamarket/pkg/auth"
)

// Repository is keyed by (commentId, itemId, username) for every write, so an
// ownership mismatch is indistinguishable from a missing row.
type Repository interface {
	GetItem(ctx context.Context, id int64) (domain.SalesItem, error)
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetItemComments(ctx context.Context, itemID int64, limit, offset int) ([]domain.Comment, error)
	CountItemComments(ctx context.Context, itemID int64) (int, error)
	GetItemComment(ctx context.Context, itemID, commentID int64) (domain.Comment, error)
	UpdateUserComment(ctx context.Context, commentID, itemID int64, username, content string) (bool, error)
	SetAuthorReply(ctx context.Context, commentID, itemID int64, username, reply string) (bool, error)
	SetOwnerReply(ctx context.Context, commentID, itemID int64, username, reply string) (bool, error)
	DeleteUserComment(ctx context.Context, commentID, itemID int64, username string) (bool, error)
}

type UserResolver interface {
	Resolve(ctx context.Context, principal auth.Principal) (domain.User, error)
}
