package comment

import (
	"context"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/httperror"
)

type DeleteCommentHandler struct {
	store *Store
}

type DeleteCommentRequest struct {
	ItemID    int64 `params:"itemId"`
	CommentID int64 `params:"commentId"`
}

type DeleteCommentResponse struct{}

func NewDeleteCommentHandler(store *Store) *DeleteCommentHandler {
	return &DeleteCommentHandler{
		store: store,
	}
}

func (h *DeleteCommentHandler) Handle(ctx context.Context, req *DeleteCommentRequest) (*DeleteCommentResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}

	deleted, err := h.store.Delete(ctx, req.ItemID, req.CommentID, principal)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, httperror.NotFound("comment.destroy.not_found", "Comment not found", nil)
	}

	return nil, httperror.NoContent("comment.destroy.success", "Comment deleted successfully", nil)
}
