package comment

import (
	"context"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/validation"
)

type UpdateCommentHandler struct {
	store *Store
}

type UpdateCommentRequest struct {
	ItemID    int64  `params:"itemId" json:"-"`
	CommentID int64  `params:"commentId" json:"-"`
	Content   string `json:"content"`
}

type UpdateCommentResponse struct {
	Message string `json:"message"`
}

func NewUpdateCommentHandler(store *Store) *UpdateCommentHandler {
	return &UpdateCommentHandler{
		store: store,
	}
}

func (h *UpdateCommentHandler) Handle(ctx context.Context, req *UpdateCommentRequest) (*UpdateCommentResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}

	payload := Payload{Content: req.Content}
	if err := validation.Struct("comment.update", payload); err != nil {
		return nil, err
	}

	if err := h.store.Update(ctx, req.ItemID, req.CommentID, payload, principal); err != nil {
		return nil, err
	}

	return &UpdateCommentResponse{
		Message: "Comment updated",
	}, nil
}
