package comment

import (
	"context"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/validation"
)

type CreateCommentHandler struct {
	store *Store
}

type CreateCommentRequest struct {
	ItemID  int64  `params:"itemId" json:"-"`
	Content string `json:"content"`
}

type CreateCommentResponse struct {
	Comment View `json:"comment"`
}

func NewCreateCommentHandler(store *Store) *CreateCommentHandler {
	return &CreateCommentHandler{
		store: store,
	}
}

func (h *CreateCommentHandler) Handle(ctx context.Context, req *CreateCommentRequest) (*CreateCommentResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}

	payload := Payload{Content: req.Content}
	if err := validation.Struct("comment.create", payload); err != nil {
		return nil, err
	}

	created, err := h.store.Enroll(ctx, payload, req.ItemID, principal)
	if err != nil {
		return nil, err
	}

	return &CreateCommentResponse{
		Comment: created,
	}, nil
}
