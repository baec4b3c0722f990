package comment

import (
	"context"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/httperror"
	"mutsamarket/pkg/validation"
)

type ReplyCommentHandler struct {
	store *Store
}

type ReplyCommentRequest struct {
	ItemID    int64  `params:"itemId" json:"-"`
	CommentID int64  `params:"commentId" json:"-"`
	Reply     string `json:"reply"`
}

type ReplyCommentResponse struct {
	Outcome ReplyOutcome `json:"outcome"`
	Message string       `json:"message"`
}

func NewReplyCommentHandler(store *Store) *ReplyCommentHandler {
	return &ReplyCommentHandler{
		store: store,
	}
}

func (h *ReplyCommentHandler) Handle(ctx context.Context, req *ReplyCommentRequest) (*ReplyCommentResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}

	payload := ReplyPayload{Reply: req.Reply}
	if err := validation.Struct("comment.reply", payload); err != nil {
		return nil, err
	}

	outcome, err := h.store.AddReply(ctx, req.ItemID, req.CommentID, payload, principal)
	if err != nil {
		return nil, err
	}

	switch outcome {
	case ReplySetByAuthor:
		return &ReplyCommentResponse{Outcome: outcome, Message: "Reply added"}, nil
	case ReplyOverwrittenByOwner:
		return &ReplyCommentResponse{Outcome: outcome, Message: "Reply updated"}, nil
	default:
		return nil, httperror.Forbidden("comment.reply.forbidden", "You are not allowed to reply to this comment", nil)
	}
}
