package comment

import (
	"context"
	"mutsamarket/pkg/pagination"
)

type GetCommentsHandler struct {
	store *Store
}

type GetCommentsRequest struct {
	ItemID int64 `params:"itemId"`
	Page   int   `query:"page"`
}

type GetCommentsResponse = pagination.Page[View]

func NewGetCommentsHandler(store *Store) *GetCommentsHandler {
	return &GetCommentsHandler{
		store: store,
	}
}

func (h *GetCommentsHandler) Handle(ctx context.Context, req *GetCommentsRequest) (*GetCommentsResponse, error) {
	page, err := h.store.ReadPage(ctx, req.Page, req.ItemID)
	if err != nil {
		return nil, err
	}

	return &page, nil
}
