package item

import (
	"context"
	"mutsamarket/pkg/pagination"
)

const DefaultPageSize = 25

type GetItemsHandler struct {
	store *Store
}

type GetItemsRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

type GetItemsResponse = pagination.Page[View]

func NewGetItemsHandler(store *Store) *GetItemsHandler {
	return &GetItemsHandler{
		store: store,
	}
}

func (h *GetItemsHandler) Handle(ctx context.Context, req *GetItemsRequest) (*GetItemsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	page, err := h.store.ReadPage(ctx, req.Page, limit)
	if err != nil {
		return nil, err
	}

	return &page, nil
}

type GetAllItemsHandler struct {
	store *Store
}

type GetAllItemsRequest struct{}

type GetAllItemsResponse struct {
	Items []View `json:"items"`
}

func NewGetAllItemsHandler(store *Store) *GetAllItemsHandler {
	return &GetAllItemsHandler{
		store: store,
	}
}

func (h *GetAllItemsHandler) Handle(ctx context.Context, _ *GetAllItemsRequest) (*GetAllItemsResponse, error) {
	items, err := h.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	return &GetAllItemsResponse{
		Items: items,
	}, nil
}
