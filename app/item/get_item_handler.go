package item

import (
	"context"
)

type GetItemHandler struct {
	store *Store
}

type GetItemRequest struct {
	ItemID int64 `params:"itemId"`
}

type GetItemResponse struct {
	Item View `json:"item"`
}

func NewGetItemHandler(store *Store) *GetItemHandler {
	return &GetItemHandler{
		store: store,
	}
}

func (h *GetItemHandler) Handle(ctx context.Context, req *GetItemRequest) (*GetItemResponse, error) {
	found, err := h.store.ReadOne(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	return &GetItemResponse{
		Item: found,
	}, nil
}
