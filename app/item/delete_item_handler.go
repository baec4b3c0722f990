package item

import (
	"context"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/httperror"
)

type DeleteItemHandler struct {
	store *Store
}

type DeleteItemRequest struct {
	ItemID int64 `params:"itemId"`
}

type DeleteItemResponse struct{}

func NewDeleteItemHandler(store *Store) *DeleteItemHandler {
	return &DeleteItemHandler{
		store: store,
	}
}

func (h *DeleteItemHandler) Handle(ctx context.Context, req *DeleteItemRequest) (*DeleteItemResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}

	deleted, err := h.store.Delete(ctx, req.ItemID, principal)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, httperror.NotFound("item.destroy.not_found", "Item not found", nil)
	}

	return nil, httperror.NoContent("item.destroy.success", "Item deleted successfully", nil)
}
