package item

import (
	"context"
	"mutsamarket/pkg/auth"

	"github.com/shopspring/decimal"
)

type UpdateItemHandler struct {
	store *Store
}

type UpdateItemRequest struct {
	ItemID         int64           `params:"itemId" json:"-"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	MinPriceWanted decimal.Decimal `json:"minPriceWanted"`
}

type UpdateItemResponse struct {
	Item View `json:"item"`
}

func NewUpdateItemHandler(store *Store) *UpdateItemHandler {
	return &UpdateItemHandler{
		store: store,
	}
}

func (h *UpdateItemHandler) Handle(ctx context.Context, req *UpdateItemRequest) (*UpdateItemResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}

	payload := Payload{
		Title:          req.Title,
		Description:    req.Description,
		MinPriceWanted: req.MinPriceWanted,
	}
	if err := payload.validate("item.update"); err != nil {
		return nil, err
	}

	updated, err := h.store.Update(ctx, req.ItemID, payload, principal)
	if err != nil {
		return nil, err
	}

	return &UpdateItemResponse{
		Item: updated,
	}, nil
}
