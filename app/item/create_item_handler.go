package item

import (
	"context"
	"mutsamarket/pkg/auth"

	"github.com/shopspring/decimal"
)

type CreateItemHandler struct {
	store *Store
}

type CreateItemRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	MinPriceWanted decimal.Decimal `json:"minPriceWanted"`
}

type CreateItemResponse struct {
	Item View `json:"item"`
}

func NewCreateItemHandler(store *Store) *CreateItemHandler {
	return &CreateItemHandler{
		store: store,
	}
}

func (h *CreateItemHandler) Handle(ctx context.Context, req *CreateItemRequest) (*CreateItemResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}

	payload := Payload(*req)
	if err := payload.validate("item.create"); err != nil {
		return nil, err
	}

	created, err := h.store.Enroll(ctx, payload, principal)
	if err != nil {
		return nil, err
	}

	return &CreateItemResponse{
		Item: created,
	}, nil
}
