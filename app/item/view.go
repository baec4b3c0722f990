package item

import (
	"mutsamarket/domain"
	"mutsamarket/pkg/httperror"
	"mutsamarket/pkg/validation"

	"github.com/shopspring/decimal"
)

// View is the read projection of a sales item.
type View struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	MinPriceWanted decimal.Decimal `json:"minPriceWanted"`
	Status         string          `json:"status"`
	ImageURL       *string         `json:"imageUrl"`
	Seller         string          `json:"seller"`
}

func ViewOf(i domain.SalesItem) View {
	return View{
		ID:             i.ID,
		Title:          i.Title,
		Description:    i.Description,
		MinPriceWanted: i.MinPriceWanted,
		Status:         i.Status,
		ImageURL:       i.ImageURL,
		Seller:         i.Username,
	}
}

// Payload carries the writable fields of an item.
type Payload struct {
	Title          string          `json:"title" validate:"required,max=200"`
	Description    string          `json:"description" validate:"max=5000"`
	MinPriceWanted decimal.Decimal `json:"minPriceWanted"`
}

func (p Payload) validate(scope string) error {
	if err := validation.Struct(scope, p); err != nil {
		return err
	}

	if p.MinPriceWanted.IsNegative() {
		return httperror.BadRequest(
			scope+".validation_failed",
			"Validation failed for the request",
			"minPriceWanted must not be negative",
		)
	}

	return nil
}
