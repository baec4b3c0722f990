package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusOnSale is the status every item is created with.
const StatusOnSale = "on sale"

type SalesItem struct {
	ID             int64           `db:"id" json:"id"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	MinPriceWanted decimal.Decimal `db:"min_price_wanted" json:"minPriceWanted"`
	Status         string          `db:"status" json:"status"`
	ImageURL       *string         `db:"image_url" json:"imageUrl"`
	UserID         int64           `db:"user_id" json:"-"`
	// Username of the owner, joined from users.
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
