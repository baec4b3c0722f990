package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Domain constants
const (
	ItemDomain   = "item"
	ItemExchange = "market.item"
)

// Event names
const (
	ItemCreatedEvent       = "item.created"
	ItemUpdatedEvent       = "item.updated"
	ItemDeletedEvent       = "item.deleted"
	ItemImageUploadedEvent = "item.image.uploaded"
	CommentCreatedEvent    = "comment.created"
	CommentUpdatedEvent    = "comment.updated"
	CommentRepliedEvent    = "comment.replied"
	CommentDeletedEvent    = "comment.deleted"
)

// Event versions
const (
	EventVersionV1 = "v1"
)

type ItemCreatedPayload struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Seller         string          `json:"seller"`
	MinPriceWanted decimal.Decimal `json:"minPriceWanted"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type ItemUpdatedPayload struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	MinPriceWanted decimal.Decimal `json:"minPriceWanted"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type ItemDeletedPayload struct {
	ID        int64     `json:"id"`
	Seller    string    `json:"seller"`
	ImageURL  *string   `json:"imageUrl"`
	DeletedAt time.Time `json:"deletedAt"`
}

type ItemImageUploadedPayload struct {
	ItemID    int64     `json:"itemId"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentCreatedPayload struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"itemId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentUpdatedPayload struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"itemId"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CommentRepliedPayload struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"itemId"`
	RepliedBy string    `json:"repliedBy"`
	Outcome   int       `json:"outcome"`
	Reply     string    `json:"reply"`
	RepliedAt time.Time `json:"repliedAt"`
}

type CommentDeletedPayload struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"itemId"`
	Author    string    `json:"author"`
	DeletedAt time.Time `json:"deletedAt"`
}
