package comment

import (
	"mutsamarket/domain"
	"time"
)

type View struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"itemId"`
	Content   string    `json:"content"`
	Reply     *string   `json:"reply"`
	Writer    string    `json:"writer"`
	CreatedAt time.Time `json:"createdAt"`
}

func ViewOf(c domain.Comment) View {
	return View{
		ID:        c.ID,
		ItemID:    c.ItemID,
		Content:   c.Content,
		Reply:     c.Reply,
		Writer:    c.Username,
		CreatedAt: c.CreatedAt,
	}
}

type Payload struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type ReplyPayload struct {
	Reply string `json:"reply" validate:"required,max=2000"`
}
