package domain

import "time"

type Comment struct {
	ID      int64   `db:"id" json:"id"`
	ItemID  int64   `db:"item_id" json:"itemId"`
	UserID  int64   `db:"user_id" json:"-"`
	Content string  `db:"content" json:"content"`
	Reply   *string `db:"reply" json:"reply"`
	// Username of the author, joined from users.
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (c Comment) HasReply() bool {
	return c.Reply != nil
}
