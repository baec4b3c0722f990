package sqldb

import (
	"context"
	"fmt"

	"mutsamarket/domain"
)

const commentSelect = `
	SELECT
		c.id, c.item_id, c.user_id, c.content, c.reply, u.username,
		c.created_at, c.updated_at
	FROM comments c
	JOIN users u ON u.id = c.user_id`

func (r *Repository) CreateComment(ctx context.Context, comment *domain.Comment) error {
	comment.CreatedAt = now()
	comment.UpdatedAt = comment.CreatedAt

	query := r.db.Rebind(`
		INSERT INTO comments (item_id, user_id, content, reply, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		comment.ItemID, comment.UserID, comment.Content, comment.Reply,
		comment.CreatedAt, comment.UpdatedAt,
	).Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

func (r *Repository) GetItemComments(ctx context.Context, itemID int64, limit, offset int) ([]domain.Comment, error) {
	comments := make([]domain.Comment, 0)
	query := r.db.Rebind(commentSelect + ` WHERE c.item_id = ? ORDER BY c.id ASC LIMIT ? OFFSET ?`)

	err := r.db.SelectContext(ctx, &comments, query, itemID, limit, offset)
	if err != nil {
		return nil, err
	}

	return comments, nil
}

func (r *Repository) CountItemComments(ctx context.Context, itemID int64) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM comments WHERE item_id = ?`)

	err := r.db.GetContext(ctx, &count, query, itemID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) GetItemComment(ctx context.Context, itemID, commentID int64) (domain.Comment, error) {
	var c domain.Comment
	query := r.db.Rebind(commentSelect + ` WHERE c.item_id = ? AND c.id = ?`)

	err := r.db.GetContext(ctx, &c, query, itemID, commentID)
	if err != nil {
		return c, err
	}

	return c, nil
}

func (r *Repository) UpdateUserComment(ctx context.Context, commentID, itemID int64, username, content string) (bool, error) {
	query := r.db.Rebind(`
		UPDATE comments SET content = ?, updated_at = ?
		WHERE id = ? AND item_id = ? AND ` + ownerPredicate)

	res, err := r.db.ExecContext(ctx, query, content, now(), commentID, itemID, username)
	if err != nil {
		return false, fmt.Errorf("update comment: %w", err)
	}

	return affected(res)
}

// SetAuthorReply sets the first reply of a comment. Only the comment's author
// matches, and only while the reply is still empty.
func (r *Repository) SetAuthorReply(ctx context.Context, commentID, itemID int64, username, reply string) (bool, error) {
	query := r.db.Rebind(`
		UPDATE comments SET reply = ?, updated_at = ?
		WHERE id = ? AND item_id = ? AND reply IS NULL AND ` + ownerPredicate)

	res, err := r.db.ExecContext(ctx, query, reply, now(), commentID, itemID, username)
	if err != nil {
		return false, fmt.Errorf("set author reply: %w", err)
	}

	return affected(res)
}

// SetOwnerReply overwrites the reply of a comment when username owns the item.
func (r *Repository) SetOwnerReply(ctx context.Context, commentID, itemID int64, username, reply string) (bool, error) {
	query := r.db.Rebind(`
		UPDATE comments SET reply = ?, updated_at = ?
		WHERE id = ? AND item_id = ? AND EXISTS (
			SELECT 1 FROM sales_items i
			JOIN users u ON u.id = i.user_id
			WHERE i.id = comments.item_id AND u.username = ?
		)`)

	res, err := r.db.ExecContext(ctx, query, reply, now(), commentID, itemID, username)
	if err != nil {
		return false, fmt.Errorf("set owner reply: %w", err)
	}

	return affected(res)
}

func (r *Repository) DeleteUserComment(ctx context.Context, commentID, itemID int64, username string) (bool, error) {
	query := r.db.Rebind(`DELETE FROM comments WHERE id = ? AND item_id = ? AND ` + ownerPredicate)

	res, err := r.db.ExecContext(ctx, query, commentID, itemID, username)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}

	return affected(res)
}
