package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mutsamarket/domain"
)

const itemSelect = `
	SELECT
		i.id, i.title, i.description, i.min_price_wanted, i.status, i.image_url,
		i.user_id, u.username, i.created_at, i.updated_at
	FROM sales_items i
	JOIN users u ON u.id = i.user_id`

func (r *Repository) CreateItem(ctx context.Context, item *domain.SalesItem) error {
	item.CreatedAt = now()
	item.UpdatedAt = item.CreatedAt

	query := r.db.Rebind(`
		INSERT INTO sales_items (
			title, description, min_price_wanted, status, image_url,
			user_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		item.Title, item.Description, item.MinPriceWanted, item.Status, item.ImageURL,
		item.UserID, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("insert sales item: %w", err)
	}

	return nil
}

func (r *Repository) GetItem(ctx context.Context, id int64) (domain.SalesItem, error) {
	var i domain.SalesItem
	query := r.db.Rebind(itemSelect + ` WHERE i.id = ?`)

	err := r.db.GetContext(ctx, &i, query, id)
	if err != nil {
		return i, err
	}

	return i, nil
}

// GetUserItem finds an item by id owned by username.
func (r *Repository) GetUserItem(ctx context.Context, id int64, username string) (domain.SalesItem, error) {
	var i domain.SalesItem
	query := r.db.Rebind(itemSelect + ` WHERE i.id = ? AND u.username = ?`)

	err := r.db.GetContext(ctx, &i, query, id, username)
	if err != nil {
		return i, err
	}

	return i, nil
}

func (r *Repository) GetAllItems(ctx context.Context) ([]domain.SalesItem, error) {
	items := make([]domain.SalesItem, 0)

	err := r.db.SelectContext(ctx, &items, itemSelect+` ORDER BY i.id ASC`)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) GetItems(ctx context.Context, limit, offset int) ([]domain.SalesItem, error) {
	items := make([]domain.SalesItem, 0)
	query := r.db.Rebind(itemSelect + ` ORDER BY i.id ASC LIMIT ? OFFSET ?`)

	err := r.db.SelectContext(ctx, &items, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) CountItems(ctx context.Context) (int, error) {
	var count int

	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sales_items`)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// UpdateUserItem overwrites title, description and min price of an item owned
// by username. It reports whether a row matched.
func (r *Repository) UpdateUserItem(ctx context.Context, item domain.SalesItem, username string) (bool, error) {
	query := r.db.Rebind(`
		UPDATE sales_items SET
			title = ?,
			description = ?,
			min_price_wanted = ?,
			updated_at = ?
		WHERE id = ? AND ` + ownerPredicate)

	res, err := r.db.ExecContext(ctx, query,
		item.Title, item.Description, item.MinPriceWanted, now(),
		item.ID, username,
	)
	if err != nil {
		return false, fmt.Errorf("update sales item: %w", err)
	}

	return affected(res)
}

func (r *Repository) SetUserItemImage(ctx context.Context, id int64, username, imageURL string) (bool, error) {
	query := r.db.Rebind(`
		UPDATE sales_items SET image_url = ?, updated_at = ?
		WHERE id = ? AND ` + ownerPredicate)

	res, err := r.db.ExecContext(ctx, query, imageURL, now(), id, username)
	if err != nil {
		return false, fmt.Errorf("update sales item image: %w", err)
	}

	return affected(res)
}

// DeleteUserItem removes an item owned by username and returns its image URL.
func (r *Repository) DeleteUserItem(ctx context.Context, id int64, username string) (*string, bool, error) {
	query := r.db.Rebind(`DELETE FROM sales_items WHERE id = ? AND ` + ownerPredicate + ` RETURNING image_url`)

	var imageURL sql.NullString
	err := r.db.QueryRowxContext(ctx, query, id, username).Scan(&imageURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("delete sales item: %w", err)
	}

	if !imageURL.Valid {
		return nil, true, nil
	}
	return &imageURL.String, true, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
