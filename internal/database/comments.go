package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO comments (item_id, author_id, text, created_at) VALUES (?, ?, ?, ?)`
	res, err := db.q.ExecContext(ctx, query, comment.ItemID, comment.AuthorID, comment.Text, toMicros(comment.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	return nil
}

// GetCommentsByItem returns comments in creation order with the author name filled in.
func (db *DB) GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	query := `SELECT c.id, c.item_id, c.author_id, COALESCE(u.name, ''), c.text, c.created_at
              FROM comments c
              LEFT JOIN users u ON u.id = c.author_id
              WHERE c.item_id = ?
              ORDER BY c.created_at, c.id`
	rows, err := db.q.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var (
			c       models.Comment
			created int64
		)
		if err := rows.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Text, &created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.CreatedAt = fromMicros(created)
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
