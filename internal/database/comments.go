package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	result, err := db.q.ExecContext(ctx,
		`INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?)`,
		comment.Text, comment.ItemID, comment.AuthorID, formatTime(comment.Created))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("comment by user %d on item %d: %w", comment.AuthorID, comment.ItemID, ErrDuplicateComment)
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	return nil
}

func (db *DB) CommentExists(ctx context.Context, authorID, itemID int64) (bool, error) {
	var exists bool
	err := db.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM comments WHERE author_id = ? AND item_id = ?)`,
		authorID, itemID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check comment: %w", err)
	}
	return exists, nil
}

// GetCommentsByItemIDs groups comments by item, oldest first, with author names resolved.
func (db *DB) GetCommentsByItemIDs(ctx context.Context, itemIDs []int64) (map[int64][]*models.Comment, error) {
	result := make(map[int64][]*models.Comment, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	in, args := inClause(itemIDs)
	rows, err := db.q.QueryContext(ctx,
		`SELECT c.id, c.text, c.item_id, c.author_id, u.name, c.created
         FROM comments c JOIN users u ON u.id = c.author_id
         WHERE c.item_id IN `+in+` ORDER BY c.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c       models.Comment
			created string
		)
		if err := rows.Scan(&c.ID, &c.Text, &c.ItemID, &c.AuthorID, &c.AuthorName, &created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if c.Created, err = parseTime(created); err != nil {
			return nil, err
		}
		result[c.ItemID] = append(result[c.ItemID], &c)
	}
	return result, rows.Err()
}
