package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateRequest(ctx context.Context, req *models.ItemRequest) error {
	result, err := db.q.ExecContext(ctx,
		`INSERT INTO item_requests (description, requester_id, created) VALUES (?, ?, ?)`,
		req.Description, req.RequesterID, formatTime(req.Created))
	if err != nil {
		return fmt.Errorf("failed to create item request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	return nil
}

func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	row := db.q.QueryRowContext(ctx,
		`SELECT id, description, requester_id, created FROM item_requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if err != nil {
		return nil, notFound(err, "item request", id)
	}
	return req, nil
}

func (db *DB) GetRequestsByRequester(ctx context.Context, requesterID int64, page models.Page) ([]*models.ItemRequest, error) {
	return db.queryRequests(ctx, `SELECT id, description, requester_id, created FROM item_requests
              WHERE requester_id = ? ORDER BY created DESC, id DESC LIMIT ? OFFSET ?`,
		requesterID, page.Size, page.From)
}

func (db *DB) GetRequestsExcludingRequester(ctx context.Context, requesterID int64, page models.Page) ([]*models.ItemRequest, error) {
	return db.queryRequests(ctx, `SELECT id, description, requester_id, created FROM item_requests
              WHERE requester_id <> ? ORDER BY created DESC, id DESC LIMIT ? OFFSET ?`,
		requesterID, page.Size, page.From)
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...any) ([]*models.ItemRequest, error) {
	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query item requests: %w", err)
	}
	defer rows.Close()

	reqs := make([]*models.ItemRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item request: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func scanRequest(s scanner) (*models.ItemRequest, error) {
	var (
		req     models.ItemRequest
		created string
	)
	if err := s.Scan(&req.ID, &req.Description, &req.RequesterID, &created); err != nil {
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	req.Created = t
	return &req, nil
}
