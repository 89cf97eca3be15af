package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shareit/internal/models"
)

const requestColumns = `id, description, requester_id, created_at`

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	query := `INSERT INTO requests (description, requester_id, created_at) VALUES (?, ?, ?)`
	res, err := db.q.ExecContext(ctx, query, request.Description, request.RequesterID, toMicros(request.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	row := db.q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)
	request, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return request, nil
}

// GetRequestsByRequester returns the requester's own requests, newest first.
func (db *DB) GetRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	return db.queryRequests(ctx, `SELECT `+requestColumns+` FROM requests
              WHERE requester_id = ? ORDER BY created_at DESC, id DESC`, requesterID)
}

// GetRequestsNotByRequester returns everybody else's requests, newest first.
func (db *DB) GetRequestsNotByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	return db.queryRequests(ctx, `SELECT `+requestColumns+` FROM requests
              WHERE requester_id <> ? ORDER BY created_at DESC, id DESC`, requesterID)
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*models.ItemRequest, error) {
	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ItemRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func scanRequest(s scanner) (*models.ItemRequest, error) {
	var (
		r       models.ItemRequest
		created int64
	)
	if err := s.Scan(&r.ID, &r.Description, &r.RequesterID, &created); err != nil {
		return nil, err
	}
	r.CreatedAt = fromMicros(created)
	return &r, nil
}
