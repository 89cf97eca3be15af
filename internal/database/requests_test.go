package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequests(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	older := &models.ItemRequest{Description: "need a drill", RequesterID: 1, CreatedAt: base}
	newer := &models.ItemRequest{Description: "need a ladder", RequesterID: 1, CreatedAt: base.Add(time.Hour)}
	foreign := &models.ItemRequest{Description: "need a saw", RequesterID: 2, CreatedAt: base}
	for _, r := range []*models.ItemRequest{older, newer, foreign} {
		require.NoError(t, db.CreateRequest(ctx, r))
	}

	got, err := db.GetRequest(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older, got)

	_, err = db.GetRequest(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	own, err := db.GetRequestsByRequester(ctx, 1)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, newer.ID, own[0].ID)
	assert.Equal(t, older.ID, own[1].ID)

	others, err := db.GetRequestsNotByRequester(ctx, 1)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, foreign.ID, others[0].ID)
}
