package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequests(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	alice := s.user(t, "Alice", "alice@example.com")
	bob := s.user(t, "Bob", "bob@example.com")

	_, err := s.requests.CreateRequest(ctx, alice.ID, " ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.requests.CreateRequest(ctx, 999, "A ladder")
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := s.requests.CreateRequest(ctx, alice.ID, "A ladder")
	require.NoError(t, err)
	assert.True(t, first.Created.Equal(fixedNow))
	assert.NotNil(t, first.Items)
	assert.Empty(t, first.Items)

	s.clock.Advance(time.Minute)
	second, err := s.requests.CreateRequest(ctx, alice.ID, "A tent")
	require.NoError(t, err)

	rid := first.ID
	answer, err := s.items.CreateItem(ctx, bob.ID, &models.Item{
		Name: "Ladder", Description: "Three metres", Available: true, RequestID: &rid,
	})
	require.NoError(t, err)

	t.Run("Own", func(t *testing.T) {
		own, err := s.requests.GetOwnRequests(ctx, alice.ID, models.DefaultPage())
		require.NoError(t, err)
		require.Len(t, own, 2)
		assert.Equal(t, second.ID, own[0].ID)
		assert.Equal(t, first.ID, own[1].ID)
		assert.Empty(t, own[0].Items)
		require.Len(t, own[1].Items, 1)
		assert.Equal(t, answer.ID, own[1].Items[0].ID)
		assert.Equal(t, bob.ID, own[1].Items[0].OwnerID)
		assert.Equal(t, first.ID, own[1].Items[0].RequestID)
	})

	t.Run("Others", func(t *testing.T) {
		others, err := s.requests.GetOtherRequests(ctx, bob.ID, models.Page{From: 1, Size: 10})
		require.NoError(t, err)
		require.Len(t, others, 1)
		assert.Equal(t, first.ID, others[0].ID)

		none, err := s.requests.GetOtherRequests(ctx, alice.ID, models.DefaultPage())
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("ByID", func(t *testing.T) {
		got, err := s.requests.GetRequest(ctx, bob.ID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "A ladder", got.Description)
		require.Len(t, got.Items, 1)

		_, err = s.requests.GetRequest(ctx, bob.ID, 404)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.requests.GetRequest(ctx, 999, first.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
