package repository_test

import (
	"context"
	"testing"
	"time"

	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/repository"
	apperrors "go-qr-ticketing/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_Create(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewEventRepository(getTestDB())
	ctx := context.Background()

	desc := "Open air"
	loc := "Taipei Arena"
	event := &model.Event{
		EventID:     uuid.New(),
		Name:        "Summer Fest 2026",
		Description: &desc,
		Date:        time.Now().Add(30 * 24 * time.Hour),
		Location:    &loc,
		Status:      model.EventStatusDraft,
	}

	created, err := repo.Create(ctx, event)

	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Summer Fest 2026", created.Name)
	assert.Equal(t, model.EventStatusDraft, created.Status)
	assert.NotZero(t, created.CreatedAt)
}

func TestEventRepository_FindByEventID(t *testing.T) {
	repo := repository.NewEventRepository(getTestDB())
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		id, eventUUID := createTestEvent(t, "Concert", model.EventStatusActive)

		found, err := repo.FindByEventID(ctx, eventUUID)

		require.NoError(t, err)
		assert.Equal(t, id, found.ID)
		assert.Equal(t, eventUUID, found.EventID)
		assert.Equal(t, model.EventStatusActive, found.Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		_, err := repo.FindByEventID(ctx, uuid.New())

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}

func TestEventRepository_List(t *testing.T) {
	repo := repository.NewEventRepository(getTestDB())
	ctx := context.Background()

	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	createTestEvent(t, "Draft Event", model.EventStatusDraft)
	createTestEvent(t, "Active Event", model.EventStatusActive)
	createTestEvent(t, "Finished Event", model.EventStatusFinished)

	t.Run("All", func(t *testing.T) {
		events, err := repo.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})

	t.Run("FilterByStatus", func(t *testing.T) {
		status := model.EventStatusActive
		events, err := repo.List(ctx, &status)
		require.NoError(t, err)
		assert.Len(t, events, 1)
		assert.Equal(t, "Active Event", events[0].Name)
	})
}

func TestEventRepository_Update(t *testing.T) {
	repo := repository.NewEventRepository(getTestDB())
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		id, _ := createTestEvent(t, "Original", model.EventStatusDraft)
		name := "Renamed"
		loc := "New Venue"
		params := model.UpdateEventParams{Name: &name, Location: &loc}

		updated, err := repo.Update(ctx, id, params)

		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		require.NotNil(t, updated.Location)
		assert.Equal(t, "New Venue", *updated.Location)
		assert.Equal(t, model.EventStatusDraft, updated.Status) // 未更新的欄位保持不變
	})

	t.Run("NotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		name := "Won't Update"
		_, err := repo.Update(ctx, 99999, model.UpdateEventParams{Name: &name})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})

	t.Run("EmptyParams", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		id, _ := createTestEvent(t, "Concert", model.EventStatusDraft)

		_, err := repo.Update(ctx, id, model.UpdateEventParams{})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestEventRepository_UpdateStatus(t *testing.T) {
	repo := repository.NewEventRepository(getTestDB())
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		id, eventUUID := createTestEvent(t, "Concert", model.EventStatusDraft)

		err := repo.UpdateStatus(ctx, id, model.EventStatusDraft, model.EventStatusActive)
		require.NoError(t, err)

		found, err := repo.FindByEventID(ctx, eventUUID)
		require.NoError(t, err)
		assert.Equal(t, model.EventStatusActive, found.Status)
	})

	// current 不符時 0 筆更新，視為非法轉換
	t.Run("StaleCurrentStatus", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		id, _ := createTestEvent(t, "Concert", model.EventStatusFinished)

		err := repo.UpdateStatus(ctx, id, model.EventStatusActive, model.EventStatusFinished)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	})
}
