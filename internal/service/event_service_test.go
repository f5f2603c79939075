package service

import (
	"context"
	"testing"
	"time"

	"go-qr-ticketing/internal/cache"
	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/repository"
	apperrors "go-qr-ticketing/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventService() EventService {
	return NewEventService(
		repository.NewEventRepository(getTestDB()),
		repository.NewTicketTypeRepository(getTestDB()),
		cache.NewTypeInventoryManager(getTestRdb()),
	)
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsToDraft", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc := newEventService()
		created, err := svc.Create(ctx, &model.Event{
			Name: "New Event",
			Date: time.Now().Add(48 * time.Hour),
		})

		require.NoError(t, err)
		assert.Equal(t, model.EventStatusDraft, created.Status)
		assert.NotZero(t, created.EventID)
	})

	t.Run("RejectsUnknownStatus", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc := newEventService()
		_, err := svc.Create(ctx, &model.Event{
			Name:   "Bad Status",
			Date:   time.Now(),
			Status: model.EventStatus("archived"),
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestEventService_Activate(t *testing.T) {
	ctx := context.Background()

	t.Run("SuccessWarmsInventory", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc := newEventService()
		inventory := cache.NewTypeInventoryManager(getTestRdb())

		eventID, eventUUID := createTestEvent(t, "Concert", model.EventStatusDraft)
		_, gaUUID := createTestTicketType(t, eventID, "GA", 100, 80)
		_, vipUUID := createTestTicketType(t, eventID, "VIP", 20, 20)

		err := svc.Activate(ctx, eventUUID)
		require.NoError(t, err)

		event, err := svc.GetByEventID(ctx, eventUUID)
		require.NoError(t, err)
		assert.Equal(t, model.EventStatusActive, event.Status)

		// 所有票種的可用量都被預熱進 Redis
		ga, err := inventory.GetAvailable(ctx, gaUUID)
		require.NoError(t, err)
		assert.Equal(t, 80, ga)

		vip, err := inventory.GetAvailable(ctx, vipUUID)
		require.NoError(t, err)
		assert.Equal(t, 20, vip)
	})

	t.Run("FinishedCannotActivate", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc := newEventService()
		_, eventUUID := createTestEvent(t, "Concert", model.EventStatusFinished)

		err := svc.Activate(ctx, eventUUID)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	})
}

func TestEventService_Finish(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc := newEventService()
		_, eventUUID := createTestEvent(t, "Concert", model.EventStatusActive)

		err := svc.Finish(ctx, eventUUID)
		require.NoError(t, err)

		event, err := svc.GetByEventID(ctx, eventUUID)
		require.NoError(t, err)
		assert.Equal(t, model.EventStatusFinished, event.Status)
	})

	t.Run("DraftCannotFinish", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc := newEventService()
		_, eventUUID := createTestEvent(t, "Concert", model.EventStatusDraft)

		err := svc.Finish(ctx, eventUUID)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	})
}
