package repository_test

import (
	"context"
	"testing"
	"time"

	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanLogRepository_Append(t *testing.T) {
	repo := repository.NewScanLogRepository(getTestDB())
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		_, eventUUID := createTestEvent(t, "Concert", model.EventStatusActive)
		ticketUUID := uuid.New()

		log := &model.ScanLog{
			ScanLogID: uuid.New(),
			TicketID:  &ticketUUID,
			EventID:   eventUUID,
			Result:    model.ScanResultValid,
			ScannerInfo: model.ScannerInfo{
				User:   "gate-3",
				Device: "scanner-01",
			},
			Timestamp: time.Now(),
		}

		err := repo.Append(ctx, log)

		require.NoError(t, err)
		assert.NotZero(t, log.ID)
	})

	// token 解不開時 ticket_id 為 nil，一樣要落地
	t.Run("NilTicketID", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		_, eventUUID := createTestEvent(t, "Concert", model.EventStatusActive)

		log := &model.ScanLog{
			ScanLogID: uuid.New(),
			TicketID:  nil,
			EventID:   eventUUID,
			Result:    model.ScanResultInvalid,
			Timestamp: time.Now(),
		}

		err := repo.Append(ctx, log)

		require.NoError(t, err)
		assert.NotZero(t, log.ID)
	})
}

func TestScanLogRepository_ListByEventID(t *testing.T) {
	repo := repository.NewScanLogRepository(getTestDB())
	ctx := context.Background()

	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	_, eventUUID := createTestEvent(t, "Concert", model.EventStatusActive)
	_, otherUUID := createTestEvent(t, "Other", model.EventStatusActive)

	base := time.Now().Add(-time.Hour)
	ticketUUID := uuid.New()
	createTestScanLog(t, eventUUID, &ticketUUID, model.ScanResultValid, base)
	createTestScanLog(t, eventUUID, &ticketUUID, model.ScanResultUsed, base.Add(time.Minute))
	createTestScanLog(t, eventUUID, nil, model.ScanResultInvalid, base.Add(2*time.Minute))
	createTestScanLog(t, otherUUID, nil, model.ScanResultValid, base)

	t.Run("All", func(t *testing.T) {
		logs, total, err := repo.ListByEventID(ctx, eventUUID, repository.ScanLogFilter{})

		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, logs, 3)
		// timestamp DESC
		assert.Equal(t, model.ScanResultInvalid, logs[0].Result)
		assert.Equal(t, model.ScanResultValid, logs[2].Result)
	})

	t.Run("FilterByResult", func(t *testing.T) {
		result := model.ScanResultUsed
		logs, total, err := repo.ListByEventID(ctx, eventUUID, repository.ScanLogFilter{Result: &result})

		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, logs, 1)
		assert.Equal(t, model.ScanResultUsed, logs[0].Result)
	})

	t.Run("Pagination", func(t *testing.T) {
		logs, total, err := repo.ListByEventID(ctx, eventUUID, repository.ScanLogFilter{Limit: 2, Offset: 2})

		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, logs, 1)
	})

	t.Run("EmptyEvent", func(t *testing.T) {
		logs, total, err := repo.ListByEventID(ctx, uuid.New(), repository.ScanLogFilter{})

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, logs)
	})
}

func TestScanLogRepository_CountByResult(t *testing.T) {
	repo := repository.NewScanLogRepository(getTestDB())
	ctx := context.Background()

	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	_, eventUUID := createTestEvent(t, "Concert", model.EventStatusActive)
	now := time.Now()
	createTestScanLog(t, eventUUID, nil, model.ScanResultValid, now)
	createTestScanLog(t, eventUUID, nil, model.ScanResultValid, now)
	createTestScanLog(t, eventUUID, nil, model.ScanResultUsed, now)
	createTestScanLog(t, eventUUID, nil, model.ScanResultInvalid, now)

	counts, err := repo.CountByResult(ctx, eventUUID)

	require.NoError(t, err)
	byResult := make(map[model.ScanResult]int)
	for _, c := range counts {
		byResult[c.Result] = c.Count
	}
	assert.Equal(t, 2, byResult[model.ScanResultValid])
	assert.Equal(t, 1, byResult[model.ScanResultUsed])
	assert.Equal(t, 1, byResult[model.ScanResultInvalid])
}
