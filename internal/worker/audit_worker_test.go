package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/queue"
	"go-qr-ticketing/internal/repository"
	"go-qr-ticketing/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScanLogRepo 記錄 Append 呼叫；可注入前幾次失敗
type fakeScanLogRepo struct {
	mu        sync.Mutex
	appended  []*model.ScanLog
	failTimes int
	calls     chan struct{}
}

func newFakeScanLogRepo(failTimes int) *fakeScanLogRepo {
	return &fakeScanLogRepo{
		failTimes: failTimes,
		calls:     make(chan struct{}, 100),
	}
}

func (f *fakeScanLogRepo) Append(ctx context.Context, log *model.ScanLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.calls <- struct{}{} }()

	if f.failTimes > 0 {
		f.failTimes--
		return errors.New("db down")
	}
	f.appended = append(f.appended, log)
	return nil
}

func (f *fakeScanLogRepo) ListByEventID(ctx context.Context, eventID uuid.UUID, filter repository.ScanLogFilter) ([]*model.ScanLog, int, error) {
	return nil, 0, nil
}

func (f *fakeScanLogRepo) CountByResult(ctx context.Context, eventID uuid.UUID) ([]*model.ScanResultCount, error) {
	return nil, nil
}

func (f *fakeScanLogRepo) appendedLogs() []*model.ScanLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.ScanLog, len(f.appended))
	copy(out, f.appended)
	return out
}

func publishScanLog(t *testing.T, q queue.AuditQueue) *model.ScanLog {
	t.Helper()
	ticketID := uuid.New()
	scanLog := &model.ScanLog{
		ScanLogID: uuid.New(),
		TicketID:  &ticketID,
		EventID:   uuid.New(),
		Result:    model.ScanResultValid,
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, q.PublishAudit(context.Background(), scanLog))
	return scanLog
}

func TestAuditWorker_AppendsDeliveredLog(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := queue.NewAuditQueue(10)
	repo := newFakeScanLogRepo(0)

	w := worker.NewAuditWorker(repo, q)
	require.NoError(t, w.Start(ctx))

	scanLog := publishScanLog(t, q)

	select {
	case <-repo.calls:
	case <-ctx.Done():
		t.Fatal("worker 未在時間內處理訊息")
	}

	logs := repo.appendedLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, scanLog.ScanLogID, logs[0].ScanLogID)
}

// Append 失敗 -> Nack(requeue) -> 重試後成功
func TestAuditWorker_RetriesOnAppendFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	q := queue.NewAuditQueue(10)
	repo := newFakeScanLogRepo(1)

	w := worker.NewAuditWorker(repo, q)
	require.NoError(t, w.Start(ctx))

	scanLog := publishScanLog(t, q)

	// 第一次失敗 + 第二次成功 = 兩次呼叫
	for i := 0; i < 2; i++ {
		select {
		case <-repo.calls:
		case <-ctx.Done():
			t.Fatalf("只觀察到 %d 次 Append 呼叫", i)
		}
	}

	logs := repo.appendedLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, scanLog.ScanLogID, logs[0].ScanLogID)
}
