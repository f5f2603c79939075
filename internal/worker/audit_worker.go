package worker

import (
	"context"

	"go-qr-ticketing/internal/queue"
	"go-qr-ticketing/internal/repository"
	"go-qr-ticketing/pkg/logger"

	"go.uber.org/zap"
)

// AuditWorker 把稽核隊列裡的紀錄落到 scan_logs。
// 驗票結果早已回給掃描端，這裡只追求最終寫入。
type AuditWorker interface {
	Start(ctx context.Context) error
}

type AuditWorkerImpl struct {
	repo  repository.ScanLogRepository
	queue queue.AuditQueue
}

func NewAuditWorker(repo repository.ScanLogRepository, auditQueue queue.AuditQueue) AuditWorker {
	return &AuditWorkerImpl{
		repo:  repo,
		queue: auditQueue,
	}
}

func (w *AuditWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeAudits(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			err := w.repo.Append(ctx, msg.Data)

			if err != nil {
				// DB 暫時連不上就重試，稽核紀錄不能默默消失
				logger.WithComponent("worker").Warn("append scan log failed, requeue",
					zap.String("scan_log_id", msg.Data.ScanLogID.String()),
					zap.Error(err))
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}
