package queue

import (
	"context"
	"go-qr-ticketing/internal/model"
)

type Delivery struct {
	Data *model.ScanLog
	Ack  func()
	Nack func(requeue bool)
}

// AuditQueue 稽核紀錄的傳輸層。驗票引擎只負責發送；
// 發送失敗絕不影響已經決定的驗票結果。
type AuditQueue interface {
	// 發送稽核紀錄到隊列
	PublishAudit(ctx context.Context, log *model.ScanLog) error
	// 訂閱稽核隊列
	SubscribeAudits(ctx context.Context) (<-chan Delivery, error)
}

type AuditQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列，測試與單機部署用
	ch chan *model.ScanLog
}

func NewAuditQueue(bufferSize int) AuditQueue {
	return &AuditQueueImpl{
		ch: make(chan *model.ScanLog, bufferSize),
	}
}

func (q *AuditQueueImpl) PublishAudit(ctx context.Context, log *model.ScanLog) error {
	select {
	case q.ch <- log:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *AuditQueueImpl) SubscribeAudits(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case log, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: log,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- log // 簡單模擬重回隊列
						}
					},
				}
			}
		}
	}()

	return out, nil
}
