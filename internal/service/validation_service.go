package service

import (
	"context"
	"errors"
	"time"

	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/token"
	"go-qr-ticketing/monitoring"
	apperrors "go-qr-ticketing/pkg/app_errors"
	"go-qr-ticketing/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ticketStore 驗票引擎需要的最小 store 介面：
// 一個讀、一個原子的條件式狀態轉換。repository.TicketRepository 滿足它。
type ticketStore interface {
	FindDetailByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.TicketDetail, error)
	TryRedeem(ctx context.Context, ticketID uuid.UUID, scannedBy string, now time.Time) error
}

// auditPublisher 稽核紀錄發送端。queue.AuditQueue 滿足它。
type auditPublisher interface {
	PublishAudit(ctx context.Context, log *model.ScanLog) error
}

type tokenDecoder interface {
	Decode(tokenString string) (*token.Claims, error)
}

type ValidationService interface {
	// Validate 驗票：decode -> resolve -> event match -> state check -> TryRedeem。
	// 永遠回傳五種 outcome 之一，不往外丟 error。
	Validate(ctx context.Context, qrToken string, eventID uuid.UUID, scanner model.ScannerInfo) *model.ScanOutcome
}

type ValidationServiceImpl struct {
	codec        tokenDecoder
	store        ticketStore
	audit        auditPublisher
	storeTimeout time.Duration
	now          func() time.Time
}

func NewValidationService(codec tokenDecoder, store ticketStore, audit auditPublisher, storeTimeout time.Duration) ValidationService {
	return &ValidationServiceImpl{
		codec:        codec,
		store:        store,
		audit:        audit,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}

func (s *ValidationServiceImpl) Validate(ctx context.Context, qrToken string, eventID uuid.UUID, scanner model.ScannerInfo) *model.ScanOutcome {
	start := s.now()
	outcome, ticketID := s.validate(ctx, qrToken, eventID, scanner)

	// 每次嘗試都留一筆稽核，成敗不影響 outcome
	s.appendAudit(ticketID, eventID, outcome.Result, scanner)
	monitoring.TrackValidation(eventID.String(), string(outcome.Result), s.now().Sub(start))

	return outcome
}

// validate 回傳 outcome 以及可解析出的票券身分（稽核用，解不出來為 nil）
func (s *ValidationServiceImpl) validate(ctx context.Context, qrToken string, eventID uuid.UUID, scanner model.ScannerInfo) (*model.ScanOutcome, *uuid.UUID) {
	log := logger.WithComponent("engine").With(zap.String("event_id", eventID.String()))

	// 1. Decode：偽造與過期的 token 對掃描端都是 invalid
	claims, err := s.codec.Decode(qrToken)
	if err != nil {
		log.Warn("token rejected", zap.Error(err))
		return &model.ScanOutcome{Result: model.ScanResultInvalid}, nil
	}
	ticketID := claims.TicketID

	// 2. Resolve
	detail, err := s.findDetail(ctx, ticketID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTicketNotFound) {
			// token 簽名正確但票不存在：偽造或已被清掉
			log.Warn("ticket not found", zap.String("ticket_id", ticketID.String()))
			return &model.ScanOutcome{Result: model.ScanResultInvalid}, nil
		}
		log.Error("ticket lookup failed", zap.Error(err))
		return &model.ScanOutcome{Result: model.ScanResultSystemError}, &ticketID
	}

	// 3. Event match：拿對票走錯門比「已使用」更具體，先檢查
	if detail.EventUUID != eventID {
		return &model.ScanOutcome{Result: model.ScanResultWrongEvent, TicketInfo: ticketInfo(detail)}, &ticketID
	}

	// 4. 終態短路
	if detail.IsScanned() {
		return &model.ScanOutcome{Result: model.ScanResultUsed, TicketInfo: ticketInfo(detail)}, &ticketID
	}
	if detail.IsExpired() {
		// 票券層級的過期，對掃描端一樣是 invalid
		return &model.ScanOutcome{Result: model.ScanResultInvalid, TicketInfo: ticketInfo(detail)}, &ticketID
	}

	// 5. 原子兌換。步驟 4 到這裡不是原子的，輸贏只看 TryRedeem
	err = s.tryRedeem(ctx, ticketID, scanner.User)
	switch {
	case err == nil:
		redeemed, err := s.findDetail(ctx, ticketID)
		if err != nil {
			// 兌換已成功，顯示資訊讀不回來就用手上的
			log.Warn("re-read after redeem failed", zap.Error(err))
			redeemed = detail
		}
		return &model.ScanOutcome{Result: model.ScanResultValid, TicketInfo: ticketInfo(redeemed)}, &ticketID

	case errors.Is(err, apperrors.ErrTicketAlreadyScanned):
		// 跟其他掃描器的競態輸了：重讀拿贏家的 scanned_at / scanned_by
		lost, readErr := s.findDetail(ctx, ticketID)
		if readErr != nil {
			lost = detail
		}
		return &model.ScanOutcome{Result: model.ScanResultUsed, TicketInfo: ticketInfo(lost)}, &ticketID

	case errors.Is(err, apperrors.ErrTicketExpired):
		return &model.ScanOutcome{Result: model.ScanResultInvalid, TicketInfo: ticketInfo(detail)}, &ticketID

	case errors.Is(err, apperrors.ErrTicketNotFound):
		return &model.ScanOutcome{Result: model.ScanResultInvalid}, &ticketID

	default:
		// 逾時或連線問題。不自動重試 TryRedeem：結果不明時重試可能把
		// 重複掃描誤判成首次兌換，交給操作員重掃
		log.Error("tryRedeem failed", zap.String("ticket_id", ticketID.String()), zap.Error(err))
		return &model.ScanOutcome{Result: model.ScanResultSystemError}, &ticketID
	}
}

func (s *ValidationServiceImpl) findDetail(ctx context.Context, ticketID uuid.UUID) (*model.TicketDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.FindDetailByTicketID(ctx, ticketID)
}

func (s *ValidationServiceImpl) tryRedeem(ctx context.Context, ticketID uuid.UUID, scannedBy string) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if scannedBy == "" {
		scannedBy = "system"
	}
	return s.store.TryRedeem(ctx, ticketID, scannedBy, s.now())
}

// appendAudit 用 Background context 發送：請求被取消也要留下紀錄
func (s *ValidationServiceImpl) appendAudit(ticketID *uuid.UUID, eventID uuid.UUID, result model.ScanResult, scanner model.ScannerInfo) {
	scanLog := &model.ScanLog{
		ScanLogID:   uuid.New(),
		TicketID:    ticketID,
		EventID:     eventID,
		Result:      result,
		ScannerInfo: scanner,
		Timestamp:   s.now().UTC(),
	}

	if err := s.audit.PublishAudit(context.Background(), scanLog); err != nil {
		logger.WithComponent("engine").Warn("audit publish failed",
			zap.String("event_id", eventID.String()),
			zap.String("result", string(result)),
			zap.Error(err))
	}
}

func ticketInfo(d *model.TicketDetail) *model.ScanTicketInfo {
	return &model.ScanTicketInfo{
		TicketID:       d.TicketID,
		EventName:      d.EventName,
		EventDate:      d.EventDate,
		EventLocation:  d.EventLocation,
		TicketTypeName: d.TicketTypeName,
		Price:          d.TicketTypePrice,
		ScannedAt:      d.ScannedAt,
		ScannedBy:      d.ScannedBy,
	}
}
