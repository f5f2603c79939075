package service

import (
	"context"
	"time"

	"go-qr-ticketing/internal/cache"
	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/qr"
	"go-qr-ticketing/internal/repository"
	"go-qr-ticketing/internal/token"
	"go-qr-ticketing/monitoring"
	apperrors "go-qr-ticketing/pkg/app_errors"
	"go-qr-ticketing/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// IssuedTicket 發出去的票加上掃描端要的 QR 圖
type IssuedTicket struct {
	Ticket *model.Ticket `json:"ticket"`
	QRCode string        `json:"qr_code"` // base64 data URL
}

type TicketService interface {
	// Generate 發票：每張票一個 UUID、一個簽名 token、一個 QR。
	// 可用量先過 Redis 閘門，再由 DB 條件式扣減保證不超發。
	Generate(ctx context.Context, eventID, ticketTypeID uuid.UUID, quantity int) ([]*IssuedTicket, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID, status *model.TicketStatus) ([]*model.Ticket, error)
	GetByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.Ticket, error)
	// ExpireTicket 明確的過期動作，驗票流程之外的唯一狀態轉換
	ExpireTicket(ctx context.Context, ticketID uuid.UUID) error
	StatsByEventID(ctx context.Context, eventID uuid.UUID) (map[model.TicketStatus]int, error)
}

type TicketServiceImpl struct {
	pool             *pgxpool.Pool
	repo             repository.TicketRepository
	ticketTypeRepo   repository.TicketTypeRepository
	eventRepo        repository.EventRepository
	inventoryManager cache.TypeInventoryManager
	codec            *token.Codec
}

func NewTicketService(
	pool *pgxpool.Pool,
	repo repository.TicketRepository,
	ticketTypeRepo repository.TicketTypeRepository,
	eventRepo repository.EventRepository,
	inventoryManager cache.TypeInventoryManager,
	codec *token.Codec,
) TicketService {
	return &TicketServiceImpl{
		pool:             pool,
		repo:             repo,
		ticketTypeRepo:   ticketTypeRepo,
		eventRepo:        eventRepo,
		inventoryManager: inventoryManager,
		codec:            codec,
	}
}

func (s *TicketServiceImpl) Generate(ctx context.Context, eventID, ticketTypeID uuid.UUID, quantity int) ([]*IssuedTicket, error) {
	if quantity < 1 || quantity > 100 {
		return nil, apperrors.ErrInvalidInput
	}

	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsFinished() {
		return nil, apperrors.ErrEventFinished
	}

	ticketType, err := s.ticketTypeRepo.FindByTicketTypeID(ctx, ticketTypeID)
	if err != nil {
		return nil, err
	}
	if ticketType.EventID != event.ID {
		return nil, apperrors.ErrTicketTypeMismatch
	}

	// 1. Redis 閘門先擋掉明顯不足的請求（沒預熱會直接放行）
	ok, err := s.inventoryManager.ReserveStock(ctx, ticketTypeID, quantity)
	if err != nil && err != apperrors.ErrInsufficientAvailability {
		// Redis 掛了不擋發票，DB 扣減仍然把關
		logger.WithComponent("service").Warn("inventory gate unavailable", zap.Error(err))
		ok = true
	}
	if !ok {
		return nil, apperrors.ErrInsufficientAvailability
	}

	issued, err := s.generateInTx(ctx, event, ticketType, quantity)
	if err != nil {
		// 2. 回滾閘門：RollbackStock 用 context.Background()，確保一定執行
		s.inventoryManager.RollbackStock(context.Background(), ticketTypeID, quantity)
		return nil, err
	}

	monitoring.TrackIssuance(eventID.String(), quantity)
	return issued, nil
}

func (s *TicketServiceImpl) generateInTx(ctx context.Context, event *model.Event, ticketType *model.TicketType, quantity int) ([]*IssuedTicket, error) {
	now := time.Now().UTC()
	tickets := make([]*model.Ticket, 0, quantity)
	issued := make([]*IssuedTicket, 0, quantity)

	for i := 0; i < quantity; i++ {
		ticketID := uuid.New()
		qrToken, err := s.codec.Encode(ticketID, event.EventID, ticketType.TicketTypeID, now)
		if err != nil {
			return nil, err
		}
		dataURL, err := qr.DataURL(qrToken)
		if err != nil {
			return nil, err
		}

		ticket := &model.Ticket{
			TicketID:     ticketID,
			EventID:      event.ID,
			TicketTypeID: ticketType.ID,
			QRToken:      qrToken,
			Status:       model.TicketStatusGenerated,
		}
		tickets = append(tickets, ticket)
		issued = append(issued, &IssuedTicket{Ticket: ticket, QRCode: dataURL})
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.repo.CreateBatch(ctx, tx, tickets); err != nil {
		return nil, err
	}

	// available >= quantity 才會成功，不變量在這裡守住
	if err := s.ticketTypeRepo.DecrementAvailable(ctx, tx, ticketType.ID, quantity); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return issued, nil
}

func (s *TicketServiceImpl) ListByEventID(ctx context.Context, eventID uuid.UUID, status *model.TicketStatus) ([]*model.Ticket, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEventID(ctx, event.ID, status)
}

func (s *TicketServiceImpl) GetByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.Ticket, error) {
	return s.repo.FindByTicketID(ctx, ticketID)
}

func (s *TicketServiceImpl) ExpireTicket(ctx context.Context, ticketID uuid.UUID) error {
	return s.repo.Expire(ctx, ticketID)
}

func (s *TicketServiceImpl) StatsByEventID(ctx context.Context, eventID uuid.UUID) (map[model.TicketStatus]int, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.repo.CountByEventIDGroupByStatus(ctx, event.ID)
}
