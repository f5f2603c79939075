package repository

import (
	"context"
	"time"

	"go-qr-ticketing/internal/model"
	apperrors "go-qr-ticketing/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	FindByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.Ticket, error)
	// FindDetailByTicketID 帶出活動與票種資訊，驗票結果顯示用
	FindDetailByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.TicketDetail, error)
	ListByEventID(ctx context.Context, eventID int, status *model.TicketStatus) ([]*model.Ticket, error)
	CountByEventIDGroupByStatus(ctx context.Context, eventID int) (map[model.TicketStatus]int, error)

	// TryRedeem 全系統唯一會把票轉成 scanned 的路徑。
	// 單一條件式 UPDATE：只有 status = 'generated' 時成功；
	// 0 筆時重讀 status 分類失敗原因。同一張票的併發呼叫恰好一個成功。
	TryRedeem(ctx context.Context, ticketID uuid.UUID, scannedBy string, now time.Time) error
	// Expire 明確的過期動作，同樣是條件式 UPDATE，已掃描的票不能過期
	Expire(ctx context.Context, ticketID uuid.UUID) error

	// Transaction methods
	CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

func (r *TicketRepositoryImpl) FindByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.Ticket, error) {
	query := `
		SELECT id, ticket_id, event_id, ticket_type_id, qr_token, status,
		       scanned_at, scanned_by, created_at, updated_at
		FROM tickets
		WHERE ticket_id = $1
	`

	var ticket model.Ticket
	err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.EventID,
		&ticket.TicketTypeID,
		&ticket.QRToken,
		&ticket.Status,
		&ticket.ScannedAt,
		&ticket.ScannedBy,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return &ticket, nil
}

func (r *TicketRepositoryImpl) FindDetailByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.TicketDetail, error) {
	query := `
		SELECT t.id, t.ticket_id, t.event_id, t.ticket_type_id, t.qr_token, t.status,
		       t.scanned_at, t.scanned_by, t.created_at, t.updated_at,
		       e.event_id, e.name, e.date, e.location,
		       tt.ticket_type_id, tt.name, tt.price
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		JOIN ticket_types tt ON tt.id = t.ticket_type_id
		WHERE t.ticket_id = $1
	`

	var detail model.TicketDetail
	err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&detail.ID,
		&detail.TicketID,
		&detail.EventID,
		&detail.TicketTypeID,
		&detail.QRToken,
		&detail.Status,
		&detail.ScannedAt,
		&detail.ScannedBy,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.EventUUID,
		&detail.EventName,
		&detail.EventDate,
		&detail.EventLocation,
		&detail.TicketTypeUUID,
		&detail.TicketTypeName,
		&detail.TicketTypePrice,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return &detail, nil
}

func (r *TicketRepositoryImpl) ListByEventID(ctx context.Context, eventID int, status *model.TicketStatus) ([]*model.Ticket, error) {
	query := `
		SELECT id, ticket_id, event_id, ticket_type_id, qr_token, status,
		       scanned_at, scanned_by, created_at, updated_at
		FROM tickets
		WHERE event_id = $1
	`
	args := []interface{}{eventID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		var ticket model.Ticket
		err := rows.Scan(
			&ticket.ID,
			&ticket.TicketID,
			&ticket.EventID,
			&ticket.TicketTypeID,
			&ticket.QRToken,
			&ticket.Status,
			&ticket.ScannedAt,
			&ticket.ScannedBy,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) CountByEventIDGroupByStatus(ctx context.Context, eventID int) (map[model.TicketStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM tickets
		WHERE event_id = $1
		GROUP BY status
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.TicketStatus]int)
	for rows.Next() {
		var status model.TicketStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func (r *TicketRepositoryImpl) TryRedeem(ctx context.Context, ticketID uuid.UUID, scannedBy string, now time.Time) error {
	query := `
		UPDATE tickets
		SET status = $1, scanned_at = $2, scanned_by = $3, updated_at = $2
		WHERE ticket_id = $4 AND status = $5
	`

	result, err := r.pool.Exec(ctx, query,
		model.TicketStatusScanned, now.UTC(), scannedBy,
		ticketID, model.TicketStatusGenerated,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 1 {
		return nil
	}

	// CAS 輸了或票不存在，重讀一次分類原因
	var status model.TicketStatus
	err = r.pool.QueryRow(ctx, `SELECT status FROM tickets WHERE ticket_id = $1`, ticketID).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrTicketNotFound
		}
		return err
	}

	switch status {
	case model.TicketStatusScanned:
		return apperrors.ErrTicketAlreadyScanned
	case model.TicketStatusExpired:
		return apperrors.ErrTicketExpired
	default:
		// generated 卻沒更新到，理論上不會發生
		return apperrors.ErrInternalServerError
	}
}

func (r *TicketRepositoryImpl) Expire(ctx context.Context, ticketID uuid.UUID) error {
	query := `
		UPDATE tickets
		SET status = $1, updated_at = $2
		WHERE ticket_id = $3 AND status = $4
	`

	result, err := r.pool.Exec(ctx, query,
		model.TicketStatusExpired, time.Now().UTC(),
		ticketID, model.TicketStatusGenerated,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 1 {
		return nil
	}

	var status model.TicketStatus
	err = r.pool.QueryRow(ctx, `SELECT status FROM tickets WHERE ticket_id = $1`, ticketID).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrTicketNotFound
		}
		return err
	}

	if status == model.TicketStatusScanned {
		return apperrors.ErrTicketAlreadyScanned
	}
	// 已經是 expired：視為冪等成功
	return nil
}

func (r *TicketRepositoryImpl) CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error {
	query := `
		INSERT INTO tickets (ticket_id, event_id, ticket_type_id, qr_token, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	for _, ticket := range tickets {
		err := tx.QueryRow(ctx, query,
			ticket.TicketID, ticket.EventID, ticket.TicketTypeID, ticket.QRToken, ticket.Status,
		).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
		if err != nil {
			return err
		}
	}

	return nil
}
