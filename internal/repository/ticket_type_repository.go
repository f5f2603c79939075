package repository

import (
	"context"
	"errors"

	"go-qr-ticketing/internal/model"
	apperrors "go-qr-ticketing/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketTypeRepository interface {
	Create(ctx context.Context, ticketType *model.TicketType) (*model.TicketType, error)
	FindByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error)
	ListByEventID(ctx context.Context, eventID int) ([]*model.TicketType, error)

	// DecrementAvailable 條件式扣減：available >= quantity 才會成功，
	// 搭配發票的 transaction 使用
	DecrementAvailable(ctx context.Context, tx pgx.Tx, id int, quantity int) error
}

type TicketTypeRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketTypeRepository(pool *pgxpool.Pool) TicketTypeRepository {
	return &TicketTypeRepositoryImpl{
		pool: pool,
	}
}

func (r *TicketTypeRepositoryImpl) Create(ctx context.Context, ticketType *model.TicketType) (*model.TicketType, error) {
	query := `
		INSERT INTO ticket_types (ticket_type_id, event_id, name, price, quantity, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, ticket_type_id, event_id, name, price, quantity, available, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		ticketType.TicketTypeID, ticketType.EventID, ticketType.Name,
		ticketType.Price, ticketType.Quantity, ticketType.Available,
	).Scan(
		&ticketType.ID,
		&ticketType.TicketTypeID,
		&ticketType.EventID,
		&ticketType.Name,
		&ticketType.Price,
		&ticketType.Quantity,
		&ticketType.Available,
		&ticketType.CreatedAt,
		&ticketType.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		// unique_ticket_type_per_event
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrDuplicateTicketType
		}
		return nil, err
	}

	return ticketType, nil
}

func (r *TicketTypeRepositoryImpl) FindByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error) {
	query := `
		SELECT id, ticket_type_id, event_id, name, price, quantity, available, created_at, updated_at
		FROM ticket_types
		WHERE ticket_type_id = $1
	`

	var ticketType model.TicketType
	err := r.pool.QueryRow(ctx, query, ticketTypeID).Scan(
		&ticketType.ID,
		&ticketType.TicketTypeID,
		&ticketType.EventID,
		&ticketType.Name,
		&ticketType.Price,
		&ticketType.Quantity,
		&ticketType.Available,
		&ticketType.CreatedAt,
		&ticketType.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		return nil, err
	}

	return &ticketType, nil
}

func (r *TicketTypeRepositoryImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.TicketType, error) {
	query := `
		SELECT id, ticket_type_id, event_id, name, price, quantity, available, created_at, updated_at
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ticketTypes := make([]*model.TicketType, 0)
	for rows.Next() {
		var ticketType model.TicketType
		err := rows.Scan(
			&ticketType.ID,
			&ticketType.TicketTypeID,
			&ticketType.EventID,
			&ticketType.Name,
			&ticketType.Price,
			&ticketType.Quantity,
			&ticketType.Available,
			&ticketType.CreatedAt,
			&ticketType.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		ticketTypes = append(ticketTypes, &ticketType)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ticketTypes, nil
}

func (r *TicketTypeRepositoryImpl) DecrementAvailable(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	query := `
		UPDATE ticket_types
		SET available = available - $1, updated_at = now()
		WHERE id = $2 AND available >= $1
	`

	result, err := tx.Exec(ctx, query, quantity, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientAvailability
	}

	return nil
}
