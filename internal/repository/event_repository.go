package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-qr-ticketing/internal/model"
	apperrors "go-qr-ticketing/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context, status *model.EventStatus) ([]*model.Event, error)
	FindByID(ctx context.Context, id int) (*model.Event, error)
	FindByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error)
	// UpdateStatus 條件式狀態轉換：只有 current 符合時才會轉換
	UpdateStatus(ctx context.Context, id int, current, next model.EventStatus) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := `
		INSERT INTO events (event_id, name, description, date, location, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, event_id, name, description, date, location, status, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		event.EventID, event.Name, event.Description, event.Date, event.Location, event.Status,
	).Scan(
		&event.ID,
		&event.EventID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) List(ctx context.Context, status *model.EventStatus) ([]*model.Event, error) {
	query := `
		SELECT id, event_id, name, description, date, location, status, created_at, updated_at
		FROM events
	`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY date ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		var event model.Event
		err := rows.Scan(
			&event.ID,
			&event.EventID,
			&event.Name,
			&event.Description,
			&event.Date,
			&event.Location,
			&event.Status,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Event, error) {
	query := `
		SELECT id, event_id, name, description, date, location, status, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *EventRepositoryImpl) FindByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	query := `
		SELECT id, event_id, name, description, date, location, status, created_at, updated_at
		FROM events
		WHERE event_id = $1
	`
	return r.scanOne(ctx, query, eventID)
}

func (r *EventRepositoryImpl) scanOne(ctx context.Context, query string, arg interface{}) (*model.Event, error) {
	var event model.Event
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&event.ID,
		&event.EventID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *params.Name)
		argPos++
	}

	if params.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argPos))
		args = append(args, *params.Description)
		argPos++
	}

	if params.Date != nil {
		sets = append(sets, fmt.Sprintf("date = $%d", argPos))
		args = append(args, *params.Date)
		argPos++
	}

	if params.Location != nil {
		sets = append(sets, fmt.Sprintf("location = $%d", argPos))
		args = append(args, *params.Location)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE events
		SET %s
		WHERE id = $%d
        RETURNING id, event_id, name, description, date, location, status, created_at, updated_at
	`, strings.Join(sets, ", "), argPos)

	var event model.Event
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&event.ID,
		&event.EventID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) UpdateStatus(ctx context.Context, id int, current, next model.EventStatus) error {
	query := `
		UPDATE events
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.pool.Exec(ctx, query, next, time.Now().UTC(), id, current)
	if err != nil {
		return err
	}

	// 0 筆 = 活動不存在，或狀態已經不是 current
	if result.RowsAffected() == 0 {
		return apperrors.ErrInvalidStatusTransition
	}

	return nil
}
