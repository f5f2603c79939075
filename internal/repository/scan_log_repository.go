package repository

import (
	"context"
	"encoding/json"

	"go-qr-ticketing/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScanLogFilter struct {
	Result *model.ScanResult
	Limit  int
	Offset int
}

// ScanLogRepository 稽核紀錄：只有 Append，沒有 update/delete
type ScanLogRepository interface {
	Append(ctx context.Context, log *model.ScanLog) error
	ListByEventID(ctx context.Context, eventID uuid.UUID, filter ScanLogFilter) ([]*model.ScanLog, int, error)
	CountByResult(ctx context.Context, eventID uuid.UUID) ([]*model.ScanResultCount, error)
}

type ScanLogRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewScanLogRepository(pool *pgxpool.Pool) ScanLogRepository {
	return &ScanLogRepositoryImpl{
		pool: pool,
	}
}

func (r *ScanLogRepositoryImpl) Append(ctx context.Context, log *model.ScanLog) error {
	scannerInfo, err := json.Marshal(log.ScannerInfo)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO scan_logs (scan_log_id, ticket_id, event_id, result, scanner_info, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		log.ScanLogID, log.TicketID, log.EventID, log.Result, scannerInfo, log.Timestamp.UTC(),
	).Scan(&log.ID)
}

func (r *ScanLogRepositoryImpl) ListByEventID(ctx context.Context, eventID uuid.UUID, filter ScanLogFilter) ([]*model.ScanLog, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	countQuery := `SELECT COUNT(*) FROM scan_logs WHERE event_id = $1`
	query := `
		SELECT id, scan_log_id, ticket_id, event_id, result, scanner_info, timestamp
		FROM scan_logs
		WHERE event_id = $1
	`
	args := []interface{}{eventID}
	countArgs := []interface{}{eventID}

	if filter.Result != nil {
		query += ` AND result = $2`
		countQuery += ` AND result = $2`
		args = append(args, *filter.Result)
		countArgs = append(countArgs, *filter.Result)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY timestamp DESC`
	if filter.Result != nil {
		query += ` LIMIT $3 OFFSET $4`
	} else {
		query += ` LIMIT $2 OFFSET $3`
	}
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := make([]*model.ScanLog, 0)
	for rows.Next() {
		var log model.ScanLog
		var scannerInfo []byte
		err := rows.Scan(
			&log.ID,
			&log.ScanLogID,
			&log.TicketID,
			&log.EventID,
			&log.Result,
			&scannerInfo,
			&log.Timestamp,
		)
		if err != nil {
			return nil, 0, err
		}
		if len(scannerInfo) > 0 {
			if err := json.Unmarshal(scannerInfo, &log.ScannerInfo); err != nil {
				return nil, 0, err
			}
		}
		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func (r *ScanLogRepositoryImpl) CountByResult(ctx context.Context, eventID uuid.UUID) ([]*model.ScanResultCount, error) {
	query := `
		SELECT result, COUNT(*)
		FROM scan_logs
		WHERE event_id = $1
		GROUP BY result
		ORDER BY result
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]*model.ScanResultCount, 0)
	for rows.Next() {
		var count model.ScanResultCount
		if err := rows.Scan(&count.Result, &count.Count); err != nil {
			return nil, err
		}
		counts = append(counts, &count)
	}

	return counts, rows.Err()
}
