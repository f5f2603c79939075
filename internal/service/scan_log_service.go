package service

import (
	"context"

	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/repository"

	"github.com/google/uuid"
)

// ScanLogPage 稽核紀錄分頁結果
type ScanLogPage struct {
	Logs   []*model.ScanLog `json:"logs"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type ScanLogService interface {
	ListByEventID(ctx context.Context, eventID uuid.UUID, filter repository.ScanLogFilter) (*ScanLogPage, error)
	StatsByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.ScanResultCount, error)
}

type ScanLogServiceImpl struct {
	repo      repository.ScanLogRepository
	eventRepo repository.EventRepository
}

func NewScanLogService(repo repository.ScanLogRepository, eventRepo repository.EventRepository) ScanLogService {
	return &ScanLogServiceImpl{repo: repo, eventRepo: eventRepo}
}

func (s *ScanLogServiceImpl) ListByEventID(ctx context.Context, eventID uuid.UUID, filter repository.ScanLogFilter) (*ScanLogPage, error) {
	if _, err := s.eventRepo.FindByEventID(ctx, eventID); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	logs, total, err := s.repo.ListByEventID(ctx, eventID, filter)
	if err != nil {
		return nil, err
	}
	return &ScanLogPage{
		Logs:   logs,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (s *ScanLogServiceImpl) StatsByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.ScanResultCount, error) {
	if _, err := s.eventRepo.FindByEventID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.CountByResult(ctx, eventID)
}
