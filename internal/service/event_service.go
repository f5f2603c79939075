package service

import (
	"context"

	"go-qr-ticketing/internal/cache"
	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/repository"
	apperrors "go-qr-ticketing/pkg/app_errors"

	"github.com/google/uuid"
)

type EventService interface {
	List(ctx context.Context, status *model.EventStatus) ([]*model.Event, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	UpdateByEventID(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
	// Activate 活動開賣：draft -> active，並預熱該活動底下所有票種的 Redis 可用量
	Activate(ctx context.Context, eventID uuid.UUID) error
	// Finish 活動結束：active -> finished，之後不再發票（已發的票仍可驗）
	Finish(ctx context.Context, eventID uuid.UUID) error
}

type EventServiceImpl struct {
	repo             repository.EventRepository
	ticketTypeRepo   repository.TicketTypeRepository
	inventoryManager cache.TypeInventoryManager
}

func NewEventService(repo repository.EventRepository, ticketTypeRepo repository.TicketTypeRepository, inventoryManager cache.TypeInventoryManager) EventService {
	return &EventServiceImpl{repo: repo, ticketTypeRepo: ticketTypeRepo, inventoryManager: inventoryManager}
}

func (s *EventServiceImpl) List(ctx context.Context, status *model.EventStatus) ([]*model.Event, error) {
	return s.repo.List(ctx, status)
}

func (s *EventServiceImpl) GetByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	return s.repo.FindByEventID(ctx, eventID)
}

func (s *EventServiceImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Status == "" {
		event.Status = model.EventStatusDraft
	}
	if !event.Status.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.Create(ctx, event)
}

func (s *EventServiceImpl) UpdateByEventID(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, event.ID, params)
}

func (s *EventServiceImpl) Activate(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.Status.CanTransitionTo(model.EventStatusActive) {
		return apperrors.ErrInvalidStatusTransition
	}
	if err := s.repo.UpdateStatus(ctx, event.ID, event.Status, model.EventStatusActive); err != nil {
		return err
	}

	ticketTypes, err := s.ticketTypeRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return err
	}
	for _, tt := range ticketTypes {
		if err := s.inventoryManager.WarmUpInventory(ctx, tt.TicketTypeID, tt.Available); err != nil {
			return err
		}
	}
	return nil
}

func (s *EventServiceImpl) Finish(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.Status.CanTransitionTo(model.EventStatusFinished) {
		return apperrors.ErrInvalidStatusTransition
	}
	return s.repo.UpdateStatus(ctx, event.ID, event.Status, model.EventStatusFinished)
}
