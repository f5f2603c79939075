package service

import (
	"context"

	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/repository"
	apperrors "go-qr-ticketing/pkg/app_errors"

	"github.com/google/uuid"
)

type TicketTypeService interface {
	Create(ctx context.Context, eventID uuid.UUID, ticketType *model.TicketType) (*model.TicketType, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.TicketType, error)
}

type TicketTypeServiceImpl struct {
	repo      repository.TicketTypeRepository
	eventRepo repository.EventRepository
}

func NewTicketTypeService(repo repository.TicketTypeRepository, eventRepo repository.EventRepository) TicketTypeService {
	return &TicketTypeServiceImpl{repo: repo, eventRepo: eventRepo}
}

func (s *TicketTypeServiceImpl) Create(ctx context.Context, eventID uuid.UUID, ticketType *model.TicketType) (*model.TicketType, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ticketType.Quantity < 1 {
		return nil, apperrors.ErrInvalidInput
	}

	ticketType.TicketTypeID = uuid.New()
	ticketType.EventID = event.ID
	ticketType.Available = ticketType.Quantity
	return s.repo.Create(ctx, ticketType)
}

func (s *TicketTypeServiceImpl) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.TicketType, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEventID(ctx, event.ID)
}
