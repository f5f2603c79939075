package handler

import (
	"errors"
	"net/http"

	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/service"
	apperrors "go-qr-ticketing/pkg/app_errors"
	"go-qr-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TicketHandler struct {
	service service.TicketService
}

func NewTicketHandler(service service.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("tickets/generate", h.Generate)
		router.GET("tickets/:uuid", h.GetByTicketID)
		router.PUT("tickets/:uuid/expire", h.Expire)
		router.GET("events/:uuid/tickets", h.ListByEvent)
		router.GET("events/:uuid/tickets/stats", h.StatsByEvent)
	}
}

// GenerateTicketsRequest 發票請求
type GenerateTicketsRequest struct {
	EventID      uuid.UUID `json:"event_id" binding:"required"`
	TicketTypeID uuid.UUID `json:"ticket_type_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,min=1,max=100"`
}

type ListTicketsQuery struct {
	Status *model.TicketStatus `form:"status"`
}

func (h *TicketHandler) Generate(c *gin.Context) {
	var req GenerateTicketsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	issued, err := h.service.Generate(c, req.EventID, req.TicketTypeID, req.Quantity)
	if err != nil {
		h.handleError(c, err, "Generate")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"count":   len(issued),
		"tickets": issued,
	})
}

func (h *TicketHandler) GetByTicketID(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket uuid"})
		return
	}
	ticket, err := h.service.GetByTicketID(c, ticketID)
	if err != nil {
		h.handleError(c, err, "GetByTicketID")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) Expire(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket uuid"})
		return
	}
	if err := h.service.ExpireTicket(c, ticketID); err != nil {
		h.handleError(c, err, "Expire")
		return
	}
	c.Status(http.StatusOK)
}

func (h *TicketHandler) ListByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	var query ListTicketsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}
	if query.Status != nil && !query.Status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket status"})
		return
	}
	tickets, err := h.service.ListByEventID(c, eventID, query.Status)
	if err != nil {
		h.handleError(c, err, "ListByEvent")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) StatsByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	stats, err := h.service.StatsByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "StatsByEvent")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *TicketHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
	case errors.Is(err, apperrors.ErrTicketTypeNotFound):
		log.Warn("Ticket type not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket type not found"})
	case errors.Is(err, apperrors.ErrEventFinished):
		log.Warn("Event finished")
		c.JSON(http.StatusConflict, gin.H{"error": "Event has finished"})
	case errors.Is(err, apperrors.ErrTicketTypeMismatch):
		log.Warn("Ticket type mismatch")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ticket type does not belong to event"})
	case errors.Is(err, apperrors.ErrInsufficientAvailability):
		log.Warn("Insufficient availability")
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient availability"})
	case errors.Is(err, apperrors.ErrTicketAlreadyScanned):
		log.Warn("Ticket already scanned")
		c.JSON(http.StatusConflict, gin.H{"error": "Ticket already scanned"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
