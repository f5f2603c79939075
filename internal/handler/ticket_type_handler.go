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

type TicketTypeHandler struct {
	service service.TicketTypeService
}

func NewTicketTypeHandler(service service.TicketTypeService) *TicketTypeHandler {
	return &TicketTypeHandler{service: service}
}

func (h *TicketTypeHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events/:uuid/ticket-types", h.ListByEvent)
		router.POST("events/:uuid/ticket-types", h.Create)
	}
}

// CreateTicketTypeRequest 建立票種請求
type CreateTicketTypeRequest struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"min=0"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
}

func (h *TicketTypeHandler) ListByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	ticketTypes, err := h.service.ListByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "ListByEvent")
		return
	}
	c.JSON(http.StatusOK, ticketTypes)
}

func (h *TicketTypeHandler) Create(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	var req CreateTicketTypeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	ticketType := &model.TicketType{
		Name:     req.Name,
		Price:    req.Price,
		Quantity: req.Quantity,
	}
	created, err := h.service.Create(c, eventID, ticketType)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TicketTypeHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrDuplicateTicketType):
		log.Warn("Duplicate ticket type")
		c.JSON(http.StatusConflict, gin.H{"error": "Ticket type already exists for this event"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
