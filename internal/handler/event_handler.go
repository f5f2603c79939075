package handler

import (
	"errors"
	"net/http"
	"time"

	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/service"
	apperrors "go-qr-ticketing/pkg/app_errors"
	"go-qr-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events", h.List)
		router.GET("events/:uuid", h.GetByEventID)
		router.POST("events", h.Create)
		router.PUT("events/:uuid", h.UpdateByEventID)
		router.PUT("events/:uuid/activate", h.Activate)
		router.PUT("events/:uuid/finish", h.Finish)
	}
}

// CreateEventRequest 建立活動請求
type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date" binding:"required"`
	Location    *string   `json:"location"`
}

// UpdateEventRequest 更新活動請求
type UpdateEventRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location"`
}

type ListEventsQuery struct {
	Status *model.EventStatus `form:"status"`
}

func (h *EventHandler) List(c *gin.Context) {
	var query ListEventsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}
	if query.Status != nil && !query.Status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event status"})
		return
	}
	events, err := h.service.List(c, query.Status)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetByEventID(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	event, err := h.service.GetByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "GetByEventID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	event := &model.Event{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
	}
	created, err := h.service.Create(c, event)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) UpdateByEventID(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if req.Name == nil && req.Description == nil && req.Date == nil && req.Location == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one field is required"})
		return
	}
	params := model.UpdateEventParams{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
	}
	updated, err := h.service.UpdateByEventID(c, eventID, params)
	if err != nil {
		h.handleError(c, err, "UpdateByEventID")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) Activate(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	if err := h.service.Activate(c, eventID); err != nil {
		h.handleError(c, err, "Activate")
		return
	}
	c.Status(http.StatusOK)
}

func (h *EventHandler) Finish(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	if err := h.service.Finish(c, eventID); err != nil {
		h.handleError(c, err, "Finish")
		return
	}
	c.Status(http.StatusOK)
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrInvalidStatusTransition):
		log.Warn("Invalid status transition")
		c.JSON(http.StatusConflict, gin.H{"error": "Invalid status transition"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
