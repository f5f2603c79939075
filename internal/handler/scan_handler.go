package handler

import (
	"errors"
	"net/http"

	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/repository"
	"go-qr-ticketing/internal/service"
	apperrors "go-qr-ticketing/pkg/app_errors"
	"go-qr-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ScanHandler struct {
	validation service.ValidationService
	scanLogs   service.ScanLogService
}

func NewScanHandler(validation service.ValidationService, scanLogs service.ScanLogService) *ScanHandler {
	return &ScanHandler{validation: validation, scanLogs: scanLogs}
}

func (h *ScanHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("scans/validate", h.Validate)
		router.GET("scans/logs/:uuid", h.Logs)
		router.GET("scans/stats/:uuid", h.Stats)
	}
}

// ValidateScanRequest 掃描端送上來的驗票請求
type ValidateScanRequest struct {
	QRToken     string             `json:"qr_token" binding:"required"`
	EventID     uuid.UUID          `json:"event_id" binding:"required"`
	ScannerInfo *model.ScannerInfo `json:"scanner_info"`
}

// ValidateScanResponse 給掃描端的回應：機器判讀 scan_result，人看 display_message
type ValidateScanResponse struct {
	Success        bool                  `json:"success"`
	ScanResult     model.ScanResult      `json:"scan_result"`
	DisplayMessage string                `json:"display_message"`
	TicketInfo     *model.ScanTicketInfo `json:"ticket_info,omitempty"`
}

type ScanLogsQuery struct {
	Result *model.ScanResult `form:"result"`
	Limit  int               `form:"limit"`
	Offset int               `form:"offset"`
}

func (h *ScanHandler) Validate(c *gin.Context) {
	var req ValidateScanRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	scanner := model.ScannerInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
	if req.ScannerInfo != nil {
		scanner.User = req.ScannerInfo.User
		scanner.Device = req.ScannerInfo.Device
		scanner.Location = req.ScannerInfo.Location
	}

	outcome := h.validation.Validate(c, req.QRToken, req.EventID, scanner)

	c.JSON(statusForResult(outcome.Result), ValidateScanResponse{
		Success:        outcome.Result == model.ScanResultValid,
		ScanResult:     outcome.Result,
		DisplayMessage: displayMessage(outcome.Result),
		TicketInfo:     outcome.TicketInfo,
	})
}

func (h *ScanHandler) Logs(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	var query ScanLogsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}
	if query.Result != nil && !query.Result.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan result"})
		return
	}

	page, err := h.scanLogs.ListByEventID(c, eventID, repository.ScanLogFilter{
		Result: query.Result,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		h.handleError(c, err, "Logs")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ScanHandler) Stats(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	stats, err := h.scanLogs.StatsByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "Stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"event_id": eventID,
		"stats":    stats,
	})
}

func (h *ScanHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// statusForResult 五種 outcome 對應的 HTTP 狀態碼。
// 掃描端先看 scan_result，狀態碼只是輔助。
func statusForResult(result model.ScanResult) int {
	switch result {
	case model.ScanResultValid:
		return http.StatusOK
	case model.ScanResultUsed:
		return http.StatusConflict
	case model.ScanResultWrongEvent, model.ScanResultInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func displayMessage(result model.ScanResult) string {
	switch result {
	case model.ScanResultValid:
		return "ACCESS GRANTED"
	case model.ScanResultUsed:
		return "TICKET ALREADY USED"
	case model.ScanResultWrongEvent:
		return "QR NOT VALID FOR THIS EVENT"
	case model.ScanResultInvalid:
		return "INVALID OR FORGED QR CODE"
	default:
		return "SYSTEM ERROR - PLEASE RETRY"
	}
}
