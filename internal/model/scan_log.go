package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanResult 驗票結果，對外只有五種
type ScanResult string

const (
	ScanResultValid       ScanResult = "valid"
	ScanResultUsed        ScanResult = "used"
	ScanResultInvalid     ScanResult = "invalid"
	ScanResultWrongEvent  ScanResult = "wrong_event"
	ScanResultSystemError ScanResult = "system_error"
)

// IsValid 驗證結果是否有效
func (r ScanResult) IsValid() bool {
	switch r {
	case ScanResultValid, ScanResultUsed, ScanResultInvalid, ScanResultWrongEvent, ScanResultSystemError:
		return true
	}
	return false
}

// ScannerInfo 掃描端的附帶資訊，整包存進 scan_logs.scanner_info (JSONB)
type ScannerInfo struct {
	User      string `json:"user,omitempty"`
	Device    string `json:"device,omitempty"`
	Location  string `json:"location,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
}

// ScanLog 驗票稽核紀錄：append-only，無論結果為何每次嘗試都寫一筆。
// TicketID 可為 nil（token 解不開、或解出的票不存在時）。
type ScanLog struct {
	ID          int         `json:"id" db:"id"`
	ScanLogID   uuid.UUID   `json:"scan_log_id" db:"scan_log_id"`
	TicketID    *uuid.UUID  `json:"ticket_id,omitempty" db:"ticket_id"`
	EventID     uuid.UUID   `json:"event_id" db:"event_id"`
	Result      ScanResult  `json:"result" db:"result"`
	ScannerInfo ScannerInfo `json:"scanner_info" db:"scanner_info"`
	Timestamp   time.Time   `json:"timestamp" db:"timestamp"`
}

// ScanResultCount 單一活動的驗票統計（依結果分組）
type ScanResultCount struct {
	Result ScanResult `json:"result" db:"result"`
	Count  int        `json:"count" db:"count"`
}

// ScanTicketInfo 驗票成功/已使用時回給掃描端的顯示資訊
type ScanTicketInfo struct {
	TicketID       uuid.UUID  `json:"ticket_id"`
	EventName      string     `json:"event_name"`
	EventDate      time.Time  `json:"event_date"`
	EventLocation  *string    `json:"event_location,omitempty"`
	TicketTypeName string     `json:"ticket_type_name"`
	Price          float64    `json:"price"`
	ScannedAt      *time.Time `json:"scanned_at,omitempty"`
	ScannedBy      *string    `json:"scanned_by,omitempty"`
}

// ScanOutcome 驗票引擎的結構化輸出
type ScanOutcome struct {
	Result     ScanResult      `json:"result"`
	TicketInfo *ScanTicketInfo `json:"ticket_info,omitempty"`
}
