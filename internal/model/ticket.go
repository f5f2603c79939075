package model

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus 票券狀態類型
type TicketStatus string

const (
	TicketStatusGenerated TicketStatus = "generated"
	TicketStatusScanned   TicketStatus = "scanned"
	TicketStatusExpired   TicketStatus = "expired"
)

// IsValid 驗證狀態是否有效
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusGenerated, TicketStatusScanned, TicketStatusExpired:
		return true
	}
	return false
}

// IsTerminal scanned / expired 都是吸收態，不能再被兌換
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusScanned || s == TicketStatusExpired
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	transitions := map[TicketStatus][]TicketStatus{
		TicketStatusGenerated: {TicketStatusScanned, TicketStatusExpired},
		TicketStatusScanned:   {},
		TicketStatusExpired:   {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Ticket 票券模型：一張票 = 一個入場權。
// 不變量：status == scanned ⇔ scanned_at != nil；
// scanned_at / scanned_by 只由 TryRedeem 這一條路徑寫入。
type Ticket struct {
	ID           int          `json:"id" db:"id"`
	TicketID     uuid.UUID    `json:"ticket_id" db:"ticket_id"`
	EventID      int          `json:"event_id" db:"event_id"`
	TicketTypeID int          `json:"ticket_type_id" db:"ticket_type_id"`
	QRToken      string       `json:"qr_token" db:"qr_token"`
	Status       TicketStatus `json:"status" db:"status"`
	ScannedAt    *time.Time   `json:"scanned_at,omitempty" db:"scanned_at"`
	ScannedBy    *string      `json:"scanned_by,omitempty" db:"scanned_by"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// IsScanned 檢查票券是否已掃描
func (t *Ticket) IsScanned() bool {
	return t.Status == TicketStatusScanned
}

// IsExpired 檢查票券是否已過期
func (t *Ticket) IsExpired() bool {
	return t.Status == TicketStatusExpired
}

// TicketDetail 票券加上驗票結果顯示需要的活動/票種資訊
type TicketDetail struct {
	Ticket
	EventUUID       uuid.UUID `json:"event_uuid" db:"event_uuid"`
	EventName       string    `json:"event_name" db:"event_name"`
	EventDate       time.Time `json:"event_date" db:"event_date"`
	EventLocation   *string   `json:"event_location,omitempty" db:"event_location"`
	TicketTypeUUID  uuid.UUID `json:"ticket_type_uuid" db:"ticket_type_uuid"`
	TicketTypeName  string    `json:"ticket_type_name" db:"ticket_type_name"`
	TicketTypePrice float64   `json:"ticket_type_price" db:"ticket_type_price"`
}
