package model

import (
	"time"

	"github.com/google/uuid"
)

// TicketType 票種：單一活動底下的庫存桶。
// 不變量 0 <= available <= quantity 由 repository 的條件式扣減保證，
// 驗票流程永遠不動這兩個欄位。
type TicketType struct {
	ID           int       `json:"id" db:"id"`
	TicketTypeID uuid.UUID `json:"ticket_type_id" db:"ticket_type_id"`
	EventID      int       `json:"event_id" db:"event_id"`
	Name         string    `json:"name" db:"name"`
	Price        float64   `json:"price" db:"price"`
	Quantity     int       `json:"quantity" db:"quantity"`
	Available    int       `json:"available" db:"available"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasAvailability 檢查是否還有可發的票
func (t *TicketType) HasAvailability(quantity int) bool {
	return t.Available >= quantity
}
