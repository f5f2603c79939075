package model

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus 活動狀態類型
type EventStatus string

const (
	EventStatusDraft    EventStatus = "draft"
	EventStatusActive   EventStatus = "active"
	EventStatusFinished EventStatus = "finished"
)

// IsValid 驗證狀態是否有效
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusActive, EventStatusFinished:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s EventStatus) CanTransitionTo(target EventStatus) bool {
	transitions := map[EventStatus][]EventStatus{
		EventStatusDraft:    {EventStatusActive},
		EventStatusActive:   {EventStatusFinished},
		EventStatusFinished: {}, // 終態
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

type Event struct {
	ID          int         `json:"id" db:"id"`
	EventID     uuid.UUID   `json:"event_id" db:"event_id"`
	Name        string      `json:"name" db:"name"`
	Description *string     `json:"description,omitempty" db:"description"`
	Date        time.Time   `json:"date" db:"date"`
	Location    *string     `json:"location,omitempty" db:"location"`
	Status      EventStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// IsFinished 結束的活動不再發票
func (e *Event) IsFinished() bool {
	return e.Status == EventStatusFinished
}

type UpdateEventParams struct {
	Name        *string
	Description *string
	Date        *time.Time
	Location    *string
}
