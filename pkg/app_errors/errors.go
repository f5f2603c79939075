package apperrors

import "errors"

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")

	// 驗票狀態機：scanned / expired 都是吸收態，TryRedeem 失敗時回傳對應哨兵
	ErrTicketAlreadyScanned = errors.New("ticket already scanned")
	ErrTicketExpired        = errors.New("ticket expired")

	// 發票 (issuance)
	ErrInsufficientAvailability = errors.New("insufficient availability")
	ErrTicketTypeMismatch       = errors.New("ticket type does not belong to event")
	ErrDuplicateTicketType      = errors.New("ticket type already exists for event")
	ErrEventFinished            = errors.New("event already finished")

	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInternalServerError     = errors.New("internal server error")
)
