package cache

import (
	"context"
	"errors"
	"fmt"

	apperrors "go-qr-ticketing/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TypeInventoryManager 票種可用量的 Redis 閘門，只擋發票的高併發請求；
// 真正的 0 <= available <= quantity 不變量由 DB 的條件式扣減保證。
type TypeInventoryManager interface {
	// 預熱：活動 activate 時把票種可用量載入 Redis
	WarmUpInventory(ctx context.Context, ticketTypeID uuid.UUID, available int) error
	// 獲取：獲取票種可用量；沒預熱回傳 ErrTicketTypeNotFound
	GetAvailable(ctx context.Context, ticketTypeID uuid.UUID) (int, error)
	// 預留：扣減可用量 (使用Lua腳本確保原子性)。沒預熱的票種回傳 ok=true 直接放行，
	// 由 DB 扣減把關
	ReserveStock(ctx context.Context, ticketTypeID uuid.UUID, quantity int) (bool, error)
	// 回滾：DB transaction 失敗時把預留的量加回去
	RollbackStock(ctx context.Context, ticketTypeID uuid.UUID, quantity int) error
}

type TypeInventoryManagerImpl struct {
	client *redis.Client
}

func NewTypeInventoryManager(client *redis.Client) TypeInventoryManager {
	return &TypeInventoryManagerImpl{
		client: client,
	}
}

func (m *TypeInventoryManagerImpl) getInfoKey(ticketTypeID uuid.UUID) string {
	return fmt.Sprintf("ticket_type:%s:info", ticketTypeID)
}

func (m *TypeInventoryManagerImpl) WarmUpInventory(ctx context.Context, ticketTypeID uuid.UUID, available int) error {
	key := m.getInfoKey(ticketTypeID)
	return m.client.HSet(ctx, key, map[string]interface{}{
		"available": available,
	}).Err()
}

func (m *TypeInventoryManagerImpl) GetAvailable(ctx context.Context, ticketTypeID uuid.UUID) (int, error) {
	key := m.getInfoKey(ticketTypeID)
	val, err := m.client.HGet(ctx, key, "available").Int()
	if err == redis.Nil {
		return -1, apperrors.ErrTicketTypeNotFound
	}
	return val, err
}

/*
	預留票種可用量 (使用Lua腳本確保原子性)
	1. 沒預熱 -> 放行，讓 DB 的條件式扣減把關
	2. 檢查可用量
	3. 執行扣減
*/
func (m *TypeInventoryManagerImpl) ReserveStock(ctx context.Context, ticketTypeID uuid.UUID, quantity int) (bool, error) {
	key := m.getInfoKey(ticketTypeID)

	script := `
		local type_key = KEYS[1]
		local request_qty = tonumber(ARGV[1])

		local available = redis.call('HGET', type_key, 'available')

		-- 沒預熱：放行
		if not available then
			return 2
		end

		-- 可用量不足
		if tonumber(available) < request_qty then
			return -1
		end

		redis.call('HINCRBY', type_key, 'available', -request_qty)
		return 1
	`

	result, err := m.client.Eval(ctx, script, []string{key}, quantity).Result()
	if err != nil {
		return false, err
	}

	code, ok := result.(int64)
	if !ok {
		return false, errors.New("unexpected result")
	}

	switch code {
	case 1, 2:
		return true, nil
	case -1:
		return false, apperrors.ErrInsufficientAvailability
	default:
		return false, errors.New("unexpected result")
	}
}

func (m *TypeInventoryManagerImpl) RollbackStock(ctx context.Context, ticketTypeID uuid.UUID, quantity int) error {
	key := m.getInfoKey(ticketTypeID)

	script := `
		local type_key = KEYS[1]
		local rollback_qty = tonumber(ARGV[1])

		-- 沒預熱就沒什麼好回滾的
		if redis.call('EXISTS', type_key) == 0 then
			return "OK"
		end

		redis.call('HINCRBY', type_key, 'available', rollback_qty)
		return "OK"
	`

	_, err := m.client.Eval(ctx, script, []string{key}, quantity).Result()
	if err != nil {
		return err
	}

	return nil
}
