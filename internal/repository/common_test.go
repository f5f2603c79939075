package repository_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"go-qr-ticketing/config"
	"go-qr-ticketing/internal/database"
	"go-qr-ticketing/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// testDB 是測試用的資料庫連接池
var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	cfg := config.LoadTestConfig()

	var err error
	testDB, err = database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize test database: %v", err)
	}

	if err := testDB.Ping(context.Background()); err != nil {
		log.Fatalf("Failed to ping test database: %v", err)
	}

	log.Println("Test database connected successfully")
	log.Println("Running repository tests...")

	code := m.Run()
	testDB.Close()
	log.Println("Test database closed")

	os.Exit(code)
}

func setupTestWithTruncate(t *testing.T) func() {
	t.Helper()
	ctx := context.Background()

	// 清空所有測試資料，保留 schema
	_, err := testDB.Exec(ctx, "TRUNCATE tickets, ticket_types, scan_logs, events RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}

	return func() {
	}
}

func getTestDB() *pgxpool.Pool {
	if testDB == nil {
		panic("testDB is not initialized. Make sure TestMain has run.")
	}
	return testDB
}

// createTestEvent 輔助函數：創建測試用的 event，回傳 (serial id, uuid)
func createTestEvent(t *testing.T, name string, status model.EventStatus) (int, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	eventUUID := uuid.New()
	query := `
		INSERT INTO events (event_id, name, date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int
	err := testDB.QueryRow(ctx, query,
		eventUUID, name, time.Now().Add(24*time.Hour), status,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return id, eventUUID
}

// createTestTicketType 輔助函數：創建測試用的 ticket type
func createTestTicketType(t *testing.T, eventID int, name string, quantity, available int) (int, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	typeUUID := uuid.New()
	query := `
		INSERT INTO ticket_types (ticket_type_id, event_id, name, price, quantity, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int
	err := testDB.QueryRow(ctx, query,
		typeUUID, eventID, name, 500.0, quantity, available,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test ticket type: %v", err)
	}

	return id, typeUUID
}

// createTestTicket 輔助函數：創建測試用的 ticket
func createTestTicket(t *testing.T, eventID, ticketTypeID int, status model.TicketStatus) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	ticketUUID := uuid.New()
	query := `
		INSERT INTO tickets (ticket_id, event_id, ticket_type_id, qr_token, status)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := testDB.Exec(ctx, query, ticketUUID, eventID, ticketTypeID, "test-token", status)
	if err != nil {
		t.Fatalf("Failed to create test ticket: %v", err)
	}

	return ticketUUID
}

// createTestScanLog 輔助函數：創建測試用的 scan log
func createTestScanLog(t *testing.T, eventUUID uuid.UUID, ticketUUID *uuid.UUID, result model.ScanResult, at time.Time) {
	t.Helper()
	ctx := context.Background()

	query := `
		INSERT INTO scan_logs (scan_log_id, ticket_id, event_id, result, scanner_info, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := testDB.Exec(ctx, query, uuid.New(), ticketUUID, eventUUID, result, []byte(`{}`), at)
	if err != nil {
		t.Fatalf("Failed to create test scan log: %v", err)
	}
}
