package service

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"go-qr-ticketing/internal/model"
	"go-qr-ticketing/internal/testutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var (
	testDB  *pgxpool.Pool
	testRdb *redis.Client
)

func TestMain(m *testing.M) {
	db, rdb, cleanup, err := testutil.Setup()
	if err != nil {
		log.Fatalf("Failed to setup test environment: %v", err)
	}
	defer cleanup()
	testDB = db
	testRdb = rdb

	log.Println("Running service tests...")

	code := m.Run()
	os.Exit(code)
}

func setupTestWithTruncate(t *testing.T) func() {
	t.Helper()
	ctx := context.Background()

	_, err := testDB.Exec(ctx, "TRUNCATE tickets, ticket_types, scan_logs, events RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}

	if err := testRdb.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test redis: %v", err)
	}

	return func() {}
}

func getTestDB() *pgxpool.Pool {
	if testDB == nil {
		panic("testDB is not initialized. Make sure TestMain has run.")
	}
	return testDB
}

func getTestRdb() *redis.Client {
	if testRdb == nil {
		panic("testRdb is not initialized. Make sure TestMain has run.")
	}
	return testRdb
}

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
