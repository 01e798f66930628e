//go:build integration

package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuedash/catalog/internal/testutil"
)

// ============================================================================
// Migration Integration Tests
// ============================================================================

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	for _, table := range []string{"venues", "performers", "events", "event_performers"} {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_EventsTableSchema(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	expectedColumns := []string{
		"id",
		"name",
		"date",
		"venue_id",
		"ticket_price",
		"ticket_price_min",
		"ticket_price_max",
		"total_tickets",
		"tickets_sold",
		"bar_sales",
		"total_ticket_revenue",
		"notes",
	}

	for _, col := range expectedColumns {
		t.Run(col, func(t *testing.T) {
			exists, err := columnExists(ctx, pool, "events", col)
			if err != nil {
				t.Fatalf("columnExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Column %q should exist in events table", col)
			}
		})
	}
}

func TestIntegrationMigration_EventsConstraints(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	if err := testutil.SeedVenue(ctx, pool, "v1", "owner-1", "Austin", nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		sql  string
	}{
		{
			name: "single price and range together",
			sql: `INSERT INTO events (id, name, date, venue_id, ticket_price, ticket_price_min, total_tickets)
				VALUES ('e1', 'x', '2024-01-01', 'v1', 10, 5, 10)`,
		},
		{
			name: "negative total tickets",
			sql: `INSERT INTO events (id, name, date, venue_id, total_tickets)
				VALUES ('e2', 'x', '2024-01-01', 'v1', -1)`,
		},
		{
			name: "tickets sold above total",
			sql: `INSERT INTO events (id, name, date, venue_id, total_tickets, tickets_sold)
				VALUES ('e4', 'x', '2024-01-01', 'v1', 10, 11)`,
		},
		{
			name: "price range inverted",
			sql: `INSERT INTO events (id, name, date, venue_id, ticket_price_min, ticket_price_max, total_tickets)
				VALUES ('e5', 'x', '2024-01-01', 'v1', 30, 10, 10)`,
		},
		{
			name: "unknown venue",
			sql: `INSERT INTO events (id, name, date, venue_id, total_tickets)
				VALUES ('e3', 'x', '2024-01-01', 'missing', 10)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := pool.Exec(ctx, tt.sql); err == nil {
				t.Error("expected constraint violation")
			}
		})
	}
}

func TestIntegrationMigration_Rollback(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	root, err := testutil.ProjectRoot()
	if err != nil {
		t.Fatalf("ProjectRoot failed: %v", err)
	}

	downSQL, err := os.ReadFile(filepath.Join(root, "migrations", "000001_catalog.down.sql"))
	if err != nil {
		t.Fatalf("read down migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		t.Fatalf("apply down migration: %v", err)
	}

	for _, table := range []string{"events", "event_performers"} {
		exists, err := tableExists(ctx, pool, table)
		if err != nil {
			t.Fatalf("tableExists failed: %v", err)
		}
		if exists {
			t.Errorf("%s table should not exist after rollback", table)
		}
	}
}

func TestIntegrationMigration_Idempotency(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	root, err := testutil.ProjectRoot()
	if err != nil {
		t.Fatalf("ProjectRoot failed: %v", err)
	}

	// Every statement uses IF NOT EXISTS, so a second apply is a no-op.
	upSQL, err := os.ReadFile(filepath.Join(root, "migrations", "000001_catalog.up.sql"))
	if err != nil {
		t.Fatalf("read up migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		t.Fatalf("second apply should not fail: %v", err)
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newMigrationTestEnv(t *testing.T) (context.Context, *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetCatalogSchema(ctx, pool); err != nil {
		t.Fatalf("reset catalog schema: %v", err)
	}

	return ctx, pool
}
