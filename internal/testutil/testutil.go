package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/venuedash/catalog/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetCatalogSchema drops and recreates the catalog schema for tests.
func ResetCatalogSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downPath := filepath.Join(root, "migrations", "000001_catalog.down.sql")
	upPath := filepath.Join(root, "migrations", "000001_catalog.up.sql")

	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		return fmt.Errorf("read catalog down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply catalog down migration: %w", err)
	}

	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return fmt.Errorf("read catalog up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply catalog up migration: %w", err)
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// SeedVenue inserts a venue row directly. capacity may be nil.
func SeedVenue(ctx context.Context, pool *pgxpool.Pool, id, ownerID, location string, capacity *int) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO venues (id, name, location, capacity, owner_id)
		VALUES ($1, $2, $3, $4, $5)
	`, id, "Venue "+id, location, capacity, ownerID)
	if err != nil {
		return fmt.Errorf("seed venue %s: %w", id, err)
	}
	return nil
}

// SeedPerformer inserts a performer row directly.
func SeedPerformer(ctx context.Context, pool *pgxpool.Pool, id, name, genre string) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO performers (id, name, genre) VALUES ($1, $2, $3)
	`, id, name, genre)
	if err != nil {
		return fmt.Errorf("seed performer %s: %w", id, err)
	}
	return nil
}

// NewTestEventInput creates a create-event input with sensible defaults.
func NewTestEventInput(t testing.TB, venueID string, date model.Date) model.CreateEventInput {
	t.Helper()
	return model.CreateEventInput{
		Name:         UniqueID("event"),
		Date:         date,
		VenueID:      venueID,
		TicketPrice:  model.FloatPtr(25),
		TotalTickets: 100,
		TicketsSold:  model.IntPtr(40),
		BarSales:     model.FloatPtr(300),
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
