package migrations_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-telemetry/internal/reading"
	_ "github.com/nerrad567/gray-logic-telemetry/migrations"
)

// TestMigrations_ReadingStore applies the embedded schema and exercises the
// SQLite reading store against it.
func TestMigrations_ReadingStore(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "telemetry.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	store := reading.NewSQLiteStore(db.DB)
	ts := time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)
	rec := reading.Record{
		ID:        "r-1",
		DeviceID:  "thermo-1",
		SensorID:  "temp-1",
		Value:     reading.ParseValue("20.5"),
		Timestamp: ts,
	}
	if _, err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.ByDeviceAndSensorWithinClosedInterval(ctx, "thermo-1", "temp-1", ts, ts)
	if err != nil {
		t.Fatalf("ByDeviceAndSensorWithinClosedInterval() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "r-1" {
		t.Errorf("closed interval = %+v, want r-1", got)
	}

	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if _, err := store.Count(ctx); err == nil {
		t.Error("Count() after MigrateDown expected error")
	}
}
