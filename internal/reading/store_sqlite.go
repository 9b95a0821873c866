package reading

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using the readings table.
//
// Timestamps are stored as Unix nanoseconds so that interval comparisons are
// exact integer comparisons in SQL.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed reading store.
//
// Parameters:
//   - db: Open SQLite connection with the readings table migrated
//
// Returns:
//   - *SQLiteStore: Store instance ready for use
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectReadingColumns = `SELECT id, device_id, sensor_id, value, recorded_at FROM readings`

// Save inserts a reading. The PRIMARY KEY on id makes the identity check and
// the insert a single statement.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		return Record{}, fmt.Errorf("%w: id is required", ErrInvalidReading)
	}
	if !ValidTimestamp(rec.Timestamp) {
		return Record{}, fmt.Errorf("%w: timestamp out of range", ErrInvalidReading)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO readings (id, device_id, sensor_id, value, recorded_at) VALUES (?, ?, ?, ?, ?)",
		rec.ID,
		rec.DeviceID,
		rec.SensorID,
		rec.Value.String(),
		rec.Timestamp.UnixNano(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return Record{}, fmt.Errorf("%w: %s", ErrDuplicateIdentity, rec.ID)
		}
		return Record{}, fmt.Errorf("inserting reading: %w", err)
	}

	return rec, nil
}

// OfIdentity returns the reading with the given ID, if any.
func (s *SQLiteStore) OfIdentity(ctx context.Context, id string) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx, selectReadingColumns+" WHERE id = ?", id)

	rec, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// FindAll returns every stored reading.
func (s *SQLiteStore) FindAll(ctx context.Context) ([]Record, error) {
	return s.query(ctx, selectReadingColumns)
}

// ByDevice returns every reading of a device.
func (s *SQLiteStore) ByDevice(ctx context.Context, deviceID string) ([]Record, error) {
	return s.query(ctx, selectReadingColumns+" WHERE device_id = ?", deviceID)
}

// ByDeviceAndSensorWithinClosedInterval returns readings with start <= ts <= end.
func (s *SQLiteStore) ByDeviceAndSensorWithinClosedInterval(ctx context.Context, deviceID, sensorID string, start, end time.Time) ([]Record, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	return s.query(ctx,
		selectReadingColumns+` WHERE device_id = ? AND sensor_id = ?
		 AND recorded_at >= ? AND recorded_at <= ?`,
		deviceID, sensorID, unixNanoClamped(start), unixNanoClamped(end),
	)
}

// ByDeviceWithinOpenInterval returns readings with start < ts < end.
func (s *SQLiteStore) ByDeviceWithinOpenInterval(ctx context.Context, deviceID string, start, end time.Time) ([]Record, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	return s.query(ctx,
		selectReadingColumns+` WHERE device_id = ?
		 AND recorded_at > ? AND recorded_at < ?`,
		deviceID, unixNanoClamped(start), unixNanoClamped(end),
	)
}

// Count returns the number of stored readings.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM readings").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting readings: %w", err)
	}
	return n, nil
}

// query runs a SELECT over the readings table and scans every row.
func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		rec, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}
	return records, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (Record, error) {
	var (
		rec        Record
		value      string
		recordedAt int64
	)
	if err := row.Scan(&rec.ID, &rec.DeviceID, &rec.SensorID, &value, &recordedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scanning reading: %w", err)
	}
	rec.Value = ParseValue(value)
	rec.Timestamp = time.Unix(0, recordedAt).UTC()
	return rec, nil
}

// isUniqueConstraintError checks whether err is a SQLite UNIQUE or PRIMARY KEY violation.
func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
