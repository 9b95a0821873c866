package reading

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store is the append-only collection of readings.
//
// Implementations must be thread-safe. Save must treat the identity check and
// the insert as one atomic step so two records with the same ID can never
// both be accepted.
type Store interface {
	// Save inserts a new reading and returns it unchanged.
	// Returns ErrDuplicateIdentity if a reading with the same ID exists.
	Save(ctx context.Context, rec Record) (Record, error)

	// OfIdentity looks up a reading by ID.
	// found is false when no reading has that ID; this is not an error.
	OfIdentity(ctx context.Context, id string) (rec Record, found bool, err error)

	// FindAll returns every stored reading in no particular order.
	FindAll(ctx context.Context) ([]Record, error)

	// ByDevice returns every reading of a device in no particular order.
	ByDevice(ctx context.Context, deviceID string) ([]Record, error)

	// ByDeviceAndSensorWithinClosedInterval returns the readings of one
	// sensor of a device with start <= timestamp <= end.
	// Returns ErrInvalidRange if start is after end.
	ByDeviceAndSensorWithinClosedInterval(ctx context.Context, deviceID, sensorID string, start, end time.Time) ([]Record, error)

	// ByDeviceWithinOpenInterval returns the readings of a device with
	// start < timestamp < end. Boundary timestamps are excluded.
	// Returns ErrInvalidRange if start is after end.
	ByDeviceWithinOpenInterval(ctx context.Context, deviceID string, start, end time.Time) ([]Record, error)

	// Count returns the number of stored readings.
	Count(ctx context.Context) (int, error)
}

// MemoryStore implements Store with a map held in process memory.
//
// Contents are lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

// Save inserts rec unless its ID is already present.
func (s *MemoryStore) Save(_ context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		return Record{}, fmt.Errorf("%w: id is required", ErrInvalidReading)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return Record{}, fmt.Errorf("%w: %s", ErrDuplicateIdentity, rec.ID)
	}
	s.records[rec.ID] = rec
	return rec, nil
}

// OfIdentity returns the reading with the given ID, if any.
func (s *MemoryStore) OfIdentity(_ context.Context, id string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	return rec, ok, nil
}

// FindAll returns all readings.
func (s *MemoryStore) FindAll(_ context.Context) ([]Record, error) {
	return s.filter(func(Record) bool { return true }), nil
}

// ByDevice returns all readings of a device.
func (s *MemoryStore) ByDevice(_ context.Context, deviceID string) ([]Record, error) {
	return s.filter(func(r Record) bool {
		return r.DeviceID == deviceID
	}), nil
}

// ByDeviceAndSensorWithinClosedInterval returns readings with start <= ts <= end.
func (s *MemoryStore) ByDeviceAndSensorWithinClosedInterval(_ context.Context, deviceID, sensorID string, start, end time.Time) ([]Record, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	return s.filter(func(r Record) bool {
		return r.DeviceID == deviceID && r.SensorID == sensorID && withinClosed(r.Timestamp, start, end)
	}), nil
}

// ByDeviceWithinOpenInterval returns readings with start < ts < end.
func (s *MemoryStore) ByDeviceWithinOpenInterval(_ context.Context, deviceID string, start, end time.Time) ([]Record, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	return s.filter(func(r Record) bool {
		return r.DeviceID == deviceID && withinOpen(r.Timestamp, start, end)
	}), nil
}

// Count returns the number of stored readings.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// filter scans all readings under the read lock.
func (s *MemoryStore) filter(match func(Record) bool) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0)
	for _, r := range s.records {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

// checkRange rejects intervals whose start is after their end.
func checkRange(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	}
	return nil
}

// withinClosed reports start <= ts <= end. Equality is tested explicitly.
func withinClosed(ts, start, end time.Time) bool {
	return (ts.Equal(start) || ts.After(start)) && (ts.Equal(end) || ts.Before(end))
}

// withinOpen reports start < ts < end.
func withinOpen(ts, start, end time.Time) bool {
	return ts.After(start) && ts.Before(end)
}
