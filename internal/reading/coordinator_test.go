package reading

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeCatalogue is an in-memory Catalogue for coordinator tests.
// sensors maps sensor ID to owning device ID.
type fakeCatalogue struct {
	devices map[string]bool
	sensors map[string]string
}

func (f fakeCatalogue) HasDevice(_ context.Context, id string) bool { return f.devices[id] }

func (f fakeCatalogue) HasSensor(_ context.Context, deviceID, sensorID string) bool {
	owner, ok := f.sensors[sensorID]
	return ok && owner == deviceID
}

func newTestCoordinator(t *testing.T) (*Coordinator, *MemoryStore) {
	t.Helper()
	s := NewMemoryStore()
	cat := fakeCatalogue{
		devices: map[string]bool{"thermo-1": true, "station-1": true},
		sensors: map[string]string{"temp-1": "thermo-1", "wind-1": "station-1"},
	}
	c := NewCoordinator(s, cat)
	c.SetClock(func() time.Time { return baseTime })
	return c, s
}

func TestCoordinator_Record(t *testing.T) {
	c, s := newTestCoordinator(t)
	ctx := context.Background()
	ts := baseTime.Add(-time.Hour)

	got, err := c.Record(ctx, Input{DeviceID: "thermo-1", SensorID: "temp-1", Value: "21.5", Timestamp: ts})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if got.ID == "" {
		t.Error("Record() did not assign an ID")
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
	}
	if f, ok := got.Value.Float(); !ok || f != 21.5 {
		t.Errorf("Value = %v (numeric %v), want 21.5", f, ok)
	}

	stored, found, err := s.OfIdentity(ctx, got.ID)
	if err != nil || !found {
		t.Fatalf("OfIdentity() found = %v, err = %v", found, err)
	}
	if stored.DeviceID != "thermo-1" || stored.SensorID != "temp-1" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestCoordinator_RecordDefaultsTimestamp(t *testing.T) {
	c, _ := newTestCoordinator(t)

	got, err := c.Record(context.Background(), Input{DeviceID: "thermo-1", SensorID: "temp-1", Value: "on"})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !got.Timestamp.Equal(baseTime) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, baseTime)
	}
	if got.Value.IsNumeric() {
		t.Error("Value should be text")
	}
}

func TestCoordinator_RecordUniqueIDs(t *testing.T) {
	c, s := newTestCoordinator(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := c.Record(ctx, Input{DeviceID: "thermo-1", SensorID: "temp-1", Value: "1"}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 10 {
		t.Errorf("Count() = %d, want 10", n)
	}
}

func TestCoordinator_RecordRejects(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		wantErr error
	}{
		{"unknown device", Input{DeviceID: "ghost", SensorID: "temp-1", Value: "1"}, ErrDeviceNotFound},
		{"unknown sensor", Input{DeviceID: "thermo-1", SensorID: "ghost", Value: "1"}, ErrSensorNotFound},
		{"sensor of another device", Input{DeviceID: "thermo-1", SensorID: "wind-1", Value: "1"}, ErrSensorNotFound},
		{"missing device id", Input{SensorID: "temp-1", Value: "1"}, ErrInvalidReading},
		{"missing sensor id", Input{DeviceID: "thermo-1", Value: "1"}, ErrInvalidReading},
		{"blank value", Input{DeviceID: "thermo-1", SensorID: "temp-1", Value: "  "}, ErrInvalidReading},
		{"timestamp before 1678", Input{DeviceID: "thermo-1", SensorID: "temp-1", Value: "1",
			Timestamp: time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC)}, ErrInvalidReading},
		{"timestamp after 2262", Input{DeviceID: "thermo-1", SensorID: "temp-1", Value: "1",
			Timestamp: time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)}, ErrInvalidReading},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s := newTestCoordinator(t)
			ctx := context.Background()

			_, err := c.Record(ctx, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Record() error = %v, want %v", err, tt.wantErr)
			}
			if n, _ := s.Count(ctx); n != 0 {
				t.Errorf("Count() = %d after rejected ingest, want 0", n)
			}
		})
	}
}

func TestCoordinator_Observers(t *testing.T) {
	c, _ := newTestCoordinator(t)

	var seen []string
	c.AddObserver(ObserverFunc(func(Record) { panic("boom") }))
	c.AddObserver(ObserverFunc(func(r Record) { seen = append(seen, r.ID) }))

	got, err := c.Record(context.Background(), Input{DeviceID: "thermo-1", SensorID: "temp-1", Value: "3"})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(seen) != 1 || seen[0] != got.ID {
		t.Errorf("observer saw %v, want [%s]", seen, got.ID)
	}

	_, _ = c.Record(context.Background(), Input{DeviceID: "ghost", SensorID: "temp-1", Value: "3"})
	if len(seen) != 1 {
		t.Errorf("observer called for rejected ingest")
	}
}
