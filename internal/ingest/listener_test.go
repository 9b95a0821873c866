package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-telemetry/internal/reading"
)

var baseTime = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

// staticCatalogue knows a fixed set of devices and sensors.
// sensors maps sensor ID to owning device ID.
type staticCatalogue struct {
	devices map[string]bool
	sensors map[string]string
}

func (c staticCatalogue) HasDevice(_ context.Context, id string) bool { return c.devices[id] }

func (c staticCatalogue) HasSensor(_ context.Context, deviceID, sensorID string) bool {
	return c.sensors[sensorID] == deviceID && deviceID != ""
}

// fakeSubscriber captures the handler registered by Start.
type fakeSubscriber struct {
	topic   string
	qos     byte
	handler mqtt.MessageHandler
	err     error
}

func (s *fakeSubscriber) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	if s.err != nil {
		return s.err
	}
	s.topic, s.qos, s.handler = topic, qos, handler
	return nil
}

// setupListener returns a started listener backed by a memory store that
// knows device "thermo-1" with sensor "temp-1" and device "station-1" with
// sensor "wind-1".
func setupListener(t *testing.T) (*Listener, *reading.MemoryStore, *fakeSubscriber) {
	t.Helper()

	store := reading.NewMemoryStore()
	coord := reading.NewCoordinator(store, staticCatalogue{
		devices: map[string]bool{"thermo-1": true, "station-1": true},
		sensors: map[string]string{"temp-1": "thermo-1", "wind-1": "station-1"},
	})
	coord.SetClock(func() time.Time { return baseTime })

	l := NewListener(coord)
	sub := &fakeSubscriber{}
	if err := l.Start(context.Background(), sub, 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return l, store, sub
}

func TestListener_Start(t *testing.T) {
	_, _, sub := setupListener(t)

	if sub.topic != "graylogic/reading/+/+" {
		t.Errorf("subscribed to %q", sub.topic)
	}
	if sub.qos != 1 || sub.handler == nil {
		t.Errorf("qos = %d, handler nil = %v", sub.qos, sub.handler == nil)
	}
}

func TestListener_StartSubscribeError(t *testing.T) {
	l := NewListener(nil)
	err := l.Start(context.Background(), &fakeSubscriber{err: mqtt.ErrNotConnected}, 1)
	if !errors.Is(err, mqtt.ErrNotConnected) {
		t.Errorf("Start() error = %v, want ErrNotConnected", err)
	}
}

func TestListener_HandleRecords(t *testing.T) {
	l, store, sub := setupListener(t)
	ctx := context.Background()

	err := sub.handler("graylogic/reading/thermo-1/temp-1", []byte(`{"value": 21.5, "timestamp": "2026-01-15T11:00:00Z"}`))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	err = sub.handler("graylogic/reading/thermo-1/temp-1", []byte(`{"value": "calibrating"}`))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}

	all, err := store.ByDevice(ctx, "thermo-1")
	if err != nil {
		t.Fatalf("ByDevice() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("stored %d readings, want 2", len(all))
	}

	byValue := map[string]reading.Record{}
	for _, r := range all {
		byValue[r.Value.String()] = r
	}
	numeric, ok := byValue["21.5"]
	if !ok || !numeric.Value.IsNumeric() || !numeric.Timestamp.Equal(baseTime.Add(-time.Hour)) {
		t.Errorf("numeric reading = %+v", numeric)
	}
	text, ok := byValue["calibrating"]
	if !ok || text.Value.IsNumeric() || !text.Timestamp.Equal(baseTime) {
		t.Errorf("text reading = %+v", text)
	}

	if got := l.Stats(); got != (Stats{Received: 2, Recorded: 2}) {
		t.Errorf("Stats() = %+v", got)
	}
}

func TestListener_HandleDrops(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		wantErr error
	}{
		{"bad topic", "graylogic/state/thermo-1/temp-1", `{"value":1}`, ErrInvalidTopic},
		{"not json", "graylogic/reading/thermo-1/temp-1", `21.5`, ErrInvalidPayload},
		{"missing value", "graylogic/reading/thermo-1/temp-1", `{}`, ErrInvalidPayload},
		{"bool value", "graylogic/reading/thermo-1/temp-1", `{"value":true}`, ErrInvalidPayload},
		{"bad timestamp", "graylogic/reading/thermo-1/temp-1", `{"value":1,"timestamp":"yesterday"}`, ErrInvalidPayload},
		{"unknown device", "graylogic/reading/ghost/temp-1", `{"value":1}`, reading.ErrDeviceNotFound},
		{"unknown sensor", "graylogic/reading/thermo-1/ghost", `{"value":1}`, reading.ErrSensorNotFound},
		{"sensor of another device", "graylogic/reading/thermo-1/wind-1", `{"value":1}`, reading.ErrSensorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store, sub := setupListener(t)

			err := sub.handler(tt.topic, []byte(tt.payload))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("handler error = %v, want %v", err, tt.wantErr)
			}
			if n, _ := store.Count(context.Background()); n != 0 { //nolint:errcheck // memory store
				t.Errorf("stored %d readings, want 0", n)
			}
			if got := l.Stats(); got.Dropped != 1 || got.Recorded != 0 {
				t.Errorf("Stats() = %+v", got)
			}
		})
	}
}

func TestListener_HandleBeforeStart(t *testing.T) {
	l := NewListener(nil)
	err := l.Handle("graylogic/reading/thermo-1/temp-1", []byte(`{"value":1}`))
	if !errors.Is(err, ErrNotStarted) {
		t.Errorf("Handle() error = %v, want ErrNotStarted", err)
	}
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		payload   string
		wantValue string
		wantTS    time.Time
	}{
		{`{"value": 21.5}`, "21.5", time.Time{}},
		{`{"value": -3}`, "-3", time.Time{}},
		{`{"value": 1e3}`, "1e3", time.Time{}},
		{`{"value": "open"}`, "open", time.Time{}},
		{`{"value": "12.0", "timestamp": "2026-01-15T12:00:00.5Z"}`, "12.0", baseTime.Add(500 * time.Millisecond)},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			in, err := DecodePayload([]byte(tt.payload))
			if err != nil {
				t.Fatalf("DecodePayload() error = %v", err)
			}
			if in.Value != tt.wantValue || !in.Timestamp.Equal(tt.wantTS) {
				t.Errorf("DecodePayload() = %+v", in)
			}
		})
	}

	for _, bad := range []string{`{"value": null}`, `{"value": "  "}`, `{"value": [1]}`, `{"value": {"a":1}}`} {
		if _, err := DecodePayload([]byte(bad)); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("DecodePayload(%s) error = %v, want ErrInvalidPayload", bad, err)
		}
	}
}
