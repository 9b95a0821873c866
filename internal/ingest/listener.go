package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-telemetry/internal/reading"
)

// recordTimeout bounds a single store write from the MQTT path.
const recordTimeout = 5 * time.Second

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Recorder stores an ingest request. Satisfied by *reading.Coordinator.
type Recorder interface {
	Record(ctx context.Context, in reading.Input) (reading.Record, error)
}

// Subscriber registers topic handlers. Satisfied by *mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Payload is the JSON body of a reading message.
//
//	{"value": 21.5, "timestamp": "2026-01-15T12:00:00Z"}
//	{"value": "open"}
//
// Value may be a JSON number or string. Timestamp is optional RFC 3339;
// the coordinator stamps the current time when it is absent.
type Payload struct {
	Value     json.RawMessage `json:"value"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// Stats counts processed messages.
type Stats struct {
	Received int64 `json:"received"`
	Recorded int64 `json:"recorded"`
	Dropped  int64 `json:"dropped"`
}

// Listener feeds MQTT reading messages into a Recorder.
type Listener struct {
	recorder Recorder
	logger   Logger

	ctx   context.Context
	ctxMu sync.RWMutex

	received atomic.Int64
	recorded atomic.Int64
	dropped  atomic.Int64
}

// NewListener creates a listener that records through rec.
func NewListener(rec Recorder) *Listener {
	return &Listener{
		recorder: rec,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the listener.
func (l *Listener) SetLogger(logger Logger) {
	l.logger = logger
}

// Start subscribes to every reading topic. Records are written under ctx,
// so cancelling it abandons in-flight writes on shutdown.
func (l *Listener) Start(ctx context.Context, sub Subscriber, qos byte) error {
	l.ctxMu.Lock()
	l.ctx = ctx
	l.ctxMu.Unlock()

	topic := mqtt.Topics{}.AllReadings()
	if err := sub.Subscribe(topic, qos, l.Handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	l.logger.Info("reading listener started", "topic", topic)
	return nil
}

// Handle processes one MQTT message. It is an mqtt.MessageHandler.
func (l *Listener) Handle(topic string, payload []byte) error {
	l.received.Add(1)

	rec, err := l.handle(topic, payload)
	if err != nil {
		l.dropped.Add(1)
		return err
	}

	l.recorded.Add(1)
	l.logger.Debug("mqtt reading recorded", "topic", topic, "id", rec.ID)
	return nil
}

func (l *Listener) handle(topic string, payload []byte) (reading.Record, error) {
	l.ctxMu.RLock()
	parent := l.ctx
	l.ctxMu.RUnlock()
	if parent == nil {
		return reading.Record{}, ErrNotStarted
	}

	deviceID, sensorID, ok := mqtt.ParseReadingTopic(topic)
	if !ok {
		return reading.Record{}, fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}

	in, err := DecodePayload(payload)
	if err != nil {
		return reading.Record{}, err
	}
	in.DeviceID = deviceID
	in.SensorID = sensorID

	ctx, cancel := context.WithTimeout(parent, recordTimeout)
	defer cancel()

	return l.recorder.Record(ctx, in)
}

// DecodePayload parses a reading message body into an Input without
// device or sensor IDs.
func DecodePayload(payload []byte) (reading.Input, error) {
	var p Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		return reading.Input{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return p.Input()
}

// Input converts the payload into an ingest request without device or
// sensor IDs.
func (p Payload) Input() (reading.Input, error) {
	value, err := decodeValue(p.Value)
	if err != nil {
		return reading.Input{}, err
	}

	in := reading.Input{Value: value}
	if p.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
		if err != nil {
			return reading.Input{}, fmt.Errorf("%w: timestamp: %w", ErrInvalidPayload, err)
		}
		in.Timestamp = ts
	}
	return in, nil
}

// decodeValue accepts a JSON string or number and returns its text.
// Numbers keep their literal form so no precision is lost.
func decodeValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%w: value is required", ErrInvalidPayload)
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: value: %w", ErrInvalidPayload, err)
		}
		if strings.TrimSpace(s) == "" {
			return "", fmt.Errorf("%w: value is empty", ErrInvalidPayload)
		}
		return s, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", fmt.Errorf("%w: value: %w", ErrInvalidPayload, err)
		}
		return n.String(), nil
	default:
		return "", fmt.Errorf("%w: value must be a number or string", ErrInvalidPayload)
	}
}

// Stats returns message counters since creation.
func (l *Listener) Stats() Stats {
	return Stats{
		Received: l.received.Load(),
		Recorded: l.recorded.Load(),
		Dropped:  l.dropped.Load(),
	}
}
