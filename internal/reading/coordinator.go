package reading

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger defines the logging interface used by the Coordinator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Catalogue answers whether devices and sensors are known.
// It is implemented by the device registry.
type Catalogue interface {
	HasDevice(ctx context.Context, deviceID string) bool

	// HasSensor reports whether sensorID is registered on deviceID.
	HasSensor(ctx context.Context, deviceID, sensorID string) bool
}

// Observer is notified after a reading has been stored.
//
// Observers run synchronously on the ingest path and must not block.
type Observer interface {
	OnReadingRecorded(rec Record)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(rec Record)

// OnReadingRecorded calls f(rec).
func (f ObserverFunc) OnReadingRecorded(rec Record) { f(rec) }

// Input is an ingest request.
type Input struct {
	DeviceID string
	SensorID string
	Value    string

	// Timestamp defaults to the current time when zero.
	Timestamp time.Time
}

// Coordinator validates ingest requests and appends readings to a Store.
type Coordinator struct {
	store     Store
	catalogue Catalogue
	logger    Logger
	now       func() time.Time
	newID     func() string

	observers []Observer
	obsMu     sync.RWMutex
}

// NewCoordinator creates an ingest coordinator.
func NewCoordinator(store Store, catalogue Catalogue) *Coordinator {
	return &Coordinator{
		store:     store,
		catalogue: catalogue,
		logger:    noopLogger{},
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// SetLogger sets the logger for the coordinator.
func (c *Coordinator) SetLogger(logger Logger) {
	c.logger = logger
}

// SetClock overrides the clock used for default timestamps.
func (c *Coordinator) SetClock(now func() time.Time) {
	c.now = now
}

// AddObserver registers an observer for stored readings.
func (c *Coordinator) AddObserver(o Observer) {
	c.obsMu.Lock()
	c.observers = append(c.observers, o)
	c.obsMu.Unlock()
}

// Record validates in, builds a new reading and stores it.
//
// Returns ErrDeviceNotFound when the device is unknown and ErrSensorNotFound
// when the sensor is unknown or belongs to another device. Nothing is stored
// on failure.
func (c *Coordinator) Record(ctx context.Context, in Input) (Record, error) {
	if in.DeviceID == "" || in.SensorID == "" {
		return Record{}, fmt.Errorf("%w: device_id and sensor_id are required", ErrInvalidReading)
	}
	if strings.TrimSpace(in.Value) == "" {
		return Record{}, fmt.Errorf("%w: value is required", ErrInvalidReading)
	}
	if !c.catalogue.HasDevice(ctx, in.DeviceID) {
		return Record{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, in.DeviceID)
	}
	if !c.catalogue.HasSensor(ctx, in.DeviceID, in.SensorID) {
		return Record{}, fmt.Errorf("%w: %s on device %s", ErrSensorNotFound, in.SensorID, in.DeviceID)
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = c.now()
	}
	if !ValidTimestamp(ts) {
		return Record{}, fmt.Errorf("%w: timestamp %s outside %d-%d", ErrInvalidReading,
			ts.Format(time.RFC3339), MinTimestamp.Year(), MaxTimestamp.Year())
	}

	rec := Record{
		ID:        c.newID(),
		DeviceID:  in.DeviceID,
		SensorID:  in.SensorID,
		Value:     ParseValue(in.Value),
		Timestamp: ts.UTC(),
	}

	saved, err := c.store.Save(ctx, rec)
	if err != nil {
		return Record{}, err
	}

	c.logger.Debug("reading recorded",
		"id", saved.ID,
		"device_id", saved.DeviceID,
		"sensor_id", saved.SensorID,
		"kind", saved.Value.Kind(),
	)

	c.notify(saved)
	return saved, nil
}

// notify fans a stored reading out to observers. A panicking observer is
// logged and does not affect the others.
func (c *Coordinator) notify(rec Record) {
	c.obsMu.RLock()
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.obsMu.RUnlock()

	for _, o := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("reading observer panic recovered", "id", rec.ID, "panic", r)
				}
			}()
			o.OnReadingRecorded(rec)
		}()
	}
}
