package device

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-telemetry/internal/location"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
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

// RoomLookup resolves room IDs. It is satisfied by *location.Registry.
type RoomLookup interface {
	GetRoom(ctx context.Context, id string) (location.Room, error)
}

// Registry is the in-memory catalogue of devices and sensors.
//
// All public methods are thread-safe. Returned values are copies; callers
// can safely modify them.
type Registry struct {
	rooms RoomLookup

	mu      sync.RWMutex
	devices map[string]*Device
	sensors map[string]Sensor

	logger Logger
	now    func() time.Time
}

// NewRegistry creates a new device registry.
// rooms may be nil, in which case room references are not checked.
func NewRegistry(rooms RoomLookup) *Registry {
	return &Registry{
		rooms:   rooms,
		devices: make(map[string]*Device),
		sensors: make(map[string]Sensor),
		logger:  noopLogger{},
		now:     time.Now,
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// AddDevice validates and registers a device.
// It generates the ID and slug if they are not provided.
func (r *Registry) AddDevice(ctx context.Context, device *Device) error {
	if device.ID == "" {
		device.ID = GenerateID()
	}
	if device.Slug == "" {
		device.Slug = GenerateSlug(device.Name)
		if device.Slug == "" {
			device.Slug = "device"
		}
	}
	if err := ValidateDevice(device); err != nil {
		return err
	}

	if device.RoomID != "" && r.rooms != nil {
		if _, err := r.rooms.GetRoom(ctx, device.RoomID); err != nil {
			if errors.Is(err, location.ErrRoomNotFound) {
				return fmt.Errorf("%w: %s", ErrRoomNotFound, device.RoomID)
			}
			return fmt.Errorf("resolving room %s: %w", device.RoomID, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[device.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDeviceExists, device.ID)
	}
	if device.CreatedAt.IsZero() {
		device.CreatedAt = r.now().UTC()
	}
	r.devices[device.ID] = device.DeepCopy()

	r.logger.Info("device registered", "id", device.ID, "name", device.Name, "type", device.Type)
	return nil
}

// AddSensor registers a sensor on an existing device.
// It generates the ID if not provided.
func (r *Registry) AddSensor(_ context.Context, sensor *Sensor) error {
	if sensor.ID == "" {
		sensor.ID = GenerateID()
	}
	if err := ValidateSensor(sensor); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[sensor.DeviceID]; !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, sensor.DeviceID)
	}
	if _, ok := r.sensors[sensor.ID]; ok {
		return fmt.Errorf("%w: %s", ErrSensorExists, sensor.ID)
	}
	r.sensors[sensor.ID] = *sensor

	r.logger.Debug("sensor registered", "id", sensor.ID, "device_id", sensor.DeviceID, "type", sensor.Type)
	return nil
}

// GetDevice retrieves a device by ID.
// Returns ErrDeviceNotFound if the device does not exist.
func (r *Registry) GetDevice(_ context.Context, id string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[id]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return d.DeepCopy(), nil
}

// GetSensor retrieves a sensor by ID.
// Returns ErrSensorNotFound if the sensor does not exist.
func (r *Registry) GetSensor(_ context.Context, id string) (Sensor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sensors[id]
	if !ok {
		return Sensor{}, ErrSensorNotFound
	}
	return s, nil
}

// ListDevices returns all devices ordered by name.
func (r *Registry) ListDevices(_ context.Context) []Device {
	return r.collect(func(*Device) bool { return true })
}

// DevicesByType returns the devices of the given type ordered by name.
func (r *Registry) DevicesByType(_ context.Context, t DeviceType) []Device {
	return r.collect(func(d *Device) bool { return d.Type == t })
}

// DevicesByPlacement returns indoor or outdoor devices ordered by name.
func (r *Registry) DevicesByPlacement(_ context.Context, p Placement) []Device {
	return r.collect(func(d *Device) bool { return d.Placement == p })
}

// DevicesByRoom returns the devices in a room ordered by name.
func (r *Registry) DevicesByRoom(_ context.Context, roomID string) []Device {
	return r.collect(func(d *Device) bool { return d.RoomID == roomID })
}

// SensorsByDevice returns a device's sensors ordered by ID.
// Returns ErrDeviceNotFound if the device does not exist.
func (r *Registry) SensorsByDevice(_ context.Context, deviceID string) ([]Sensor, error) {
	r.mu.RLock()
	if _, ok := r.devices[deviceID]; !ok {
		r.mu.RUnlock()
		return nil, ErrDeviceNotFound
	}
	sensors := make([]Sensor, 0)
	for _, s := range r.sensors {
		if s.DeviceID == deviceID {
			sensors = append(sensors, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(sensors, func(i, j int) bool { return sensors[i].ID < sensors[j].ID })
	return sensors, nil
}

// HasDevice reports whether a device is registered.
func (r *Registry) HasDevice(_ context.Context, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.devices[id]
	return ok
}

// HasSensor reports whether sensorID is registered on deviceID.
func (r *Registry) HasSensor(_ context.Context, deviceID, sensorID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sensors[sensorID]
	return ok && s.DeviceID == deviceID
}

// collect returns deep copies of devices matching keep, ordered by name then ID.
func (r *Registry) collect(keep func(*Device) bool) []Device {
	r.mu.RLock()
	devices := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		if keep(d) {
			devices = append(devices, *d.DeepCopy())
		}
	}
	r.mu.RUnlock()

	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Name != devices[j].Name {
			return devices[i].Name < devices[j].Name
		}
		return devices[i].ID < devices[j].ID
	})
	return devices
}

// Stats returns registry statistics for monitoring.
type Stats struct {
	TotalDevices int                `json:"total_devices"`
	TotalSensors int                `json:"total_sensors"`
	ByType       map[DeviceType]int `json:"by_type"`
	ByPlacement  map[Placement]int  `json:"by_placement"`
}

// Stats returns current registry statistics.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		TotalDevices: len(r.devices),
		TotalSensors: len(r.sensors),
		ByType:       make(map[DeviceType]int),
		ByPlacement:  make(map[Placement]int),
	}
	for _, d := range r.devices {
		stats.ByType[d.Type]++
		stats.ByPlacement[d.Placement]++
	}
	return stats
}
