package device

import "time"

// Device represents a monitoring unit installed in a house.
type Device struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	// Location (empty for devices not yet assigned to a room)
	RoomID string `json:"room_id,omitempty"`

	// Classification
	Type      DeviceType `json:"type"`
	Placement Placement  `json:"placement"`

	// Metadata
	Manufacturer string   `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
	Tags         []string `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// DeepCopy creates an independent copy of the Device so cached values
// cannot be mutated through a returned pointer or slice.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}
	cp := *d
	if d.Tags != nil {
		cp.Tags = make([]string, len(d.Tags))
		copy(cp.Tags, d.Tags)
	}
	return &cp
}

// Sensor is a single measurement channel on a device.
type Sensor struct {
	ID       string     `json:"id"`
	DeviceID string     `json:"device_id"`
	Name     string     `json:"name,omitempty"`
	Type     SensorType `json:"type"`
	Unit     string     `json:"unit,omitempty"`
}

// DeviceType classifies devices for grouping and dashboards.
type DeviceType string

// Device types.
const (
	DeviceTypeWeatherStation    DeviceType = "weather_station"
	DeviceTypeThermostat        DeviceType = "thermostat"
	DeviceTypeMultiSensor       DeviceType = "multi_sensor"
	DeviceTypeAirQualityMonitor DeviceType = "air_quality_monitor"
	DeviceTypeDoorSensor        DeviceType = "door_sensor"
	DeviceTypeSmartPlug         DeviceType = "smart_plug"
	DeviceTypeEnergyMeter       DeviceType = "energy_meter"
)

// AllDeviceTypes returns all valid device types.
func AllDeviceTypes() []DeviceType {
	return []DeviceType{
		DeviceTypeWeatherStation,
		DeviceTypeThermostat,
		DeviceTypeMultiSensor,
		DeviceTypeAirQualityMonitor,
		DeviceTypeDoorSensor,
		DeviceTypeSmartPlug,
		DeviceTypeEnergyMeter,
	}
}

// Placement says whether a device measures inside or outside the building.
type Placement string

// Placements.
const (
	PlacementIndoor  Placement = "indoor"
	PlacementOutdoor Placement = "outdoor"
)

// SensorType names the quantity a sensor measures. It is informational;
// any type string is accepted.
type SensorType string

// Common sensor types.
const (
	SensorTypeTemperature SensorType = "temperature"
	SensorTypeHumidity    SensorType = "humidity"
	SensorTypePressure    SensorType = "pressure"
	SensorTypeCO2         SensorType = "co2"
	SensorTypeWindSpeed   SensorType = "wind_speed"
	SensorTypeContact     SensorType = "contact"
	SensorTypePower       SensorType = "power"
)
