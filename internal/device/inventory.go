package device

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/gray-logic-telemetry/internal/location"
)

// Inventory is the declarative list of houses, rooms, devices and sensors
// loaded at startup.
//
// Example:
//
//	houses:
//	  - id: main
//	    name: Main House
//	    rooms:
//	      - id: lounge
//	        name: Lounge
//	devices:
//	  - id: lounge-thermostat
//	    name: Lounge Thermostat
//	    room_id: lounge
//	    type: thermostat
//	    placement: indoor
//	    sensors:
//	      - id: lounge-temp
//	        type: temperature
//	        unit: "°C"
type Inventory struct {
	Houses  []InventoryHouse  `yaml:"houses"`
	Devices []InventoryDevice `yaml:"devices"`
}

// InventoryHouse is a house entry with its rooms.
type InventoryHouse struct {
	ID    string          `yaml:"id"`
	Name  string          `yaml:"name"`
	Rooms []InventoryRoom `yaml:"rooms"`
}

// InventoryRoom is a room entry nested under a house.
type InventoryRoom struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// InventoryDevice is a device entry with its sensors.
type InventoryDevice struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	RoomID       string            `yaml:"room_id"`
	Type         DeviceType        `yaml:"type"`
	Placement    Placement         `yaml:"placement"`
	Manufacturer string            `yaml:"manufacturer"`
	Model        string            `yaml:"model"`
	Tags         []string          `yaml:"tags"`
	Sensors      []InventorySensor `yaml:"sensors"`
}

// InventorySensor is a sensor entry nested under a device.
type InventorySensor struct {
	ID   string     `yaml:"id"`
	Name string     `yaml:"name"`
	Type SensorType `yaml:"type"`
	Unit string     `yaml:"unit"`
}

// LoadInventory reads an inventory YAML file.
func LoadInventory(path string) (*Inventory, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("reading inventory file: %w", err)
	}
	return ParseInventory(data)
}

// ParseInventory decodes inventory YAML.
func ParseInventory(data []byte) (*Inventory, error) {
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("%w: parsing yaml: %w", ErrInvalidInventory, err)
	}
	return &inv, nil
}

// Apply registers the inventory in dependency order: houses, rooms,
// devices, then sensors. It stops at the first failure.
func (inv *Inventory) Apply(ctx context.Context, locations *location.Registry, devices *Registry) error {
	for _, h := range inv.Houses {
		if _, err := locations.AddHouse(ctx, location.House{ID: h.ID, Name: h.Name}); err != nil {
			return fmt.Errorf("house %q: %w", h.ID, err)
		}
		for _, room := range h.Rooms {
			if _, err := locations.AddRoom(ctx, location.Room{ID: room.ID, HouseID: h.ID, Name: room.Name}); err != nil {
				return fmt.Errorf("room %q: %w", room.ID, err)
			}
		}
	}

	for _, d := range inv.Devices {
		dev := &Device{
			ID:           d.ID,
			Name:         d.Name,
			RoomID:       d.RoomID,
			Type:         d.Type,
			Placement:    d.Placement,
			Manufacturer: d.Manufacturer,
			Model:        d.Model,
			Tags:         d.Tags,
		}
		if err := devices.AddDevice(ctx, dev); err != nil {
			return fmt.Errorf("device %q: %w", d.ID, err)
		}
		for _, s := range d.Sensors {
			sensor := &Sensor{ID: s.ID, DeviceID: dev.ID, Name: s.Name, Type: s.Type, Unit: s.Unit}
			if err := devices.AddSensor(ctx, sensor); err != nil {
				return fmt.Errorf("sensor %q: %w", s.ID, err)
			}
		}
	}
	return nil
}
