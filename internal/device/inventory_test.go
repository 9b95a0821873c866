package device

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nerrad567/gray-logic-telemetry/internal/location"
)

const testInventory = `
houses:
  - id: main
    name: Main House
    rooms:
      - id: lounge
        name: Lounge
      - id: garden
        name: Garden
devices:
  - id: lounge-thermostat
    name: Lounge Thermostat
    room_id: lounge
    type: thermostat
    placement: indoor
    sensors:
      - id: lounge-temp
        type: temperature
        unit: "°C"
  - id: garden-station
    name: Garden Weather Station
    room_id: garden
    type: weather_station
    placement: outdoor
    sensors:
      - id: garden-temp
        type: temperature
        unit: "°C"
      - id: garden-wind
        type: wind_speed
        unit: m/s
`

func TestLoadInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	if err := os.WriteFile(path, []byte(testInventory), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	inv, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory() error = %v", err)
	}
	if len(inv.Houses) != 1 || len(inv.Houses[0].Rooms) != 2 || len(inv.Devices) != 2 {
		t.Fatalf("LoadInventory() = %+v", inv)
	}

	ctx := context.Background()
	locs := location.NewRegistry()
	reg := NewRegistry(locs)
	if err := inv.Apply(ctx, locs, reg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !reg.HasDevice(ctx, "garden-station") || !reg.HasSensor(ctx, "garden-station", "garden-wind") {
		t.Error("inventory devices not registered")
	}
	sensors, err := reg.SensorsByDevice(ctx, "garden-station")
	if err != nil || len(sensors) != 2 {
		t.Errorf("SensorsByDevice() = %+v, %v", sensors, err)
	}
	if got := reg.DevicesByPlacement(ctx, PlacementOutdoor); len(got) != 1 {
		t.Errorf("DevicesByPlacement(outdoor) = %+v", got)
	}
}

func TestLoadInventory_Errors(t *testing.T) {
	if _, err := LoadInventory(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadInventory(missing) expected error")
	}
	if _, err := ParseInventory([]byte("houses: [")); !errors.Is(err, ErrInvalidInventory) {
		t.Errorf("ParseInventory(bad yaml) error = %v, want ErrInvalidInventory", err)
	}
}

func TestInventory_ApplyUnknownRoom(t *testing.T) {
	inv, err := ParseInventory([]byte(`
devices:
  - id: d1
    name: Orphan
    room_id: nowhere
    type: thermostat
    placement: indoor
`))
	if err != nil {
		t.Fatalf("ParseInventory() error = %v", err)
	}

	locs := location.NewRegistry()
	err = inv.Apply(context.Background(), locs, NewRegistry(locs))
	if !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Apply() error = %v, want ErrRoomNotFound", err)
	}
}
