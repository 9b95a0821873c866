// Package device provides the Device Registry for Gray Logic Telemetry.
//
// The registry is the catalogue of every monitoring device installed in a
// house and of the sensors each device carries. Reading ingestion consults
// it before accepting a measurement, and the correlation endpoints use it to
// find indoor and outdoor devices.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                       Device Registry                         │
//	│                                                               │
//	│  ┌──────────────────┐   ┌──────────────────┐   ┌───────────┐  │
//	│  │     Registry     │   │    Validation    │   │ Inventory │  │
//	│  │  (registry.go)   │◀──│ (validation.go)  │   │  (YAML)   │  │
//	│  │ • devices        │   │ • names, types   │   │ • houses  │  │
//	│  │ • sensors        │   │ • placement      │   │ • devices │  │
//	│  └──────────────────┘   └──────────────────┘   └───────────┘  │
//	│           │                                          │        │
//	└───────────│──────────────────────────────────────────│────────┘
//	            ▼                                          ▼
//	   reading.Coordinator (Catalogue)          location.Registry
//
// # Key Types
//
//   - Device: a physical unit placed in a room (thermostat, weather station)
//   - Sensor: a single measurement channel on a device
//   - DeviceType: device classification used for grouping
//   - Placement: indoor or outdoor, used to pick correlation streams
//
// # Usage
//
//	locations := location.NewRegistry()
//	registry := device.NewRegistry(locations)
//	registry.SetLogger(log)
//
//	inv, err := device.LoadInventory("configs/inventory.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := inv.Apply(ctx, locations, registry); err != nil {
//	    return err
//	}
//
//	stations := registry.DevicesByType(ctx, device.DeviceTypeWeatherStation)
//
// # Thread Safety
//
// The Registry is safe for concurrent use. All operations are protected by
// a read-write mutex and return copies.
package device
