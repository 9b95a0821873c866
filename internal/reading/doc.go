// Package reading provides the sensor reading store and temporal correlation
// engine for Gray Logic Telemetry.
//
// A reading is an immutable measurement taken by one sensor of one device at
// one instant. Readings are appended to a Store and never changed or removed.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│                           Reading Core                               │
//	│                                                                      │
//	│  ┌──────────────────┐    ┌──────────────────┐    ┌────────────────┐  │
//	│  │   Coordinator    │───▶│      Store       │◀───│  NearestNow    │  │
//	│  │ (coordinator.go) │    │    (store.go)    │    │  (nearest.go)  │  │
//	│  │                  │    │                  │    └────────────────┘  │
//	│  │ • device check   │    │ • MemoryStore    │    ┌────────────────┐  │
//	│  │ • sensor check   │    │ • SQLiteStore    │◀───│ MaxDifference  │  │
//	│  │ • id allocation  │    │ • closed / open  │    │ (correlate.go) │  │
//	│  │ • observers      │    │   intervals      │    └────────────────┘  │
//	│  └──────────────────┘    └──────────────────┘                        │
//	└──────────────────────────────────────────────────────────────────────┘
//
// # Interval Semantics
//
// Two range queries coexist on purpose and are named so they cannot be
// confused:
//
//   - ByDeviceAndSensorWithinClosedInterval: start <= timestamp <= end
//   - ByDeviceWithinOpenInterval:            start <  timestamp <  end
//
// # Latest Reading
//
// NearestNow returns the reading whose timestamp is closest to the current
// instant in either direction. This is not the chronologically newest
// reading: a reading dated two minutes in the future beats one taken ten
// minutes ago. Callers relying on "latest" must be aware of this.
//
// # Usage
//
//	store := reading.NewMemoryStore()
//	coord := reading.NewCoordinator(store, deviceRegistry)
//	coord.SetLogger(log)
//
//	rec, err := coord.Record(ctx, reading.Input{
//	    DeviceID: "thermostat-lounge",
//	    SensorID: "temp-lounge",
//	    Value:    "21.5",
//	})
//
//	latest, err := reading.LatestForSensor(ctx, store, "thermostat-lounge", "temp-lounge", time.Now())
//
//	result, err := reading.CorrelateDevices(ctx, store, "thermostat-lounge", "weather-roof",
//	    start, end, 5)
//
// # Thread Safety
//
// Store implementations and the Coordinator are safe for concurrent use.
// Save is exclusive; queries may run concurrently with each other.
package reading
