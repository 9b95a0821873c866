// Package ingest connects the reading coordinator to the outside world.
//
// Listener turns MQTT messages on graylogic/reading/{device_id}/{sensor_id}
// into Coordinator.Record calls. Mirror is a coordinator observer that
// copies numeric readings into InfluxDB.
//
//	Broker → Listener → reading.Coordinator → Store
//	                                        → Mirror → InfluxDB
//
// Malformed messages are dropped and counted; they never reach the store.
package ingest
