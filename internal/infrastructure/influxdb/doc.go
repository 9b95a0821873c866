// Package influxdb mirrors sensor readings into InfluxDB v2.
//
// The reading store remains the system of record. This package is an
// optional sink for dashboards and long-term retention: numeric readings
// are written to the sensor_readings measurement tagged with device_id and
// sensor_id, with the reading's own timestamp.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteSensorReading("garden-station", "garden-temp", 4.5, ts)
//
// # Error Handling
//
// Writes are non-blocking and batched (batch_size, flush_interval). Batch
// failures arrive asynchronously via SetOnError. Connection and health check
// errors are returned directly.
package influxdb
