package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement and tag names used for mirrored readings.
const (
	MeasurementSensorReadings = "sensor_readings"

	tagDeviceID = "device_id"
	tagSensorID = "sensor_id"
	fieldValue  = "value"
)

// WriteSensorReading queues one numeric reading for the mirror bucket.
//
// The point is written at the reading's own timestamp so late or replayed
// readings land in the right place. Dropped silently when disconnected.
//
// Example:
//
//	client.WriteSensorReading("garden-station", "garden-temp", 4.5, ts)
func (c *Client) WriteSensorReading(deviceID, sensorID string, value float64, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(sensorReadingPoint(deviceID, sensorID, value, ts))
}

func sensorReadingPoint(deviceID, sensorID string, value float64, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementSensorReadings,
		map[string]string{
			tagDeviceID: deviceID,
			tagSensorID: sensorID,
		},
		map[string]interface{}{
			fieldValue: value,
		},
		ts,
	)
}
