package ingest

import (
	"time"

	"github.com/nerrad567/gray-logic-telemetry/internal/reading"
)

// MetricWriter accepts numeric readings. Satisfied by *influxdb.Client.
type MetricWriter interface {
	WriteSensorReading(deviceID, sensorID string, value float64, ts time.Time)
}

// Mirror copies numeric readings to a MetricWriter. Register it with
// Coordinator.AddObserver. Text readings are skipped.
type Mirror struct {
	writer MetricWriter
}

// NewMirror creates a mirror writing to w.
func NewMirror(w MetricWriter) *Mirror {
	return &Mirror{writer: w}
}

// OnReadingRecorded implements reading.Observer.
func (m *Mirror) OnReadingRecorded(rec reading.Record) {
	f, ok := rec.Value.Float()
	if !ok {
		return
	}
	m.writer.WriteSensorReading(rec.DeviceID, rec.SensorID, f, rec.Timestamp)
}
