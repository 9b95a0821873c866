package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-telemetry/internal/device"
	"github.com/nerrad567/gray-logic-telemetry/internal/ingest"
	"github.com/nerrad567/gray-logic-telemetry/internal/reading"
)

// ReadingDTO is the transfer representation of a reading.
type ReadingDTO struct {
	ReadingID string `json:"reading_id"`
	Value     string `json:"value"`
	DeviceID  string `json:"device_id"`
	SensorID  string `json:"sensor_id"`
	Timestamp string `json:"timestamp"`
}

// newReadingDTO converts a stored record for the wire.
func newReadingDTO(rec reading.Record) ReadingDTO {
	return ReadingDTO{
		ReadingID: rec.ID,
		Value:     rec.Value.String(),
		DeviceID:  rec.DeviceID,
		SensorID:  rec.SensorID,
		Timestamp: rec.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// newReadingList sorts records by timestamp (then ID) and converts them.
func newReadingList(records []reading.Record) []ReadingDTO {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].ID < records[j].ID
		}
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	out := make([]ReadingDTO, len(records))
	for i, rec := range records {
		out[i] = newReadingDTO(rec)
	}
	return out
}

func writeReadings(w http.ResponseWriter, records []reading.Record) {
	list := newReadingList(records)
	writeJSON(w, http.StatusOK, map[string]any{"readings": list, "count": len(list)})
}

// createReadingRequest is the body of POST /readings. Value may be a JSON
// number or string; timestamp is optional RFC 3339.
type createReadingRequest struct {
	DeviceID string `json:"device_id"`
	SensorID string `json:"sensor_id"`
	ingest.Payload
}

// handleCreateReading validates and stores a new reading.
func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	var req createReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	in, err := req.Input()
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	in.DeviceID = req.DeviceID
	in.SensorID = req.SensorID

	rec, err := s.coordinator.Record(r.Context(), in)
	if err != nil {
		s.writeReadingError(w, err, "failed to record reading")
		return
	}

	writeJSON(w, http.StatusCreated, newReadingDTO(rec))
}

// handleListReadings returns every stored reading.
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.FindAll(r.Context())
	if err != nil {
		s.writeReadingError(w, err, "failed to list readings")
		return
	}
	writeReadings(w, records)
}

// handleGetReading returns a single reading by ID.
func (s *Server) handleGetReading(w http.ResponseWriter, r *http.Request) {
	rec, found, err := s.store.OfIdentity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeReadingError(w, err, "failed to get reading")
		return
	}
	if !found {
		writeNotFound(w, "reading not found")
		return
	}
	writeJSON(w, http.StatusOK, newReadingDTO(rec))
}

// handleDeviceReadings returns a device's readings.
//
// Query parameters:
//   - start, end: RFC 3339 bounds, both or neither. When given only
//     readings strictly between them are returned.
func (s *Server) handleDeviceReadings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := chi.URLParam(r, "id")
	if !s.devices.HasDevice(ctx, deviceID) {
		writeNotFound(w, "device not found")
		return
	}

	start, end, bounded, err := parseBounds(r, false)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var records []reading.Record
	if bounded {
		records, err = s.store.ByDeviceWithinOpenInterval(ctx, deviceID, start, end)
	} else {
		records, err = s.store.ByDevice(ctx, deviceID)
	}
	if err != nil {
		s.writeReadingError(w, err, "failed to list readings")
		return
	}
	writeReadings(w, records)
}

// handleSensorReadings returns one sensor's readings with
// start <= timestamp <= end. Both bounds are required.
func (s *Server) handleSensorReadings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID, sensorID, ok := s.resolveSensor(w, r)
	if !ok {
		return
	}

	start, end, _, err := parseBounds(r, true)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	records, err := s.store.ByDeviceAndSensorWithinClosedInterval(ctx, deviceID, sensorID, start, end)
	if err != nil {
		s.writeReadingError(w, err, "failed to list readings")
		return
	}
	writeReadings(w, records)
}

// handleLatestReading returns the sensor reading closest to the current
// time, in either direction.
func (s *Server) handleLatestReading(w http.ResponseWriter, r *http.Request) {
	deviceID, sensorID, ok := s.resolveSensor(w, r)
	if !ok {
		return
	}

	rec, err := reading.LatestForSensor(r.Context(), s.store, deviceID, sensorID, s.now())
	if err != nil {
		s.writeReadingError(w, err, "failed to resolve latest reading")
		return
	}
	writeJSON(w, http.StatusOK, newReadingDTO(rec))
}

// resolveSensor checks that the {id} device exists and owns {sensorID}.
func (s *Server) resolveSensor(w http.ResponseWriter, r *http.Request) (deviceID, sensorID string, ok bool) {
	deviceID = chi.URLParam(r, "id")
	sensorID = chi.URLParam(r, "sensorID")

	if !s.devices.HasDevice(r.Context(), deviceID) {
		writeNotFound(w, "device not found")
		return "", "", false
	}
	sensor, err := s.devices.GetSensor(r.Context(), sensorID)
	if err != nil || sensor.DeviceID != deviceID {
		if err != nil && !errors.Is(err, device.ErrSensorNotFound) {
			s.logger.Error("sensor lookup failed", "sensor_id", sensorID, "error", err)
		}
		writeNotFound(w, "sensor not found")
		return "", "", false
	}
	return deviceID, sensorID, true
}

// parseBounds reads the start and end query parameters. bounded reports
// whether both were given; supplying only one is an error.
func parseBounds(r *http.Request, required bool) (start, end time.Time, bounded bool, err error) {
	q := r.URL.Query()
	rawStart, rawEnd := q.Get("start"), q.Get("end")

	switch {
	case rawStart == "" && rawEnd == "":
		if required {
			return time.Time{}, time.Time{}, false, errors.New("start and end query parameters are required")
		}
		return time.Time{}, time.Time{}, false, nil
	case rawStart == "" || rawEnd == "":
		return time.Time{}, time.Time{}, false, errors.New("start and end must be given together")
	}

	start, err = parseTime("start", rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	end, err = parseTime("end", rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	return start, end, true, nil
}

func parseTime(name, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC 3339 timestamp", name)
	}
	return t, nil
}
