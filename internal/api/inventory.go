package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-telemetry/internal/device"
	"github.com/nerrad567/gray-logic-telemetry/internal/location"
)

// handleListHouses returns all houses sorted by name.
func (s *Server) handleListHouses(w http.ResponseWriter, r *http.Request) {
	houses := s.locations.ListHouses(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"houses": houses, "count": len(houses)})
}

// handleGetHouse returns a single house by ID.
func (s *Server) handleGetHouse(w http.ResponseWriter, r *http.Request) {
	house, err := s.locations.GetHouse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, location.ErrHouseNotFound) {
			writeNotFound(w, "house not found")
			return
		}
		writeInternalError(w, "failed to get house")
		return
	}
	writeJSON(w, http.StatusOK, house)
}

// handleListRooms returns the rooms of a house.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.locations.ListRoomsByHouse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, location.ErrHouseNotFound) {
			writeNotFound(w, "house not found")
			return
		}
		writeInternalError(w, "failed to list rooms")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms, "count": len(rooms)})
}

// handleListRoomDevices returns the devices installed in a room.
func (s *Server) handleListRoomDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roomID := chi.URLParam(r, "id")
	if _, err := s.locations.GetRoom(ctx, roomID); err != nil {
		writeNotFound(w, "room not found")
		return
	}
	devices := s.devices.DevicesByRoom(ctx, roomID)
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleListDevices returns all devices, with optional query filters.
//
// Query parameters:
//   - type: filter by device type (thermostat, weather_station, etc.)
//   - placement: filter by placement (indoor, outdoor)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var devices []device.Device
	switch {
	case q.Get("type") != "":
		t := device.DeviceType(q.Get("type"))
		if err := device.ValidateDeviceType(t); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		devices = s.devices.DevicesByType(ctx, t)
	case q.Get("placement") != "":
		p := device.Placement(q.Get("placement"))
		if err := device.ValidatePlacement(p); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		devices = s.devices.DevicesByPlacement(ctx, p)
	default:
		devices = s.devices.ListDevices(ctx)
	}

	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleDeviceStats returns device registry statistics.
func (s *Server) handleDeviceStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.devices.Stats())
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	dev, err := s.devices.GetDevice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleListSensors returns the sensors of a device.
func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := s.devices.SensorsByDevice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to list sensors")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sensors": sensors, "count": len(sensors)})
}
