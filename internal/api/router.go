package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-telemetry/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.With(s.requirePermission(auth.PermSystemAdmin)).Post("/auth/token", s.handleIssueToken)

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermInventoryRead))

				r.Get("/houses", s.handleListHouses)
				r.Get("/houses/{id}", s.handleGetHouse)
				r.Get("/houses/{id}/rooms", s.handleListRooms)
				r.Get("/rooms/{id}/devices", s.handleListRoomDevices)

				r.Get("/devices", s.handleListDevices)
				r.Get("/devices/stats", s.handleDeviceStats)
				r.Get("/devices/{id}", s.handleGetDevice)
				r.Get("/devices/{id}/sensors", s.handleListSensors)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermReadingRead))

				r.Get("/devices/{id}/readings", s.handleDeviceReadings)
				r.Get("/devices/{id}/sensors/{sensorID}/readings", s.handleSensorReadings)
				r.Get("/devices/{id}/sensors/{sensorID}/readings/latest", s.handleLatestReading)

				r.Get("/readings", s.handleListReadings)
				r.Get("/readings/{id}", s.handleGetReading)

				r.Get("/correlations/max-difference", s.handleMaxDifference)

				r.Get("/ws", s.handleFeed)
			})

			r.With(s.requirePermission(auth.PermReadingWrite)).Post("/readings", s.handleCreateReading)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.logger.Error("health check: counting readings failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":  "degraded",
			"version": s.version,
		})
		return
	}

	resp := map[string]any{
		"status":   "ok",
		"version":  s.version,
		"readings": count,
		"devices":  s.devices.Stats(),
		"feed":     s.feed.Stats(),
	}
	if s.ingest != nil {
		resp["mqtt_ingest"] = s.ingest.Stats()
	}
	writeJSON(w, http.StatusOK, resp)
}
