package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nerrad567/gray-logic-telemetry/internal/reading"
)

// correlationResponse is the body of a successful max-difference query.
type correlationResponse struct {
	MaxDifference    float64    `json:"max_difference"`
	ToleranceMinutes int        `json:"tolerance_minutes"`
	Pairs            int        `json:"pairs"`
	Inside           ReadingDTO `json:"inside"`
	Outside          ReadingDTO `json:"outside"`
}

// handleMaxDifference compares an inside and an outside device over a
// window and returns the largest value gap between readings taken within
// the tolerance of each other.
//
// Query parameters:
//   - inside, outside: device IDs (required)
//   - start, end: RFC 3339 window, exclusive (required)
//   - tolerance: minutes (optional, defaults to correlation.default_tolerance_minutes)
func (s *Server) handleMaxDifference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	insideID, outsideID := q.Get("inside"), q.Get("outside")
	if insideID == "" || outsideID == "" {
		writeBadRequest(w, "inside and outside query parameters are required")
		return
	}
	for _, id := range []string{insideID, outsideID} {
		if !s.devices.HasDevice(ctx, id) {
			writeNotFound(w, "device not found: "+id)
			return
		}
	}

	start, end, _, err := parseBounds(r, true)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	tolerance, err := s.parseTolerance(q.Get("tolerance"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	c, err := reading.CorrelateDevices(ctx, s.store, insideID, outsideID, start, end, tolerance)
	if err != nil {
		s.writeReadingError(w, err, "failed to correlate readings")
		return
	}

	writeJSON(w, http.StatusOK, correlationResponse{
		MaxDifference:    c.MaxDifference,
		ToleranceMinutes: tolerance,
		Pairs:            c.Pairs,
		Inside:           newReadingDTO(c.Inside),
		Outside:          newReadingDTO(c.Outside),
	})
}

// parseTolerance applies the configured default and cap. Negative values
// are passed through so the correlator reports ErrInvalidTolerance.
func (s *Server) parseTolerance(raw string) (int, error) {
	if raw == "" {
		return s.corrCfg.DefaultToleranceMinutes, nil
	}
	tolerance, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("tolerance must be an integer number of minutes")
	}
	if limit := s.corrCfg.MaxToleranceMinutes; tolerance > limit {
		return 0, fmt.Errorf("tolerance exceeds maximum of %d minutes", limit)
	}
	return tolerance, nil
}
