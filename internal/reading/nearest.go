package reading

import (
	"context"
	"fmt"
	"time"
)

// NearestNow returns the reading whose timestamp is closest to now.
//
// Distance is absolute, so a reading slightly in the future can win over an
// older one in the past. When two readings are equally close the first one
// in records is returned.
//
// Returns ErrNoReadingsForSensor if records is empty.
func NearestNow(records []Record, now time.Time) (Record, error) {
	if len(records) == 0 {
		return Record{}, ErrNoReadingsForSensor
	}

	best := records[0]
	bestDist := absDuration(now.Sub(best.Timestamp))
	for _, r := range records[1:] {
		if d := absDuration(now.Sub(r.Timestamp)); d < bestDist {
			best, bestDist = r, d
		}
	}
	return best, nil
}

// LatestForSensor resolves the reading of one sensor closest to now.
//
// The sensor's history is collected from the device's readings; see
// NearestNow for the selection rule.
func LatestForSensor(ctx context.Context, store Store, deviceID, sensorID string, now time.Time) (Record, error) {
	all, err := store.ByDevice(ctx, deviceID)
	if err != nil {
		return Record{}, fmt.Errorf("loading device readings: %w", err)
	}

	candidates := make([]Record, 0, len(all))
	for _, r := range all {
		if r.SensorID == sensorID {
			candidates = append(candidates, r)
		}
	}

	rec, err := NearestNow(candidates, now)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s", err, sensorID)
	}
	return rec, nil
}

// absDuration returns the absolute value of a Duration.
func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
