package reading

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// MaxToleranceMinutes is the largest tolerance whose window fits in a
// time.Duration.
const MaxToleranceMinutes = math.MaxInt64 / int64(time.Minute)

// Correlation is the result of comparing two reading streams.
type Correlation struct {
	// MaxDifference is the largest absolute value gap among eligible pairs.
	MaxDifference float64 `json:"max_difference"`

	// Inside and Outside are the pair that produced MaxDifference.
	Inside  Record `json:"inside"`
	Outside Record `json:"outside"`

	// Pairs is the number of eligible pairs that were compared.
	Pairs int `json:"pairs"`
}

// MaxDifference returns the largest |inside - outside| value difference over
// every pair of readings whose timestamps are at most toleranceMinutes apart.
//
// The tolerance is a closed bound: a pair exactly toleranceMinutes apart is
// eligible. Pairs further apart are skipped.
//
// Errors:
//   - ErrInvalidTolerance if toleranceMinutes is negative or above MaxToleranceMinutes
//   - ErrNoMatchingPairs if either stream is empty or no pair is eligible
//   - ErrNonNumericValue if an eligible pair contains a text payload
func MaxDifference(inside, outside []Record, toleranceMinutes int) (float64, error) {
	c, err := Correlate(inside, outside, toleranceMinutes)
	if err != nil {
		return 0, err
	}
	return c.MaxDifference, nil
}

// Correlate is MaxDifference with the winning pair and pair count attached.
func Correlate(inside, outside []Record, toleranceMinutes int) (Correlation, error) {
	if toleranceMinutes < 0 {
		return Correlation{}, fmt.Errorf("%w: %d minutes", ErrInvalidTolerance, toleranceMinutes)
	}
	if int64(toleranceMinutes) > MaxToleranceMinutes {
		return Correlation{}, fmt.Errorf("%w: %d minutes exceeds %d", ErrInvalidTolerance, toleranceMinutes, MaxToleranceMinutes)
	}
	if len(inside) == 0 || len(outside) == 0 {
		return Correlation{}, ErrNoMatchingPairs
	}

	tolerance := time.Duration(toleranceMinutes) * time.Minute

	// Sorted copy of the outside stream so each inside reading only visits
	// the outside readings inside its window.
	sorted := make([]Record, len(outside))
	copy(sorted, outside)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var result Correlation
	best := -1.0

	for _, a := range inside {
		lower := a.Timestamp.Add(-tolerance)
		upper := a.Timestamp.Add(tolerance)

		idx := sort.Search(len(sorted), func(i int) bool {
			return !sorted[i].Timestamp.Before(lower)
		})

		for ; idx < len(sorted) && !sorted[idx].Timestamp.After(upper); idx++ {
			b := sorted[idx]

			av, ok := a.Value.Float()
			if !ok {
				return Correlation{}, fmt.Errorf("%w: reading %s", ErrNonNumericValue, a.ID)
			}
			bv, ok := b.Value.Float()
			if !ok {
				return Correlation{}, fmt.Errorf("%w: reading %s", ErrNonNumericValue, b.ID)
			}

			result.Pairs++
			if diff := math.Abs(av - bv); diff > best {
				best = diff
				result.MaxDifference = diff
				result.Inside = a
				result.Outside = b
			}
		}
	}

	if result.Pairs == 0 {
		return Correlation{}, ErrNoMatchingPairs
	}
	return result, nil
}

// CorrelateDevices compares the readings of two devices taken strictly
// between start and end.
//
// Both streams are loaded with ByDeviceWithinOpenInterval, then passed to
// Correlate.
func CorrelateDevices(ctx context.Context, store Store, insideDeviceID, outsideDeviceID string, start, end time.Time, toleranceMinutes int) (Correlation, error) {
	inside, err := store.ByDeviceWithinOpenInterval(ctx, insideDeviceID, start, end)
	if err != nil {
		return Correlation{}, fmt.Errorf("loading inside readings: %w", err)
	}

	outside, err := store.ByDeviceWithinOpenInterval(ctx, outsideDeviceID, start, end)
	if err != nil {
		return Correlation{}, fmt.Errorf("loading outside readings: %w", err)
	}

	return Correlate(inside, outside, toleranceMinutes)
}
