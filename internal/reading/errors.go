package reading

import "errors"

// Domain errors for the reading package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, reading.ErrNoMatchingPairs) {
//	    // no comparable readings in the window
//	}
var (
	// ErrDuplicateIdentity is returned when saving a reading whose ID is already stored.
	ErrDuplicateIdentity = errors.New("reading: duplicate identity")

	// ErrInvalidRange is returned when an interval query has start after end.
	ErrInvalidRange = errors.New("reading: invalid range")

	// ErrNoReadingsForSensor is returned when a nearest-to-now lookup has no candidates.
	ErrNoReadingsForSensor = errors.New("reading: no readings for sensor")

	// ErrDeviceNotFound is returned when ingesting for an unknown device.
	ErrDeviceNotFound = errors.New("reading: device not found")

	// ErrSensorNotFound is returned when ingesting for an unknown sensor.
	ErrSensorNotFound = errors.New("reading: sensor not found")

	// ErrNoMatchingPairs is returned when correlation finds no pair of readings
	// within the tolerance window. A genuine zero difference is reported as 0
	// with a nil error; this error means there was nothing to compare.
	ErrNoMatchingPairs = errors.New("reading: no matching pairs")

	// ErrNonNumericValue is returned when a correlated reading is not numeric.
	ErrNonNumericValue = errors.New("reading: non-numeric value")

	// ErrInvalidTolerance is returned when the correlation tolerance is negative
	// or too large to express as a duration.
	ErrInvalidTolerance = errors.New("reading: invalid tolerance")

	// ErrInvalidReading is returned when an ingest request is incomplete.
	ErrInvalidReading = errors.New("reading: invalid")
)
