package ingest

import "errors"

// Errors returned by Listener.Handle. The MQTT client logs them; the
// message is dropped either way.
var (
	// ErrInvalidTopic is returned for topics that are not reading topics.
	ErrInvalidTopic = errors.New("ingest: invalid reading topic")

	// ErrInvalidPayload is returned for payloads that cannot be decoded.
	ErrInvalidPayload = errors.New("ingest: invalid payload")

	// ErrNotStarted is returned when Handle is called before Start.
	ErrNotStarted = errors.New("ingest: listener not started")
)
