package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes.
//
// Sensors publish readings on graylogic/reading/{device_id}/{sensor_id}.
// The service publishes its own retained status under graylogic/system.
const (
	TopicPrefix       = "graylogic"
	TopicPrefixSystem = "graylogic/system"

	readingSegment = "reading"
)

// Topics provides builders for Gray Logic MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.Reading("garden-station", "garden-temp")
//	// Returns: "graylogic/reading/garden-station/garden-temp"
type Topics struct{}

// Reading returns the ingest topic for one sensor.
//
// Example: graylogic/reading/garden-station/garden-temp
func (Topics) Reading(deviceID, sensorID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", TopicPrefix, readingSegment, deviceID, sensorID)
}

// AllReadings returns a pattern matching every reading topic.
//
// Pattern: graylogic/reading/+/+
func (Topics) AllReadings() string {
	return fmt.Sprintf("%s/%s/+/+", TopicPrefix, readingSegment)
}

// TelemetryStatus returns the retained online/offline status topic.
//
// Example: graylogic/system/telemetry/status
func (Topics) TelemetryStatus() string {
	return fmt.Sprintf("%s/telemetry/status", TopicPrefixSystem)
}

// ParseReadingTopic extracts the device and sensor IDs from a reading topic.
// ok is false if the topic does not have exactly that shape.
func ParseReadingTopic(topic string) (deviceID, sensorID string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != TopicPrefix || parts[1] != readingSegment {
		return "", "", false
	}
	if parts[2] == "" || parts[3] == "" || strings.ContainsAny(parts[2]+parts[3], "+#") {
		return "", "", false
	}
	return parts[2], parts[3], true
}
