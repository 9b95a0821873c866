// Package api implements the HTTP REST API and WebSocket feed for
// Gray Logic Telemetry.
//
// This package provides:
//   - Reading ingest and interval queries
//   - Nearest-to-now lookup per sensor
//   - Indoor/outdoor stream correlation
//   - Read-only inventory (houses, rooms, devices, sensors)
//   - WebSocket reading feed filtered by device and sensor
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Security
//
// When security.jwt.secret is set every route except /health requires an
// HS256 bearer token whose role grants the route's permission. WebSocket
// clients may pass the token as ?token= since browsers cannot set headers
// on the upgrade request. With no secret the API is open.
//
// # Transfer format
//
// Readings are returned as
//
//	{"reading_id": "...", "value": "21.5", "device_id": "...", "sensor_id": "...", "timestamp": "2026-01-15T12:00:00Z"}
//
// with the value always a string, exactly as received.
//
// # Reading feed
//
// GET /ws upgrades to a WebSocket. Clients send
//
//	{"type": "watch", "id": "1", "filter": {"device_ids": ["garden-station"]}}
//
// and then receive {"type": "reading", "reading": {...}} for each stored
// reading that matches. An empty filter watches everything; "unwatch"
// stops the stream. The filter can also be given up front as repeated
// device_id and sensor_id query parameters.
package api
