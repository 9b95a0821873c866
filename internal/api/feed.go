package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-telemetry/internal/reading"
)

// Feed message types.
const (
	FeedMsgWatch   = "watch"   // client: start or replace the reading filter
	FeedMsgUnwatch = "unwatch" // client: stop receiving readings
	FeedMsgPing    = "ping"
	FeedMsgPong    = "pong"
	FeedMsgReading = "reading" // server: a stored reading that matched
	FeedMsgAck     = "ack"
	FeedMsgError   = "error"

	feedSendBuffer = 256

	defaultPingInterval = 30 * time.Second
	defaultPongTimeout  = 10 * time.Second
)

// FeedFilter selects the readings a subscriber receives. An empty list
// matches anything; DeviceIDs and SensorIDs must both match.
type FeedFilter struct {
	DeviceIDs []string `json:"device_ids,omitempty"`
	SensorIDs []string `json:"sensor_ids,omitempty"`
}

// Matches reports whether rec passes the filter.
func (f FeedFilter) Matches(rec reading.Record) bool {
	return matchesAny(f.DeviceIDs, rec.DeviceID) && matchesAny(f.SensorIDs, rec.SensorID)
}

func matchesAny(ids []string, id string) bool {
	return len(ids) == 0 || slices.Contains(ids, id)
}

// FeedMessage is the envelope for every frame on the feed, in both directions.
type FeedMessage struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Filter  *FeedFilter `json:"filter,omitempty"`
	Reading *ReadingDTO `json:"reading,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// FeedStats is reported on the health endpoint.
type FeedStats struct {
	Subscribers int   `json:"subscribers"`
	Watching    int   `json:"watching"`
	Delivered   int64 `json:"delivered"`
	Dropped     int64 `json:"dropped"`
}

// Feed streams stored readings to WebSocket subscribers. It implements
// reading.Observer.
//
// Sends to a subscriber happen under the read lock and its channel is only
// closed under the write lock, so a reading is never offered to a closed
// channel.
type Feed struct {
	logger *logging.Logger

	mu          sync.RWMutex
	subscribers map[*feedSubscriber]struct{}

	delivered atomic.Int64
	dropped   atomic.Int64
}

// feedSubscriber is one WebSocket connection. filter is nil until the
// client watches.
type feedSubscriber struct {
	conn    *websocket.Conn
	send    chan []byte
	subject string

	mu     sync.RWMutex
	filter *FeedFilter
}

func (s *feedSubscriber) wants(rec reading.Record) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter != nil && s.filter.Matches(rec)
}

func (s *feedSubscriber) watching() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter != nil
}

func (s *feedSubscriber) setFilter(f *FeedFilter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// offer queues data without blocking. A full buffer drops the frame.
func (s *feedSubscriber) offer(data []byte) bool {
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// upgrader configures the WebSocket upgrader. Origin checking is left to
// the CORS middleware.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// NewFeed creates an empty reading feed.
func NewFeed(logger *logging.Logger) *Feed {
	return &Feed{
		logger:      logger,
		subscribers: make(map[*feedSubscriber]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every subscriber.
func (f *Feed) Run(ctx context.Context) {
	<-ctx.Done()

	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subscribers {
		close(sub.send)
		if sub.conn != nil {
			sub.conn.Close()
		}
		delete(f.subscribers, sub)
	}
}

func (f *Feed) add(sub *feedSubscriber) {
	f.mu.Lock()
	f.subscribers[sub] = struct{}{}
	n := len(f.subscribers)
	f.mu.Unlock()
	f.logger.Debug("feed subscriber connected", "subject", sub.subject, "subscribers", n)
}

// remove drops sub and closes its channel. Safe to call after Run has
// already closed it.
func (f *Feed) remove(sub *feedSubscriber) {
	f.mu.Lock()
	_, ok := f.subscribers[sub]
	if ok {
		delete(f.subscribers, sub)
		close(sub.send)
	}
	n := len(f.subscribers)
	f.mu.Unlock()
	if ok {
		f.logger.Debug("feed subscriber disconnected", "subject", sub.subject, "subscribers", n)
	}
}

// OnReadingRecorded offers rec to every subscriber whose filter matches.
// It never blocks; frames for slow subscribers are dropped and counted.
func (f *Feed) OnReadingRecorded(rec reading.Record) {
	dto := newReadingDTO(rec)
	data, err := json.Marshal(FeedMessage{Type: FeedMsgReading, Reading: &dto})
	if err != nil {
		f.logger.Error("encoding feed reading", "id", rec.ID, "error", err)
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subscribers {
		if !sub.wants(rec) {
			continue
		}
		if sub.offer(data) {
			f.delivered.Add(1)
		} else {
			f.dropped.Add(1)
			f.logger.Warn("feed subscriber too slow, reading dropped", "subject", sub.subject, "id", rec.ID)
		}
	}
}

// reply queues a control frame for sub if it is still connected.
func (f *Feed) reply(sub *feedSubscriber, msg FeedMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if _, ok := f.subscribers[sub]; ok {
		sub.offer(data)
	}
}

// Stats returns a snapshot of subscriber and delivery counters.
func (f *Feed) Stats() FeedStats {
	f.mu.RLock()
	stats := FeedStats{Subscribers: len(f.subscribers)}
	for sub := range f.subscribers {
		if sub.watching() {
			stats.Watching++
		}
	}
	f.mu.RUnlock()

	stats.Delivered = f.delivered.Load()
	stats.Dropped = f.dropped.Load()
	return stats
}

// handleFeed upgrades to a WebSocket reading feed.
//
// device_id and sensor_id query parameters (repeatable) start watching
// immediately; otherwise the client sends a watch message. Unknown IDs in
// the query are rejected before the upgrade.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var initial *FeedFilter
	if q.Has("device_id") || q.Has("sensor_id") {
		filter := FeedFilter{DeviceIDs: q["device_id"], SensorIDs: q["sensor_id"]}
		if err := s.validateFeedFilter(r.Context(), filter); err != nil {
			writeNotFound(w, err.Error())
			return
		}
		initial = &filter
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sub := &feedSubscriber{
		conn:   conn,
		send:   make(chan []byte, feedSendBuffer),
		filter: initial,
	}
	if claims := claimsFromContext(r.Context()); claims != nil {
		sub.subject = claims.Subject
	}

	s.feed.add(sub)

	go s.feedWriteLoop(sub)
	go s.feedReadLoop(context.WithoutCancel(r.Context()), sub)
}

// validateFeedFilter rejects unknown devices and sensors, and sensors that
// belong to none of the listed devices, since such a filter never matches.
func (s *Server) validateFeedFilter(ctx context.Context, f FeedFilter) error {
	for _, id := range f.DeviceIDs {
		if !s.devices.HasDevice(ctx, id) {
			return fmt.Errorf("unknown device %q", id)
		}
	}
	for _, id := range f.SensorIDs {
		sensor, err := s.devices.GetSensor(ctx, id)
		if err != nil {
			return fmt.Errorf("unknown sensor %q", id)
		}
		if !matchesAny(f.DeviceIDs, sensor.DeviceID) {
			return fmt.Errorf("sensor %q belongs to device %q, which is not watched", id, sensor.DeviceID)
		}
	}
	return nil
}

// feedReadLoop handles client frames until the connection drops.
func (s *Server) feedReadLoop(ctx context.Context, sub *feedSubscriber) {
	defer func() {
		s.feed.remove(sub)
		sub.conn.Close()
	}()

	sub.conn.SetReadLimit(int64(s.wsCfg.MaxMessageSize))
	pingInterval, pongWait := wsTimings(s.wsCfg.PingInterval, s.wsCfg.PongTimeout)
	extend := func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	}
	extend("") //nolint:errcheck // best-effort deadline
	sub.conn.SetPongHandler(extend)

	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("feed read error", "subject", sub.subject, "error", err)
			}
			return
		}
		extend("") //nolint:errcheck // any frame counts as liveness
		s.feed.reply(sub, s.handleFeedMessage(ctx, sub, data))
	}
}

// handleFeedMessage applies one client frame and returns the reply.
func (s *Server) handleFeedMessage(ctx context.Context, sub *feedSubscriber, data []byte) FeedMessage {
	var msg FeedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return FeedMessage{Type: FeedMsgError, Error: "invalid JSON message"}
	}

	switch msg.Type {
	case FeedMsgWatch:
		var filter FeedFilter
		if msg.Filter != nil {
			filter = *msg.Filter
		}
		if err := s.validateFeedFilter(ctx, filter); err != nil {
			return FeedMessage{Type: FeedMsgError, ID: msg.ID, Error: err.Error()}
		}
		sub.setFilter(&filter)
		s.logger.Info("feed watch",
			"subject", sub.subject,
			"devices", filter.DeviceIDs,
			"sensors", filter.SensorIDs,
		)
		return FeedMessage{Type: FeedMsgAck, ID: msg.ID, Filter: &filter}
	case FeedMsgUnwatch:
		sub.setFilter(nil)
		return FeedMessage{Type: FeedMsgAck, ID: msg.ID}
	case FeedMsgPing:
		return FeedMessage{Type: FeedMsgPong, ID: msg.ID}
	default:
		return FeedMessage{Type: FeedMsgError, ID: msg.ID, Error: "unknown message type: " + msg.Type}
	}
}

// feedWriteLoop drains sub.send to the connection and keeps it alive with
// pings. It exits when the channel is closed or a write fails.
func (s *Server) feedWriteLoop(sub *feedSubscriber) {
	pingInterval, pongWait := wsTimings(s.wsCfg.PingInterval, s.wsCfg.PongTimeout)
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		sub.conn.SetWriteDeadline(time.Now().Add(pongWait)) //nolint:errcheck // write error is reported below
		return sub.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data, ok := <-sub.send:
			if !ok {
				write(websocket.CloseMessage, nil) //nolint:errcheck // closing anyway
				return
			}
			if err := write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// wsTimings converts the configured seconds, falling back to defaults for
// unset values.
func wsTimings(pingSeconds, pongSeconds int) (pingInterval, pongWait time.Duration) {
	pingInterval, pongWait = defaultPingInterval, defaultPongTimeout
	if pingSeconds > 0 {
		pingInterval = time.Duration(pingSeconds) * time.Second
	}
	if pongSeconds > 0 {
		pongWait = time.Duration(pongSeconds) * time.Second
	}
	return pingInterval, pongWait
}
