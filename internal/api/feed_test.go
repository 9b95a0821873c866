package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-telemetry/internal/auth"
	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-telemetry/internal/reading"
)

// dialFeed connects to the test server's /ws endpoint with optional query.
func dialFeed(t *testing.T, srv *httptest.Server, query url.Values) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return websocket.DefaultDialer.Dial(u, nil)
}

func readFeed(t *testing.T, conn *websocket.Conn) FeedMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second)) //nolint:errcheck // test deadline
	var msg FeedMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func writeFeed(t *testing.T, conn *websocket.Conn, msg FeedMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
}

func postReading(t *testing.T, srv *Server, body, token string) ReadingDTO {
	t.Helper()
	w := do(t, srv.buildRouter(), http.MethodPost, "/api/v1/readings", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST status = %d body = %s", w.Code, w.Body)
	}
	return decode[ReadingDTO](t, w)
}

func TestFeedFilter_Matches(t *testing.T) {
	rec := reading.Record{DeviceID: "garden-station", SensorID: "garden-temp"}

	tests := []struct {
		name   string
		filter FeedFilter
		want   bool
	}{
		{"empty matches all", FeedFilter{}, true},
		{"device listed", FeedFilter{DeviceIDs: []string{"lounge-thermostat", "garden-station"}}, true},
		{"device not listed", FeedFilter{DeviceIDs: []string{"lounge-thermostat"}}, false},
		{"sensor listed", FeedFilter{SensorIDs: []string{"garden-temp"}}, true},
		{"sensor not listed", FeedFilter{SensorIDs: []string{"garden-wind"}}, false},
		{"device and sensor", FeedFilter{DeviceIDs: []string{"garden-station"}, SensorIDs: []string{"garden-temp"}}, true},
		{"device but other sensor", FeedFilter{DeviceIDs: []string{"garden-station"}, SensorIDs: []string{"garden-wind"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(rec); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFeed_WatchDeviceOverWebSocket(t *testing.T) {
	srv, _ := testServer(t, testJWTSecret)
	httpSrv := httptest.NewServer(srv.buildRouter())
	defer httpSrv.Close()

	if _, resp, err := dialFeed(t, httpSrv, nil); err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("dial without token: err = %v", err)
	}

	conn, _, err := dialFeed(t, httpSrv, url.Values{"token": {mustToken(t, "dashboard", auth.RoleViewer)}})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	writeFeed(t, conn, FeedMessage{Type: FeedMsgWatch, ID: "1", Filter: &FeedFilter{DeviceIDs: []string{"garden-station"}}})
	ack := readFeed(t, conn)
	if ack.Type != FeedMsgAck || ack.ID != "1" || ack.Filter == nil || len(ack.Filter.DeviceIDs) != 1 {
		t.Fatalf("ack = %+v", ack)
	}

	sensor := mustToken(t, "gateway", auth.RoleSensor)
	postReading(t, srv, `{"device_id":"lounge-thermostat","sensor_id":"lounge-temp","value":"21.5"}`, sensor)
	want := postReading(t, srv, `{"device_id":"garden-station","sensor_id":"garden-wind","value":"4.2"}`, sensor)

	// The lounge reading is filtered out, so the next frame is the garden one.
	got := readFeed(t, conn)
	if got.Type != FeedMsgReading || got.Reading == nil {
		t.Fatalf("frame = %+v", got)
	}
	if *got.Reading != want {
		t.Errorf("reading = %+v, want %+v", *got.Reading, want)
	}

	if stats := srv.feed.Stats(); stats.Subscribers != 1 || stats.Watching != 1 || stats.Delivered != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestFeed_QueryFilter(t *testing.T) {
	srv, _ := testServer(t, "")
	httpSrv := httptest.NewServer(srv.buildRouter())
	defer httpSrv.Close()

	conn, _, err := dialFeed(t, httpSrv, url.Values{"sensor_id": {"lounge-temp"}})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	postReading(t, srv, `{"device_id":"garden-station","sensor_id":"garden-temp","value":"3"}`, "")
	want := postReading(t, srv, `{"device_id":"lounge-thermostat","sensor_id":"lounge-temp","value":"20"}`, "")

	got := readFeed(t, conn)
	if got.Reading == nil || got.Reading.ReadingID != want.ReadingID {
		t.Errorf("frame = %+v, want reading %s", got, want.ReadingID)
	}
}

func TestFeed_QueryFilterRejected(t *testing.T) {
	srv, _ := testServer(t, "")
	httpSrv := httptest.NewServer(srv.buildRouter())
	defer httpSrv.Close()

	tests := []struct {
		name  string
		query url.Values
	}{
		{"unknown device", url.Values{"device_id": {"ghost"}}},
		{"unknown sensor", url.Values{"sensor_id": {"ghost"}}},
		{"sensor of unwatched device", url.Values{"device_id": {"lounge-thermostat"}, "sensor_id": {"garden-temp"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := dialFeed(t, httpSrv, tt.query)
			if err == nil || resp == nil || resp.StatusCode != http.StatusNotFound {
				t.Errorf("Dial() err = %v resp = %v, want 404", err, resp)
			}
		})
	}
}

func TestFeed_ControlMessages(t *testing.T) {
	srv, _ := testServer(t, "")
	httpSrv := httptest.NewServer(srv.buildRouter())
	defer httpSrv.Close()

	conn, _, err := dialFeed(t, httpSrv, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	writeFeed(t, conn, FeedMessage{Type: FeedMsgPing, ID: "p1"})
	if msg := readFeed(t, conn); msg.Type != FeedMsgPong || msg.ID != "p1" {
		t.Errorf("ping reply = %+v", msg)
	}

	writeFeed(t, conn, FeedMessage{Type: FeedMsgWatch, ID: "w1", Filter: &FeedFilter{DeviceIDs: []string{"ghost"}}})
	if msg := readFeed(t, conn); msg.Type != FeedMsgError || msg.ID != "w1" || !strings.Contains(msg.Error, "ghost") {
		t.Errorf("watch reply = %+v", msg)
	}

	writeFeed(t, conn, FeedMessage{Type: "bogus", ID: "b1"})
	if msg := readFeed(t, conn); msg.Type != FeedMsgError || msg.ID != "b1" {
		t.Errorf("bogus reply = %+v", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	if msg := readFeed(t, conn); msg.Type != FeedMsgError {
		t.Errorf("invalid JSON reply = %+v", msg)
	}

	// Watch everything, then unwatch: the reading posted after unwatch is
	// not delivered, so the next frame is the pong.
	writeFeed(t, conn, FeedMessage{Type: FeedMsgWatch, ID: "w2"})
	if msg := readFeed(t, conn); msg.Type != FeedMsgAck {
		t.Fatalf("watch reply = %+v", msg)
	}
	writeFeed(t, conn, FeedMessage{Type: FeedMsgUnwatch, ID: "u1"})
	if msg := readFeed(t, conn); msg.Type != FeedMsgAck || msg.ID != "u1" {
		t.Fatalf("unwatch reply = %+v", msg)
	}
	postReading(t, srv, `{"device_id":"lounge-thermostat","sensor_id":"lounge-temp","value":"20"}`, "")
	writeFeed(t, conn, FeedMessage{Type: FeedMsgPing, ID: "p2"})
	if msg := readFeed(t, conn); msg.Type != FeedMsgPong || msg.ID != "p2" {
		t.Errorf("frame after unwatch = %+v", msg)
	}
}

func newTestFeed(t *testing.T) *Feed {
	t.Helper()
	return NewFeed(logging.NewWithWriter(config.LoggingConfig{Level: "error", Format: "text"}, "test", io.Discard))
}

func TestFeed_DeliveryAndDrops(t *testing.T) {
	feed := newTestFeed(t)
	sub := &feedSubscriber{send: make(chan []byte, 1)}
	feed.add(sub)

	rec := reading.Record{ID: "r1", DeviceID: "garden-station", SensorID: "garden-temp",
		Value: reading.ParseValue("3"), Timestamp: baseTime}

	feed.OnReadingRecorded(rec)
	if len(sub.send) != 0 {
		t.Fatal("subscriber without a filter received a reading")
	}

	sub.setFilter(&FeedFilter{DeviceIDs: []string{"garden-station"}})
	feed.OnReadingRecorded(rec)
	feed.OnReadingRecorded(rec) // buffer of one is now full

	stats := feed.Stats()
	if stats.Delivered != 1 || stats.Dropped != 1 || stats.Watching != 1 {
		t.Errorf("Stats() = %+v", stats)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		feed.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	if stats := feed.Stats(); stats.Subscribers != 0 {
		t.Errorf("Subscribers after Run = %d, want 0", stats.Subscribers)
	}
	<-sub.send // buffered frame
	if _, ok := <-sub.send; ok {
		t.Error("send channel not closed")
	}
	feed.remove(sub) // already gone; must not double-close
}
