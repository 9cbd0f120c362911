package control

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"icoviewer/config"
)

type received struct {
	Type     string          `json:"type"`
	Controls config.Controls `json:"controls"`
	Stats    *Stats          `json:"stats"`
	Error    string          `json:"error"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg received
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestServerAppliesMessages(t *testing.T) {
	panel := newPanel()
	s := NewServer(panel, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	if hello := read(t, conn); hello.Type != "controls" || hello.Controls.Tessellation != 5 {
		t.Fatalf("hello = %+v", hello)
	}

	if err := conn.WriteJSON(map[string]any{"tessellations": 3, "fragmentShader": "perlin"}); err != nil {
		t.Fatal(err)
	}
	update := read(t, conn)
	if update.Type != "controls" || update.Controls.Tessellation != 3 || update.Controls.FragmentShader != "perlin" {
		t.Fatalf("update = %+v", update)
	}
	if snap := panel.Snapshot(); snap.Tessellation != 3 || snap.FragmentShader != "perlin" {
		t.Errorf("panel = %+v", snap)
	}

	if err := conn.WriteJSON(map[string]any{"tessellations": 42}); err != nil {
		t.Fatal(err)
	}
	if rejected := read(t, conn); rejected.Type != "error" || rejected.Error == "" {
		t.Fatalf("rejected = %+v", rejected)
	}
	if panel.Snapshot().Tessellation != 3 {
		t.Error("invalid message applied")
	}

	// Malformed messages are answered, not fatal to the connection.
	if err := conn.WriteJSON(map[string]any{"color": []float64{0, 255, 0}}); err != nil {
		t.Fatal(err)
	}
	if rejected := read(t, conn); rejected.Type != "error" || !strings.Contains(rejected.Error, "color") {
		t.Fatalf("short color = %+v", rejected)
	}
	if panel.Snapshot().Color != config.DefaultControls().Color {
		t.Error("short color applied")
	}
	if err := conn.WriteJSON(map[string]any{"loadScene": true}); err != nil {
		t.Fatal(err)
	}
	if update := read(t, conn); update.Type != "controls" {
		t.Fatalf("after rejection = %+v", update)
	}
}

func TestServerTracksClients(t *testing.T) {
	s := NewServer(newPanel(), nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	read(t, conn)
	if n := s.Clients(); n != 1 {
		t.Fatalf("clients = %d, want 1", n)
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for s.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d after close, want 0", s.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServerBroadcastsStats(t *testing.T) {
	s := NewServer(newPanel(), nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	read(t, a)
	read(t, b)

	// Nothing published yet: no broadcast.
	s.BroadcastStats()
	s.Publish(Stats{FPS: 60, Tessellation: 5, Triangles: 20480})
	s.BroadcastStats()

	for _, conn := range []*websocket.Conn{a, b} {
		msg := read(t, conn)
		if msg.Type != "stats" || msg.Stats == nil || msg.Stats.Triangles != 20480 {
			t.Errorf("stats message = %+v", msg)
		}
	}
}

func TestServerControlsEndpoint(t *testing.T) {
	panel := newPanel()
	panel.SetTessellation(7)
	srv := httptest.NewServer(NewServer(panel, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/controls")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got config.Controls
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Tessellation != 7 {
		t.Errorf("tessellation = %d, want 7", got.Tessellation)
	}
}
