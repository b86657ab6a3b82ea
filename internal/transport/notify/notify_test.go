package notify

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"statuecraft.ai/internal/protocol"
)

func dial(t *testing.T, srv *httptest.Server, sub any) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	return conn
}

func waitSubscribers(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Subscribers() != n {
		if time.Now().After(deadline) {
			t.Fatalf("subscribers=%d want %d", h.Subscribers(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_BroadcastsToProjectSubscribers(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h.WSHandler())
	defer srv.Close()

	all := dial(t, srv, protocol.SubscribeMsg{Type: protocol.TypeSubscribe, ProtocolVersion: protocol.Version})
	defer all.Close()
	demo := dial(t, srv, protocol.SubscribeMsg{Type: protocol.TypeSubscribe, ProtocolVersion: protocol.Version, Project: "demo"})
	defer demo.Close()
	waitSubscribers(t, h, 2)

	now := time.Now()
	h.Notify(protocol.Notice("other", "", "skip me", now))
	h.Notify(protocol.Notice("demo", "01HZX3Q9J5T8W2V6K4M7N1P0RS", "Model Exported Successfully", now))

	read := func(c *websocket.Conn) protocol.NoticeMsg {
		t.Helper()
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		var m protocol.NoticeMsg
		if err := c.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		return m
	}

	if m := read(all); m.Project != "other" {
		t.Fatalf("first message for wildcard subscriber: %+v", m)
	}
	if m := read(all); m.Project != "demo" {
		t.Fatalf("second message for wildcard subscriber: %+v", m)
	}
	m := read(demo)
	if m.Project != "demo" || m.ExportID != "01HZX3Q9J5T8W2V6K4M7N1P0RS" || m.Type != protocol.TypeNotice {
		t.Fatalf("demo subscriber got %+v", m)
	}
}

func TestHub_RejectsBadSubscribe(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h.WSHandler())
	defer srv.Close()

	conn := dial(t, srv, map[string]string{"type": "HELLO", "protocol_version": protocol.Version})
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("err=%v want policy violation close", err)
	}
	if h.Subscribers() != 0 {
		t.Fatalf("subscribers=%d", h.Subscribers())
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:1234": true,
		"[::1]:80":       true,
		"10.0.0.1:80":    false,
		"garbage":        false,
	}
	for addr, want := range cases {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("%s: got %v want %v", addr, got, want)
		}
	}
}

type counter struct{ n int }

func (c *counter) Notify(protocol.NoticeMsg) { c.n++ }

func TestMultiAndLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	c := &counter{}
	m := Multi{LogNotifier{Log: log.New(&buf, "", 0)}, nil, c}
	m.Notify(protocol.Error("demo", protocol.ErrConfig, "No output", "set it", time.Now()))
	if c.n != 1 {
		t.Fatalf("count=%d", c.n)
	}
	if got := buf.String(); got != "demo [E_CONFIG] No output: set it\n" {
		t.Fatalf("log=%q", got)
	}
	b, _ := json.Marshal(protocol.Notice("demo", "", "x", time.Now()))
	if !strings.Contains(string(b), `"type":"NOTICE"`) {
		t.Fatalf("notice json=%s", b)
	}
}
