package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubDeliversToBrowser(t *testing.T) {
	p := NewPusher(NewRegistry(), 8)
	hub := NewHub(p, time.Second)
	opened := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeOrder(w, r, "H1", func() { close(opened) })
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	select {
	case <-opened:
	case <-time.After(2 * time.Second):
		t.Fatal("session not registered")
	}
	if !p.SendPaymentSuccess("H1", "T9") {
		t.Fatal("expected delivered to open session")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil || m.Type != TypePaymentSuccess || m.TradeNo != "T9" {
		t.Fatalf("frame=%s err=%v", data, err)
	}

	// 浏览器断开后连接被注销
	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for p.HasActiveConnection("H1") && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if p.HasActiveConnection("H1") {
		t.Fatal("session should be removed after close")
	}
}
