package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSession struct {
	mu     sync.Mutex
	sent   [][]byte
	fail   bool
	closed bool
}

func (f *fakeSession) Send(msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSession) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestSendWithoutSessionIsNotDelivered(t *testing.T) {
	p := NewPusher(NewRegistry(), 8)
	if p.SendPaymentSuccess("H404", "T1") {
		t.Fatal("no session subscribed, expected not delivered")
	}
	if p.SendPaymentFailed("H404", "expired") {
		t.Fatal("no session subscribed, expected not delivered")
	}
}

func TestSendPaymentSuccessFrame(t *testing.T) {
	reg := NewRegistry()
	p := NewPusher(reg, 8)
	s := &fakeSession{}
	reg.Add("H1", s)

	if !p.SendPaymentSuccess("H1", "T1") {
		t.Fatal("expected delivered")
	}
	var m Message
	if err := json.Unmarshal(s.sent[0], &m); err != nil {
		t.Fatal(err)
	}
	if m.Type != TypePaymentSuccess || m.OrderID != "H1" || m.TradeNo != "T1" {
		t.Fatalf("frame = %+v", m)
	}
}

func TestFailedSendRemovesSession(t *testing.T) {
	reg := NewRegistry()
	p := NewPusher(reg, 8)
	s := &fakeSession{fail: true}
	reg.Add("H1", s)

	if p.SendPaymentFailed("H1", "expired") {
		t.Fatal("send on broken session should report not delivered")
	}
	if p.HasActiveConnection("H1") || !s.closed {
		t.Fatal("broken session should be removed and closed")
	}
}

func TestRegistryRemoveOnlyCurrent(t *testing.T) {
	reg := NewRegistry()
	old, cur := &fakeSession{}, &fakeSession{}
	reg.Add("H1", old)
	if replaced := reg.Add("H1", cur); replaced != old {
		t.Fatal("second add should return the replaced session")
	}
	if reg.Remove("H1", old) {
		t.Fatal("stale session must not remove the current one")
	}
	if got, _ := reg.Lookup("H1"); got != cur {
		t.Fatal("current session lost")
	}
	if !reg.Remove("H1", cur) || reg.Len() != 0 {
		t.Fatal("current session should be removed")
	}
}

func TestRunDrainsQueue(t *testing.T) {
	reg := NewRegistry()
	p := NewPusher(reg, 8)
	s := &fakeSession{}
	reg.Add("H1", s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.PushSuccess("H1", "T1")
	p.PushSuccess("H2", "T2") // 无连接，丢弃

	deadline := time.Now().Add(2 * time.Second)
	for s.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.count() != 1 {
		t.Fatalf("expected 1 frame, got %d", s.count())
	}
}
