package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mpay-order-api/internal/event"
	ordermodel "mpay-order-api/internal/model/order"

	"github.com/streadway/amqp"
)

type fakePublisher struct {
	err    error
	topics []string
	msgs   []any
}

func (p *fakePublisher) Publish(topic string, msg any) error {
	p.topics = append(p.topics, topic)
	p.msgs = append(p.msgs, msg)
	return p.err
}

type fakeFallback struct{ ids []string }

func (f *fakeFallback) DispatchPaid(o *ordermodel.Order) { f.ids = append(f.ids, o.OrderID) }

func TestPaidDispatcherPublishes(t *testing.T) {
	pub := &fakePublisher{}
	fb := &fakeFallback{}
	now := time.Now()
	NewPaidDispatcher(pub, fb).DispatchPaid(&ordermodel.Order{OrderID: "H1", MID: 7, PayTime: &now})

	if len(pub.topics) != 1 || pub.topics[0] != event.TopicOrderPaid {
		t.Fatalf("topics %v", pub.topics)
	}
	msg := pub.msgs[0].(event.OrderPaidMessage)
	if msg.OrderID != "H1" || msg.MID != 7 || msg.PaidAt != now.Unix() {
		t.Fatalf("msg %+v", msg)
	}
	if len(fb.ids) != 0 {
		t.Fatal("fallback used on success")
	}
}

func TestPaidDispatcherFallsBack(t *testing.T) {
	fb := &fakeFallback{}
	NewPaidDispatcher(&fakePublisher{err: errors.New("channel closed")}, fb).DispatchPaid(&ordermodel.Order{OrderID: "H1"})
	if len(fb.ids) != 1 || fb.ids[0] != "H1" {
		t.Fatalf("fallback %v", fb.ids)
	}
}

type fakeAck struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error { a.acked++; return nil }
func (a *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}
func (a *fakeAck) Reject(tag uint64, requeue bool) error { return nil }

type mapOrders struct {
	orders map[string]*ordermodel.Order
	err    error
}

func (m mapOrders) GetByOrderID(ctx context.Context, id string) (*ordermodel.Order, error) {
	return m.orders[id], m.err
}

type countingNotifier struct{ calls int }

func (n *countingNotifier) NotifyMerchant(ctx context.Context, o *ordermodel.Order) error {
	n.calls++
	return nil
}

func delivery(t *testing.T, ack amqp.Acknowledger, orderID string) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(event.OrderPaidMessage{OrderID: orderID})
	if err != nil {
		t.Fatal(err)
	}
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func TestPaidConsumerHandle(t *testing.T) {
	paid := &ordermodel.Order{OrderID: "H1", Status: ordermodel.StatusPaid}
	pending := &ordermodel.Order{OrderID: "H2", Status: ordermodel.StatusPending}
	n := &countingNotifier{}
	c := NewPaidConsumer(mapOrders{orders: map[string]*ordermodel.Order{"H1": paid, "H2": pending}}, n)

	ack := &fakeAck{}
	c.Handle(context.Background(), delivery(t, ack, "H1"))
	if n.calls != 1 || ack.acked != 1 {
		t.Fatalf("paid: calls=%d ack=%d", n.calls, ack.acked)
	}

	ack = &fakeAck{}
	c.Handle(context.Background(), delivery(t, ack, "H2"))
	if n.calls != 1 || ack.acked != 1 {
		t.Fatalf("pending order should be dropped")
	}

	ack = &fakeAck{}
	c.Handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{")})
	if ack.nacked != 1 || ack.requeue {
		t.Fatalf("bad body: %+v", ack)
	}
}

func TestPaidConsumerRequeuesOnDBError(t *testing.T) {
	ack := &fakeAck{}
	c := NewPaidConsumer(mapOrders{err: errors.New("db down")}, &countingNotifier{})
	c.Handle(context.Background(), delivery(t, ack, "H1"))
	if ack.nacked != 1 || !ack.requeue {
		t.Fatalf("expected requeue, got %+v", ack)
	}
}
