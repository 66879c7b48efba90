package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	ordermodel "mpay-order-api/internal/model/order"
)

type recordingEvents struct {
	mu     sync.Mutex
	orders []ordermodel.Order
}

func (r *recordingEvents) Publish(ctx context.Context, o *ordermodel.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, *o)
	return nil
}

func (r *recordingEvents) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type recordingDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingDispatcher) DispatchPaid(o *ordermodel.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, o.OrderID)
}

func (r *recordingDispatcher) dispatched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

type recordingPusher struct {
	mu      sync.Mutex
	success []string
	failed  []string
}

func (r *recordingPusher) PushSuccess(orderID, tradeNo string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success = append(r.success, orderID)
}

func (r *recordingPusher) PushFailed(orderID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, orderID)
}

type memGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (g *memGuard) Acquire(ctx context.Context, ref string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[ref] {
		return false, nil
	}
	g.seen[ref] = true
	return true, nil
}

func (g *memGuard) Release(ctx context.Context, ref string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, ref)
}

func sequentialIDs(prefix string) func() string {
	var n int64
	return func() string {
		return fmt.Sprintf("%s%d", prefix, atomic.AddInt64(&n, 1))
	}
}
