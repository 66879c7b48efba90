package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/dao"
	ordermodel "mpay-order-api/internal/model/order"
	"mpay-order-api/internal/notify"
	"mpay-order-api/internal/scheduler"
	"mpay-order-api/internal/testutil"
)

type stubNotifier struct {
	err   error
	calls int
}

func (s *stubNotifier) SendOnce(ctx context.Context, o *ordermodel.Order) error {
	s.calls++
	return s.err
}

type adminFixture struct {
	orders     *dao.OrderDao
	logs       *notify.LogService
	notifier   *stubNotifier
	dispatcher *recordingDispatcher
	svc        *AdminOrderService
	mid        uint64
	aid, cid   uint64
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	db := testutil.NewDB(t)
	mid, aid, cid := testutil.SeedMerchantWithChannel(t, db, "secret")
	f := &adminFixture{
		orders:     dao.NewOrderDaoWithDB(db),
		logs:       notify.NewLogService(dao.NewNotifyLogDaoWithDB(db), notify.LogOptions{}),
		notifier:   &stubNotifier{},
		dispatcher: &recordingDispatcher{},
		mid:        mid, aid: aid, cid: cid,
	}
	sweep := scheduler.NewOrderScheduler(f.orders, nil, nil, 30*time.Minute, time.Minute)
	f.svc = NewAdminOrderService(f.orders, f.notifier, f.logs, sweep, nil, f.dispatcher, &recordingPusher{})
	return f
}

func TestManualSettlePendingOrder(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	if err := f.orders.Insert(ctx, testutil.PendingOrder("H1", f.mid, f.aid, f.cid, "8.00", time.Now())); err != nil {
		t.Fatal(err)
	}

	o, err := f.svc.ManualSettle(ctx, "H1")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !o.IsPaid() || len(f.dispatcher.dispatched()) != 1 {
		t.Fatalf("order %+v dispatched %v", o, f.dispatcher.dispatched())
	}

	_, err = f.svc.ManualSettle(ctx, "H1")
	if !constant.IsCode(err, constant.CodeOrderPaid) {
		t.Fatalf("second settle: %v", err)
	}
	_, err = f.svc.ManualSettle(ctx, "nope")
	if !constant.IsCode(err, constant.CodeOrderNotFound) {
		t.Fatalf("missing order: %v", err)
	}
}

func TestManualSettleClosedOrder(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	if err := f.orders.Insert(ctx, testutil.PendingOrder("H1", f.mid, f.aid, f.cid, "8.00", time.Now().Add(-time.Hour))); err != nil {
		t.Fatal(err)
	}
	if n, err := f.svc.ExpireNow(ctx); err != nil || n != 1 {
		t.Fatalf("expire: %d %v", n, err)
	}
	_, err := f.svc.ManualSettle(ctx, "H1")
	if !constant.IsCode(err, constant.CodeOrderClosed) {
		t.Fatalf("expected closed, got %v", err)
	}
}

func TestRenotifyRecordsFailureAndSuccess(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	if err := f.orders.Insert(ctx, testutil.PendingOrder("H1", f.mid, f.aid, f.cid, "8.00", time.Now())); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Renotify(ctx, "H1"); !constant.IsCode(err, constant.CodeOrderNotPaid) {
		t.Fatalf("pending renotify: %v", err)
	}
	if _, err := f.svc.ManualSettle(ctx, "H1"); err != nil {
		t.Fatal(err)
	}

	f.notifier.err = errors.New("connection refused")
	if err := f.svc.Renotify(ctx, "H1"); err == nil {
		t.Fatal("expected failure")
	}
	row, err := f.logs.Get(ctx, "H1")
	if err != nil || row.Status != ordermodel.NotifyPendingRetry {
		t.Fatalf("log after failure %+v %v", row, err)
	}

	f.notifier.err = nil
	if err := f.svc.Renotify(ctx, "H1"); err != nil {
		t.Fatalf("renotify: %v", err)
	}
	row, _ = f.logs.Get(ctx, "H1")
	if row.Status != ordermodel.NotifySucceeded {
		t.Fatalf("log status %d", row.Status)
	}
}
