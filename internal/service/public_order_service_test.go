package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/dao"
	"mpay-order-api/internal/dto"
	ordermodel "mpay-order-api/internal/model/order"
	"mpay-order-api/internal/testutil"
	"mpay-order-api/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newCreateService(t *testing.T, db *gorm.DB, attempts int, alloc PriceAllocator) (*PublicOrderService, *recordingEvents) {
	t.Helper()
	orders := dao.NewOrderDaoWithDB(db)
	if alloc == nil {
		alloc = NewIncrementalPriceAllocator(orders)
	}
	events := &recordingEvents{}
	svc := NewPublicOrderService(orders, NewChannelSelector(dao.NewMainDaoWithDB(db), PolicyFirst, nil), alloc, events,
		CreateOptions{PayTimeout: 3 * time.Minute, PersistAttempts: attempts, CashierURL: "https://pay.example.com/cashier/"})
	svc.newID = sequentialIDs("H")
	return svc, events
}

func createReq(mid uint64, outTradeNo, money string) *dto.CreateOrderReq {
	return &dto.CreateOrderReq{
		PID:        mid,
		Type:       "alipay",
		OutTradeNo: outTradeNo,
		NotifyURL:  "http://merchant.example.com/notify",
		Money:      money,
		Name:       "vip",
	}
}

func TestCreateOrderAllocatesAndPublishes(t *testing.T) {
	db := testutil.NewDB(t)
	mid, aid, cid := testutil.SeedMerchantWithChannel(t, db, "secret")
	svc, events := newCreateService(t, db, 3, nil)

	resp, err := svc.CreateOrder(context.Background(), createReq(mid, "A1", "100"), "1.2.3.4")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.ReallyPrice != "100.00" || resp.PayURL != "https://pay.example.com/cashier/"+resp.OrderID {
		t.Fatalf("unexpected resp %+v", resp)
	}
	o, _ := dao.NewOrderDaoWithDB(db).GetByOrderID(context.Background(), resp.OrderID)
	if o == nil || o.AID != aid || o.CID != cid || !o.IsPending() || o.ClientIP != "1.2.3.4" {
		t.Fatalf("stored order %+v", o)
	}
	if d := o.ExpireTime.Sub(o.CreateTime); d != 3*time.Minute {
		t.Fatalf("expire window %s", d)
	}
	if events.count() != 1 {
		t.Fatalf("heartbeat events %d", events.count())
	}

	resp2, err := svc.CreateOrder(context.Background(), createReq(mid, "A2", "100.00"), "")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if resp2.ReallyPrice != "100.01" {
		t.Fatalf("second price %s, want 100.01", resp2.ReallyPrice)
	}
}

func TestCreateOrderRejectsDuplicateOutTradeNo(t *testing.T) {
	db := testutil.NewDB(t)
	mid, _, _ := testutil.SeedMerchantWithChannel(t, db, "")
	svc, _ := newCreateService(t, db, 3, nil)

	if _, err := svc.CreateOrder(context.Background(), createReq(mid, "A1", "5"), ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.CreateOrder(context.Background(), createReq(mid, "A1", "6"), "")
	if !constant.IsCode(err, constant.CodeOrderAlreadyExist) {
		t.Fatalf("expected already exist, got %v", err)
	}
}

func TestCreateOrderWithoutChannel(t *testing.T) {
	db := testutil.NewDB(t)
	mid, _, _ := testutil.SeedMerchantWithChannel(t, db, "")
	svc, _ := newCreateService(t, db, 3, nil)

	req := createReq(mid, "A1", "5")
	req.Type = "wxpay"
	_, err := svc.CreateOrder(context.Background(), req, "")
	if !constant.IsCode(err, constant.CodeChannelUnavailable) {
		t.Fatalf("expected channel unavailable, got %v", err)
	}
}

func TestCreateOrderRejectsNonPositiveMoney(t *testing.T) {
	db := testutil.NewDB(t)
	mid, _, _ := testutil.SeedMerchantWithChannel(t, db, "")
	svc, _ := newCreateService(t, db, 3, nil)

	for _, m := range []string{"0", "-1", "abc", "0.001"} {
		_, err := svc.CreateOrder(context.Background(), createReq(mid, "A-"+m, m), "")
		if !constant.IsCode(err, constant.CodeOrderAmountInvalid) {
			t.Fatalf("money %q: expected invalid amount, got %v", m, err)
		}
	}
}

func TestConcurrentCreatesGetDistinctPrices(t *testing.T) {
	db := testutil.NewDB(t)
	mid, _, _ := testutil.SeedMerchantWithChannel(t, db, "")
	const n = 8
	svc, _ := newCreateService(t, db, n, nil)

	var wg sync.WaitGroup
	prices := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := svc.CreateOrder(context.Background(), createReq(mid, fmt.Sprintf("C%d", i), "10.00"), "")
			errs[i] = err
			if err == nil {
				prices[i] = resp.ReallyPrice
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	base := decimal.RequireFromString("10.00")
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("create %d: %v", i, errs[i])
		}
		if seen[prices[i]] {
			t.Fatalf("price %s allocated twice", prices[i])
		}
		seen[prices[i]] = true
		step := utils.ToCents(decimal.RequireFromString(prices[i])) - utils.ToCents(base)
		if step < 0 || step >= n {
			t.Fatalf("price %s outside expected range", prices[i])
		}
	}
}

// staleAllocator 模拟两个请求同时探测到同一个空闲金额
type staleAllocator struct {
	mu    sync.Mutex
	calls int
	inner PriceAllocator
}

func (a *staleAllocator) Allocate(ctx context.Context, target decimal.Decimal, aid, cid uint64, payType string) (decimal.Decimal, error) {
	a.mu.Lock()
	a.calls++
	first := a.calls == 1
	a.mu.Unlock()
	if first {
		return utils.RoundMoney(target), nil
	}
	return a.inner.Allocate(ctx, target, aid, cid, payType)
}

func TestPersistConflictIsReallocated(t *testing.T) {
	db := testutil.NewDB(t)
	mid, aid, cid := testutil.SeedMerchantWithChannel(t, db, "")
	orders := dao.NewOrderDaoWithDB(db)
	// 另一个请求已经用 10.00 落库
	if err := orders.Insert(context.Background(), testutil.PendingOrder("H-other", mid, aid, cid, "10.00", time.Now())); err != nil {
		t.Fatal(err)
	}

	alloc := &staleAllocator{inner: NewIncrementalPriceAllocator(orders)}
	svc, _ := newCreateService(t, db, 3, alloc)
	resp, err := svc.CreateOrder(context.Background(), createReq(mid, "A1", "10.00"), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.ReallyPrice != "10.01" || alloc.calls != 2 {
		t.Fatalf("price %s after %d allocations", resp.ReallyPrice, alloc.calls)
	}
}

type fixedAllocator struct{ price decimal.Decimal }

func (a fixedAllocator) Allocate(ctx context.Context, target decimal.Decimal, aid, cid uint64, payType string) (decimal.Decimal, error) {
	return a.price, nil
}

func TestPersistConflictExhaustsAttempts(t *testing.T) {
	db := testutil.NewDB(t)
	mid, aid, cid := testutil.SeedMerchantWithChannel(t, db, "")
	orders := dao.NewOrderDaoWithDB(db)
	if err := orders.Insert(context.Background(), testutil.PendingOrder("H-other", mid, aid, cid, "10.00", time.Now())); err != nil {
		t.Fatal(err)
	}

	svc, _ := newCreateService(t, db, 3, fixedAllocator{price: decimal.RequireFromString("10.00")})
	_, err := svc.CreateOrder(context.Background(), createReq(mid, "A1", "10.00"), "")
	if !constant.IsCode(err, constant.CodeServiceUnavailable) {
		t.Fatalf("expected service unavailable, got %v", err)
	}
	var count int64
	db.Model(&ordermodel.Order{}).Count(&count)
	if count != 1 {
		t.Fatalf("orders stored %d", count)
	}
}
