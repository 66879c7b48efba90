package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/dao"
	ordermodel "mpay-order-api/internal/model/order"
	"mpay-order-api/internal/testutil"
	"mpay-order-api/internal/utils"
)

type staticSecret string

func (s staticSecret) Secret(ctx context.Context, mid uint64) (string, error) {
	return string(s), nil
}

func paidOrder(orderID, notifyURL string) *ordermodel.Order {
	o := testutil.PendingOrder(orderID, 1000, 10, 100, "100.01", time.Now())
	now := time.Now()
	o.Status = ordermodel.StatusPaid
	o.PayTime = &now
	o.PriceSlot = nil
	o.NotifyURL = notifyURL
	return o
}

func TestBuildPayloadSigned(t *testing.T) {
	o := paidOrder("H1", "http://127.0.0.1/notify")
	o.Param = "uid=7"
	p := BuildPayload(o, "key")
	if p["sign_type"] != "MD5" || p["param"] != "uid=7" || p["really_price"] != "100.01" {
		t.Fatalf("payload %v", p)
	}
	if !utils.VerifySign(p, "key") {
		t.Fatal("payload sign does not verify")
	}
}

func TestBuildPayloadUnsignedWithoutSecret(t *testing.T) {
	p := BuildPayload(paidOrder("H1", "http://127.0.0.1/notify"), "")
	if _, ok := p["sign"]; ok {
		t.Fatalf("unexpected sign in %v", p)
	}
	if p["trade_status"] != TradeSuccess {
		t.Fatalf("trade_status %q", p["trade_status"])
	}
}

func TestHTTPSenderStatusHandling(t *testing.T) {
	var code int32 = http.StatusBadGateway
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("trade_no") != "H1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(int(atomic.LoadInt32(&code)))
		_, _ = w.Write([]byte("success"))
	}))
	defer srv.Close()

	s := NewHTTPSender(time.Second)
	o := paidOrder("H1", srv.URL)
	if err := s.Send(context.Background(), o, BuildPayload(o, "")); !constant.IsCode(err, constant.CodeNotifyFailed) {
		t.Fatalf("expected notify failed, got %v", err)
	}
	atomic.StoreInt32(&code, http.StatusOK)
	if err := s.Send(context.Background(), o, BuildPayload(o, "")); err != nil {
		t.Fatalf("send: %v", err)
	}

	bad := paidOrder("H1", "not a url")
	if err := s.Send(context.Background(), bad, nil); !constant.IsCode(err, constant.CodeNotifyURLInvalid) {
		t.Fatalf("expected invalid url, got %v", err)
	}
}

func TestNotifyMerchantRecordsAfterInlineAttempts(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	db := testutil.NewDB(t)
	logs := NewLogService(dao.NewNotifyLogDaoWithDB(db), LogOptions{InlineAttempts: 3})
	c := NewClient(NewHTTPSender(time.Second), staticSecret("key"), logs, ClientOptions{InlineAttempts: 3, Backoff: time.Millisecond})

	before := time.Now()
	err := c.NotifyMerchant(context.Background(), paidOrder("H1", srv.URL))
	if !constant.IsCode(err, constant.CodeNotifyExhausted) {
		t.Fatalf("expected exhausted, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("endpoint hit %d times", got)
	}

	row, err := logs.Get(context.Background(), "H1")
	if err != nil {
		t.Fatal(err)
	}
	if row.Status != ordermodel.NotifyPendingRetry || row.RetryCount != 3 || row.LastError == "" {
		t.Fatalf("log row %+v", row)
	}
	if d := row.NextRetryAt.Sub(before); d < 5*time.Minute || d > 6*time.Minute {
		t.Fatalf("next retry in %s", d)
	}
}

func TestNotifyMerchantSucceedsWithoutLog(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	db := testutil.NewDB(t)
	logs := NewLogService(dao.NewNotifyLogDaoWithDB(db), LogOptions{})
	c := NewClient(NewHTTPSender(time.Second), staticSecret(""), logs, ClientOptions{Backoff: time.Millisecond})

	if err := c.NotifyMerchant(context.Background(), paidOrder("H1", srv.URL)); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if _, err := logs.Get(context.Background(), "H1"); !constant.IsCode(err, constant.CodeNotifyLogNotFound) {
		t.Fatalf("expected no log row, got %v", err)
	}
}

func TestNextDelay(t *testing.T) {
	if NextDelay(0) != 5*time.Minute || NextDelay(1) != 15*time.Minute {
		t.Fatal("unexpected early intervals")
	}
	if NextDelay(100) != 1440*time.Minute || NextDelay(-1) != 5*time.Minute {
		t.Fatal("intervals not clamped")
	}
}
