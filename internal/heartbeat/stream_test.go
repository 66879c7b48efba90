package heartbeat

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	ordermodel "mpay-order-api/internal/model/order"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// fakeStream 内存版 XADD/XRANGE，值和真实 redis 一样以字符串返回
type fakeStream struct {
	seq  int
	msgs []redis.XMessage
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.seq++
	id := fmt.Sprintf("%d-0", f.seq)
	vals := map[string]interface{}{}
	for k, v := range a.Values.(map[string]interface{}) {
		vals[k] = cast.ToString(v)
	}
	f.msgs = append(f.msgs, redis.XMessage{ID: id, Values: vals})
	return redis.NewStringResult(id, nil)
}

func (f *fakeStream) XRange(ctx context.Context, stream, start, stop string) *redis.XMessageSliceCmd {
	return f.XRangeN(ctx, stream, start, stop, int64(len(f.msgs)))
}

func (f *fakeStream) XRangeN(ctx context.Context, stream, start, stop string, count int64) *redis.XMessageSliceCmd {
	var out []redis.XMessage
	after := 0
	if strings.HasPrefix(start, "(") {
		fmt.Sscanf(strings.TrimPrefix(start, "("), "%d-0", &after)
	}
	for _, m := range f.msgs {
		var n int
		fmt.Sscanf(m.ID, "%d-0", &n)
		if n <= after {
			continue
		}
		if int64(len(out)) >= count {
			break
		}
		out = append(out, m)
	}
	return redis.NewXMessageSliceCmdResult(out, nil)
}

func order(id string, mid uint64, status int8, expire time.Time) *ordermodel.Order {
	return &ordermodel.Order{
		OrderID:     id,
		MID:         mid,
		AID:         10,
		CID:         100,
		PayType:     "alipay",
		ReallyPrice: decimal.RequireFromString("100.01"),
		Pattern:     1,
		Status:      status,
		ExpireTime:  expire,
	}
}

func TestFetchActiveFoldsByOrderAndFilters(t *testing.T) {
	f := &fakeStream{}
	s := NewStream(f, "mpay:order:heartbeat", 1000)
	ctx := context.Background()
	future := time.Now().Add(3 * time.Minute)

	_ = s.Publish(ctx, order("H1", 1, ordermodel.StatusPending, future))
	_ = s.Publish(ctx, order("H2", 1, ordermodel.StatusPending, future))
	_ = s.Publish(ctx, order("H3", 2, ordermodel.StatusPending, future))
	_ = s.Publish(ctx, order("H4", 1, ordermodel.StatusPending, time.Now().Add(-time.Second)))
	// H2 之后被支付
	_ = s.Publish(ctx, order("H2", 1, ordermodel.StatusPaid, future))

	got, err := s.FetchActive(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].OrderID != "H1" {
		t.Fatalf("active for merchant 1 = %+v", got)
	}
	if got[0].Price != "100.01" || got[0].AID != 10 || got[0].CID != 100 || got[0].Pattern != 1 {
		t.Fatalf("fields not round-tripped: %+v", got[0])
	}

	all, _ := s.FetchActive(ctx, 0)
	if len(all) != 2 {
		t.Fatalf("active for all merchants = %+v", all)
	}
}

func TestReadFromOffset(t *testing.T) {
	f := &fakeStream{}
	s := NewStream(f, "k", 0)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = s.Publish(ctx, order(fmt.Sprintf("H%d", i), 1, ordermodel.StatusPending, time.Now()))
	}

	first, next, err := s.Read(ctx, "", 2)
	if err != nil || len(first) != 2 || next != "2-0" {
		t.Fatalf("first page %v next=%s err=%v", first, next, err)
	}
	rest, next, _ := s.Read(ctx, next, 10)
	if len(rest) != 3 || rest[0].Event.OrderID != "H2" || next != "5-0" {
		t.Fatalf("rest %v next=%s", rest, next)
	}
	empty, same, _ := s.Read(ctx, next, 10)
	if len(empty) != 0 || same != next {
		t.Fatal("reading past the end should keep offset")
	}
}
