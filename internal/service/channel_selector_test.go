package service

import (
	"context"
	"testing"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/dao"
	mainmodel "mpay-order-api/internal/model/main"
	"mpay-order-api/internal/testutil"
)

func TestSelectFirstEnabledChannel(t *testing.T) {
	db := testutil.NewDB(t)
	mid, aid, cid := testutil.SeedMerchantWithChannel(t, db, "")
	// 禁用的通道不参与，state 有默认值，零值要单独更新
	off := mainmodel.PayChannel{ID: 99, AccountID: aid, Channel: "off", Type: "alipay"}
	if err := db.Create(&off).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Model(&off).Update("state", mainmodel.StateDisabled).Error; err != nil {
		t.Fatal(err)
	}

	sel := NewChannelSelector(dao.NewMainDaoWithDB(db), PolicyFirst, nil)
	got, err := sel.Select(context.Background(), mid, "alipay")
	if err != nil {
		t.Fatal(err)
	}
	if got.AID != aid || got.CID != cid || got.Pattern != 1 {
		t.Fatalf("selection %+v", got)
	}

	var ch mainmodel.PayChannel
	db.First(&ch, cid)
	if ch.LastTime == nil {
		t.Fatal("last used time not updated")
	}
}

func TestSelectNoChannel(t *testing.T) {
	db := testutil.NewDB(t)
	mid, _, _ := testutil.SeedMerchantWithChannel(t, db, "")
	sel := NewChannelSelector(dao.NewMainDaoWithDB(db), PolicyFirst, nil)

	if _, err := sel.Select(context.Background(), mid, "wxpay"); !constant.IsCode(err, constant.CodeChannelUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if _, err := sel.Select(context.Background(), 42, "alipay"); !constant.IsCode(err, constant.CodeChannelUnavailable) {
		t.Fatalf("unknown merchant: %v", err)
	}
}

type staticHealth map[uint64]bool

func (h staticHealth) IsDisabled(ctx context.Context, cid uint64) bool { return h[cid] }

func TestSelectSkipsTrippedChannel(t *testing.T) {
	db := testutil.NewDB(t)
	mid, aid, cid := testutil.SeedMerchantWithChannel(t, db, "")
	backup := mainmodel.PayChannel{ID: 101, AccountID: aid, Channel: "backup", Type: "alipay"}
	if err := db.Create(&backup).Error; err != nil {
		t.Fatal(err)
	}

	sel := NewChannelSelector(dao.NewMainDaoWithDB(db), PolicyFirst, nil).UseHealth(staticHealth{cid: true})
	got, err := sel.Select(context.Background(), mid, "alipay")
	if err != nil {
		t.Fatal(err)
	}
	if got.CID != backup.ID {
		t.Fatalf("expected backup channel, got %d", got.CID)
	}

	// 全部熔断时不拒单
	sel.UseHealth(staticHealth{cid: true, backup.ID: true})
	if _, err := sel.Select(context.Background(), mid, "alipay"); err != nil {
		t.Fatalf("all tripped should still select: %v", err)
	}
}
