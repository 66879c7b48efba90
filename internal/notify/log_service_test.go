package notify

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"mpay-order-api/internal/dao"
	"mpay-order-api/internal/testutil"
)

func TestTruncateKeepsRunes(t *testing.T) {
	s := "ab" + strings.Repeat("商", 400)
	got := truncate(s, 1000)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid utf-8")
	}
	if len(got) > 1000 || len(got) != 2+332*3 {
		t.Fatalf("len = %d", len(got))
	}
	if truncate("short", 1000) != "short" {
		t.Fatal("short text changed")
	}
}

func TestRecordFailureStoresValidErrorText(t *testing.T) {
	db := testutil.NewDB(t)
	notifyLogs := dao.NewNotifyLogDaoWithDB(db)
	logs := NewLogService(notifyLogs, LogOptions{InlineAttempts: 3})
	o := testutil.PendingOrder("H-long-err", 1000, 10, 100, "100.01", time.Now())

	lastErr := "ab" + strings.Repeat("商户回调失败", 100)
	if err := logs.RecordFailure(context.Background(), o, lastErr, 3); err != nil {
		t.Fatal(err)
	}
	row, err := notifyLogs.GetByOrderID(context.Background(), o.OrderID)
	if err != nil || row == nil {
		t.Fatalf("load row: %v", err)
	}
	if !utf8.ValidString(row.LastError) || len(row.LastError) > 1000 {
		t.Fatalf("last error len=%d valid=%v", len(row.LastError), utf8.ValidString(row.LastError))
	}
}
