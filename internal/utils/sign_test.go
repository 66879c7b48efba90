package utils

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuildSignStringSortsAndSkips(t *testing.T) {
	params := map[string]string{
		"trade_no":     "H1",
		"money":        "100.00",
		"sign":         "xxx",
		"sign_type":    "MD5",
		"out_trade_no": "M1",
		"param":        "",
	}
	got := BuildSignString(params)
	want := "money=100.00&out_trade_no=M1&trade_no=H1"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestGenerateAndVerifySign(t *testing.T) {
	params := map[string]string{"a": "1", "b": "2"}
	sum := md5.Sum([]byte("a=1&b=2" + "secret"))
	want := hex.EncodeToString(sum[:])
	if got := GenerateSign(params, "secret"); got != want {
		t.Fatalf("sign = %s want %s", got, want)
	}

	params["sign"] = want
	if !VerifySign(params, "secret") {
		t.Fatal("verify should pass")
	}
	if VerifySign(params, "other") {
		t.Fatal("verify with wrong key should fail")
	}
}

func TestMoneyCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"100", 10000},
		{"100.01", 10001},
		{"0.015", 2},
		{"99.994", 9999},
	}
	for _, c := range cases {
		if got := ToCents(decimal.RequireFromString(c.in)); got != c.want {
			t.Errorf("ToCents(%s) = %d want %d", c.in, got, c.want)
		}
	}
	if !FromCents(10001).Equal(decimal.RequireFromString("100.01")) {
		t.Fatal("FromCents mismatch")
	}
	if !SameMoney(decimal.RequireFromString("100.0"), decimal.RequireFromString("100.00")) {
		t.Fatal("SameMoney should ignore trailing zeros")
	}
	if SameMoney(decimal.RequireFromString("100.005"), decimal.RequireFromString("100.01")) {
		t.Fatal("SameMoney must not round")
	}
	for in, want := range map[string]bool{"100": true, "100.10": true, "100.100": true, "100.005": false, "0.001": false} {
		if got := IsCentPrecise(decimal.RequireFromString(in)); got != want {
			t.Errorf("IsCentPrecise(%s) = %v want %v", in, got, want)
		}
	}
}

func TestSmoothWeightedRRWithoutRedis(t *testing.T) {
	// 没有 redis 时状态不保留，总是选权重最大的节点
	got := SmoothWeightedRR(context.Background(), nil, "k", map[uint64]int{1: 1, 2: 3})
	if got != 2 {
		t.Fatalf("got %d want 2", got)
	}
	if SmoothWeightedRR(context.Background(), nil, "k", map[uint64]int{}) != 0 {
		t.Fatal("empty weights should return 0")
	}
}
