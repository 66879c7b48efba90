package service

import (
	"context"
	"testing"

	"mpay-order-api/internal/constant"

	"github.com/shopspring/decimal"
)

type staticSlots []int64

func (s staticSlots) ListPendingSlots(ctx context.Context, aid, cid uint64, payType string) ([]int64, error) {
	return s, nil
}

func TestAllocateSkipsUsedSlots(t *testing.T) {
	a := NewIncrementalPriceAllocator(staticSlots{10000, 10001, 10003})
	got, err := a.Allocate(context.Background(), decimal.RequireFromString("100"), 1, 1, "alipay")
	if err != nil {
		t.Fatal(err)
	}
	if got.StringFixed(2) != "100.02" {
		t.Fatalf("got %s", got.StringFixed(2))
	}
}

func TestAllocateRoundsTarget(t *testing.T) {
	a := NewIncrementalPriceAllocator(staticSlots{})
	got, err := a.Allocate(context.Background(), decimal.RequireFromString("9.995"), 1, 1, "alipay")
	if err != nil {
		t.Fatal(err)
	}
	if got.StringFixed(2) != "10.00" {
		t.Fatalf("got %s", got.StringFixed(2))
	}
}

func TestAllocateRejectsNonPositive(t *testing.T) {
	a := NewIncrementalPriceAllocator(staticSlots{})
	_, err := a.Allocate(context.Background(), decimal.RequireFromString("0.004"), 1, 1, "alipay")
	if !constant.IsCode(err, constant.CodeOrderAmountInvalid) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}
