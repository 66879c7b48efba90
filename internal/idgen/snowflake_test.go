package idgen

import (
	"strings"
	"testing"
)

func TestNewOrderIDUnique(t *testing.T) {
	if err := InitNode("default", 7); err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewOrderID()
		if !strings.HasPrefix(id, "H") || len(id) > 32 {
			t.Fatalf("bad order id %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate order id %q", id)
		}
		seen[id] = struct{}{}
	}
}
