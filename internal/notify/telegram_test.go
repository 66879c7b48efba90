package notify

import (
	"strings"
	"testing"
	"time"
)

func TestFormatAlertEscapesAndSorts(t *testing.T) {
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	text := FormatAlert("通知失败", map[string]string{"order": "H_1", "error": "500 (bad)", "skip": ""}, at)
	if !strings.Contains(text, `H\_1`) || !strings.Contains(text, `\(bad\)`) {
		t.Fatalf("not escaped: %s", text)
	}
	if strings.Index(text, "error") > strings.Index(text, "order") {
		t.Fatalf("fields not sorted: %s", text)
	}
	if strings.Contains(text, "skip") {
		t.Fatalf("empty field rendered: %s", text)
	}
}

func TestTelegramAlerterNeedsToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	a := NewTelegramAlerter("123")
	if a != nil {
		t.Fatal("alerter without token should be nil")
	}
	a.Alert("x", nil)
}
