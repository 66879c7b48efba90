package notify

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"mpay-order-api/internal/logger"

	"github.com/go-resty/resty/v2"
)

type TelegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
	Parse  string `json:"parse_mode"`
}

// TelegramAlerter 机器人 token 取自环境变量 TELEGRAM_BOT_TOKEN（.env）
type TelegramAlerter struct {
	chatID string
	token  string
	client *resty.Client
}

// NewTelegramAlerter chatId 或 token 缺失时返回 nil，调用方按无告警处理
func NewTelegramAlerter(chatID string) *TelegramAlerter {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if chatID == "" || token == "" {
		return nil
	}
	return &TelegramAlerter{
		chatID: chatID,
		token:  token,
		client: resty.New().SetTimeout(5 * time.Second),
	}
}

// Alert 异步发送，不影响调用方
func (a *TelegramAlerter) Alert(title string, fields map[string]string) {
	if a == nil {
		return
	}
	text := FormatAlert(title, fields, time.Now())
	go func() {
		url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", a.token)
		resp, err := a.client.R().
			SetBody(TelegramMessage{ChatID: a.chatID, Text: text, Parse: "MarkdownV2"}).
			Post(url)
		if err != nil {
			logger.L.Warnf("[ALERT] Telegram 消息发送失败: %v", err)
			return
		}
		if !resp.IsSuccess() {
			logger.L.Warnf("[ALERT] Telegram 返回 %d: %s", resp.StatusCode(), resp.String())
		}
	}()
}

// FormatAlert 标题加粗，字段按 key 排序
func FormatAlert(title string, fields map[string]string, at time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(title)))
	sb.WriteString(fmt.Sprintf("*时间:* %s\n", escapeMarkdown(at.Format("2006-01-02 15:04:05"))))
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if fields[k] == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", escapeMarkdown(k), escapeMarkdown(fields[k])))
	}
	return sb.String()
}

// escapeMarkdown 转义 Telegram Markdown V2 特殊字符
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)
	return replacer.Replace(s)
}
