package utils

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// 金额统一按分比较，避免小数精度问题

// RoundMoney 保留两位小数，四舍五入
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToCents 100.01 -> 10001
func ToCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// FromCents 10001 -> 100.01
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// SameMoney 金额精确相等，100.0 与 100.00 相等，100.005 与 100.01 不等
func SameMoney(a, b decimal.Decimal) bool {
	return a.Equal(b)
}

// IsCentPrecise 最多两位小数
func IsCentPrecise(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func FormatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
