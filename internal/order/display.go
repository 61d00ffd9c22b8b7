package order

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var productTypeNames = map[string]string{
	"arrangement": "アレンジメント",
	"bouquet":     "花束",
	"stand":       "スタンド花",
	"orchid":      "胡蝶蘭",
}

var paymentMethodNames = map[string]string{
	PaymentCredit: "クレジットカード (Square)",
	PaymentOnsite: "受取時にお支払い",
}

const (
	unselected   = "未選択"
	emptyMessage = "なし"
)

// ProductTypeDisplay maps a product type key to its label.
func ProductTypeDisplay(productType string) string {
	if name, ok := productTypeNames[productType]; ok {
		return name
	}
	return unselected
}

// PaymentMethodDisplay maps a payment method key to its label.
func PaymentMethodDisplay(method string) string {
	if name, ok := paymentMethodNames[method]; ok {
		return name
	}
	return unselected
}

// TypeDetails renders the two receipt lines: delivery area or pickup time.
func TypeDetails(orderType, region, pickupTime string) string {
	if orderType == OrderTypeDelivery {
		area := "高松市外"
		if region == RegionTakamatsu {
			area = "高松市内"
		}
		return "🚚 受け取り方法: 配送\n📍 エリア: " + area
	}
	return "🛍 受け取り方法: 店頭受取\n⏰ 来店時間: " + pickupTime
}

// BudgetDisplay renders the budget line value, e.g. "5,500円" or
// "7,500円 (その他)".
func BudgetDisplay(budget, budgetCustom string) string {
	if budget == BudgetCustom {
		if budgetCustom == "" {
			budgetCustom = "0"
		}
		return FormatYen(budgetCustom) + " (その他)"
	}
	return FormatYen(budget)
}

// FormatYen parses the leading integer of s and renders it with Japanese
// digit grouping and a 円 suffix. Unparseable input renders as "NaN円".
func FormatYen(s string) string {
	return formatInteger(ParseLeadingInt(s)) + "円"
}

// MessageDisplay renders the free-text request, "なし" when empty.
func MessageDisplay(msg string) string {
	if msg == "" {
		return emptyMessage
	}
	return msg
}

// ParseLeadingInt reads an integer the way a browser's parseInt does without
// a radix: leading whitespace is skipped, an optional sign is accepted, a
// 0x prefix selects hexadecimal, and parsing stops at the first non-digit.
// Returns NaN when no digits are found.
func ParseLeadingInt(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}
	if end == 0 {
		return math.NaN()
	}

	digits := s[:end]
	if base == 10 {
		// Correctly rounded; overflow yields ±Inf, which is what we want.
		v, _ := strconv.ParseFloat(digits, 64)
		return sign * v
	}
	if n, err := strconv.ParseInt(digits, base, 64); err == nil {
		return sign * float64(n)
	}
	var v float64
	for i := range len(digits) {
		v = v*float64(base) + float64(digitValue(digits[i]))
	}
	return sign * v
}

func isDigit(c byte, base int) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	if base == 16 {
		return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	}
	return false
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

func formatInteger(v float64) string {
	p := message.NewPrinter(language.Japanese)
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	case v == 0 && math.Signbit(v):
		return "-0"
	case math.Abs(v) < 1<<63:
		return p.Sprintf("%d", int64(v))
	default:
		return p.Sprintf("%.0f", v)
	}
}
