package order

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/shirasaka-flower/line-gateway/internal/errors"
)

const sampleOrder = `{
	"name": "白坂 花子",
	"phone": "090-1234-5678",
	"date": "2025-04-01",
	"orderType": "delivery",
	"region": "takamatsu",
	"productType": "bouquet",
	"quantity": "2",
	"usage": "birthday",
	"budget": "5500",
	"message": "赤系で",
	"paymentMethod": "credit"
}`

const sampleNotification = "🌸 新しい注文が入りました！ 🌸\n" +
	"\n" +
	"👤 お名前: 白坂 花子\n" +
	"📞 電話番号: 090-1234-5678\n" +
	"📅 日時: 2025-04-01\n" +
	"\n" +
	"🌷 商品: 花束\n" +
	"🚚 受け取り方法: 配送\n" +
	"📍 エリア: 高松市内\n" +
	"📦 数量: 2個\n" +
	"\n" +
	"🎁 用途: birthday\n" +
	"💰 予算: 5,500円\n" +
	"💳 支払: クレジットカード (Square)\n" +
	"\n" +
	"📝 メッセージ/要望:\n" +
	"赤系で"

func TestRenderNotification_Exact(t *testing.T) {
	s, err := Decode([]byte(sampleOrder))
	require.NoError(t, err)

	text, err := s.RenderNotification()
	require.NoError(t, err)
	assert.Equal(t, sampleNotification, text)

	again, err := s.RenderNotification()
	require.NoError(t, err)
	assert.Equal(t, text, again, "rendering must be deterministic")
}

func TestRenderNotification_MissingFields(t *testing.T) {
	s, err := Decode([]byte(`{}`))
	require.NoError(t, err)

	text, err := s.RenderNotification()
	require.NoError(t, err)
	assert.Contains(t, text, "👤 お名前: \n")
	assert.Contains(t, text, "🌷 商品: 未選択\n")
	assert.Contains(t, text, "🛍 受け取り方法: 店頭受取\n⏰ 来店時間: \n")
	assert.Contains(t, text, "📦 数量: 個\n")
	assert.Contains(t, text, "💰 予算: NaN円\n")
	assert.Contains(t, text, "💳 支払: 未選択\n")
	assert.Contains(t, text, "📝 メッセージ/要望:\nなし")
}

func TestRenderNotification_ValuesVerbatim(t *testing.T) {
	s := &Submission{Name: "<b>A&B</b>", Message: "{{.Name}}"}
	text, err := s.RenderNotification()
	require.NoError(t, err)
	assert.Contains(t, text, "お名前: <b>A&B</b>\n")
	assert.Contains(t, text, "要望:\n{{.Name}}")
}

func TestBudgetDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		budget, custom, want string
	}{
		{"3300", "", "3,300円"},
		{"5500", "", "5,500円"},
		{"11000", "", "11,000円"},
		{"custom", "7500", "7,500円 (その他)"},
		{"custom", "", "0円 (その他)"},
		{"custom", "12000yen", "12,000円 (その他)"},
		{"", "", "NaN円"},
		{"abc", "", "NaN円"},
		{"1234567", "", "1,234,567円"},
		{"99999999999999999999", "", "100,000,000,000,000,000,000円"},
		{"-0", "", "-0円"},
		{"custom", "-0", "-0円 (その他)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BudgetDisplay(tt.budget, tt.custom), "budget=%q custom=%q", tt.budget, tt.custom)
	}
}

func TestParseLeadingInt(t *testing.T) {
	t.Parallel()

	tests := map[string]float64{
		"5500":    5500,
		"  42abc": 42,
		"+7":      7,
		"-1200":   -1200,
		"0x1A":    26,
		"3.9":     3,
		"007":     7,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLeadingInt(in), "input %q", in)
	}
	for _, in := range []string{"", "abc", "-", " ", "0x", "¥3000"} {
		assert.True(t, math.IsNaN(ParseLeadingInt(in)), "input %q", in)
	}
}

func TestFormatYen_Negative(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "-1,200円", FormatYen("-1200"))
}

func TestTypeDetails(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "🚚 受け取り方法: 配送\n📍 エリア: 高松市内", TypeDetails("delivery", "takamatsu", ""))
	assert.Equal(t, "🚚 受け取り方法: 配送\n📍 エリア: 高松市外", TypeDetails("delivery", "other", ""))
	assert.Equal(t, "🛍 受け取り方法: 店頭受取\n⏰ 来店時間: 14:30", TypeDetails("pickup", "", "14:30"))
	assert.Equal(t, "🛍 受け取り方法: 店頭受取\n⏰ 来店時間: 10:30", TypeDetails("pickup", "takamatsu", "10:30"))
}

func TestDisplayMappings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "アレンジメント", ProductTypeDisplay("arrangement"))
	assert.Equal(t, "花束", ProductTypeDisplay("bouquet"))
	assert.Equal(t, "スタンド花", ProductTypeDisplay("stand"))
	assert.Equal(t, "胡蝶蘭", ProductTypeDisplay("orchid"))
	assert.Equal(t, "未選択", ProductTypeDisplay("unknown"))

	assert.Equal(t, "クレジットカード (Square)", PaymentMethodDisplay("credit"))
	assert.Equal(t, "受取時にお支払い", PaymentMethodDisplay("onsite"))
	assert.Equal(t, "未選択", PaymentMethodDisplay(""))

	assert.Equal(t, "なし", MessageDisplay(""))
	assert.Equal(t, "白系", MessageDisplay("白系"))
}

func TestDecode(t *testing.T) {
	t.Parallel()

	s, err := Decode([]byte(`{"quantity": 2, "budget": 5500, "message": null, "usage": true, "price": 2.50, "extra": {"x": 1}}`))
	require.NoError(t, err)
	assert.Equal(t, Field("2"), s.Quantity)
	assert.Equal(t, Field("5500"), s.Budget)
	assert.Equal(t, Field(""), s.Message)
	assert.Equal(t, Field("true"), s.Usage)

	for _, body := range []string{``, `null`, `[]`, `"order"`, `{"name":`, `{"name": {"first": "A"}}`} {
		_, err := Decode([]byte(body))
		assert.ErrorIs(t, err, domerrors.ErrMalformedBody, "body %q", body)
	}
}

func TestFieldFormatNumber(t *testing.T) {
	t.Parallel()

	var f Field
	require.NoError(t, f.UnmarshalJSON([]byte(`2.50`)))
	assert.Equal(t, Field("2.5"), f)
	require.NoError(t, f.UnmarshalJSON([]byte(`1e3`)))
	assert.Equal(t, Field("1000"), f)
}

func TestPaymentURL(t *testing.T) {
	t.Parallel()

	links := map[string]string{"5500": "https://square.link/u/cRv8q9eh"}

	s := &Submission{PaymentMethod: PaymentCredit, Budget: "5500"}
	url, ok := s.PaymentURL(links)
	assert.True(t, ok)
	assert.Equal(t, "https://square.link/u/cRv8q9eh", url)

	for _, other := range []*Submission{
		{PaymentMethod: PaymentOnsite, Budget: "5500"},
		{PaymentMethod: PaymentCredit, Budget: "custom", BudgetCustom: "5500"},
		{PaymentMethod: PaymentCredit, Budget: "3300"},
	} {
		_, ok := other.PaymentURL(links)
		assert.False(t, ok, "%+v", other)
	}
}

func TestValidator(t *testing.T) {
	t.Parallel()

	v := NewValidator()

	valid, err := Decode([]byte(sampleOrder))
	require.NoError(t, err)
	assert.NoError(t, v.Validate(valid))

	pickup := *valid
	pickup.OrderType = OrderTypePickup
	pickup.Region = ""
	pickup.PickupTime = "10:30"
	assert.NoError(t, v.Validate(&pickup))

	invalid := &Submission{
		OrderType:     OrderTypeDelivery,
		ProductType:   "tulip",
		Quantity:      "two",
		Budget:        BudgetCustom,
		BudgetCustom:  "1500",
		PaymentMethod: PaymentCredit,
		Date:          "April 1",
	}
	err = v.Validate(invalid)
	require.Error(t, err)
	assert.ErrorIs(t, err, domerrors.ErrInvalidOrder)

	var verrs domerrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := verrs.Fields()
	for _, name := range []string{"name", "phone", "date", "productType", "quantity", "region", "budgetCustom"} {
		assert.Contains(t, fields, name)
	}
	assert.NotContains(t, fields, "paymentMethod")
	assert.Equal(t, "must be one of: arrangement bouquet stand orchid", fields["productType"])
}
