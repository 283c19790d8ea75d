package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenericPrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
		ok   bool
	}{
		{
			name: "glyph prefixed",
			text: "限定品 ¥12,800 税込",
			want: 12800,
			ok:   true,
		},
		{
			name: "unit suffixed",
			text: "販売価格 3980円 です",
			want: 3980,
			ok:   true,
		},
		{
			name: "glyph nearby but not adjacent",
			text: "単品 800(円)で販売中",
			want: 800,
			ok:   true,
		},
		{
			name: "points amount excluded",
			text: "128ポイント獲得",
			ok:   false,
		},
		{
			name: "shipping fee excluded",
			text: "送料 800円",
			ok:   false,
		},
		{
			name: "coupon excluded",
			text: "クーポンで500円OFF",
			ok:   false,
		},
		{
			name: "http status without keyword excluded",
			text: "error 404 not found",
			ok:   false,
		},
		{
			name: "unit noise excluded",
			text: "全長 1500 mm のモデル",
			ok:   false,
		},
		{
			name: "tie break picks minimum",
			text: "価格 5000円 ・ 価格 3000円",
			want: 3000,
			ok:   true,
		},
		{
			name: "bare digits without context excluded",
			text: "品番 38571 シリーズ",
			ok:   false,
		},
		{
			name: "empty text",
			text: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GenericPrice(tt.text)
			assert.Equal(t, tt.ok, ok, "ok mismatch")
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
