package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

func TestStockLabel(t *testing.T) {
	tests := []struct {
		name  string
		host  string
		stock models.StockState
		want  string
	}{
		{
			name:  "shop site in stock",
			host:  "https://www.suruga-ya.jp/product/detail/1",
			stock: models.StockInStock,
			want:  "在庫あり",
		},
		{
			name:  "shop site collapses last one",
			host:  "https://www.amazon.co.jp/dp/B000",
			stock: models.StockLastOne,
			want:  "在庫あり",
		},
		{
			name:  "shop site out",
			host:  "https://item.rakuten.co.jp/shop/x",
			stock: models.StockOutOfStock,
			want:  "在庫なし",
		},
		{
			name:  "flea market last one",
			host:  "https://jp.mercari.com/item/m1",
			stock: models.StockLastOne,
			want:  "残り1点",
		},
		{
			name:  "flea market sold",
			host:  "https://item.fril.jp/abc",
			stock: models.StockOutOfStock,
			want:  "売り切れ",
		},
		{
			name:  "unknown anywhere",
			host:  "https://jp.mercari.com/item/m1",
			stock: models.StockUnknown,
			want:  "確認中",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StockLabel(tt.host, tt.stock))
		})
	}
}

func intPtr(v int) *int { return &v }

func TestPriceChanged(t *testing.T) {
	tests := []struct {
		name    string
		old     *int
		new     *int
		minDiff int
		want    bool
	}{
		{name: "both absent", minDiff: 100, want: false},
		{name: "appears", new: intPtr(5000), minDiff: 100, want: true},
		{name: "disappears", old: intPtr(5000), minDiff: 100, want: true},
		{name: "below threshold", old: intPtr(5000), new: intPtr(5050), minDiff: 100, want: false},
		{name: "at threshold", old: intPtr(5000), new: intPtr(5100), minDiff: 100, want: true},
		{name: "drop counts too", old: intPtr(5000), new: intPtr(4800), minDiff: 100, want: true},
		{name: "unchanged", old: intPtr(5000), new: intPtr(5000), minDiff: 100, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, priceChanged(tt.old, tt.new, tt.minDiff))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "¥5000", formatPrice(intPtr(5000)))
	assert.Equal(t, "不明", formatPrice(nil))
}
