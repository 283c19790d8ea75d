package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

func TestSharedStock(t *testing.T) {
	policy := DefaultStockPolicy()

	tests := []struct {
		name    string
		rawHTML string
		text    string
		want    models.StockState
		wantQty string
	}{
		{
			name: "purchase affordance",
			text: "在庫あり カートに入れる ¥12,800",
			want: models.StockInStock,
		},
		{
			name: "sold out text",
			text: "売り切れました",
			want: models.StockOutOfStock,
		},
		{
			name:    "remaining one",
			text:    "残り1点 ¥3,980",
			want:    models.StockLastOne,
			wantQty: "1",
		},
		{
			name:    "remaining many",
			text:    "残り5点 お早めに",
			want:    models.StockInStock,
			wantQty: "5",
		},
		{
			name:    "remaining zero",
			text:    "残り0点",
			want:    models.StockOutOfStock,
			wantQty: "0",
		},
		{
			name:    "quantity survives single sold-out mention",
			text:    "残り5点 売り切れ",
			want:    models.StockInStock,
			wantQty: "5",
		},
		{
			name: "cautionary clause suppressed",
			text: "在庫あり 売り切れの場合はご了承ください カートに入れる",
			want: models.StockInStock,
		},
		{
			name: "cautionary clause alone stays unknown",
			text: "売り切れの場合はご連絡いたします",
			want: models.StockUnknown,
		},
		{
			name: "negated purchase word",
			text: "購入手続きできません 完売しました",
			want: models.StockOutOfStock,
		},
		{
			name:    "structured availability",
			rawHTML: `<link itemprop="availability" href="https://schema.org/InStock">`,
			text:    "商品ページ",
			want:    models.StockInStock,
		},
		{
			name:    "soldout class tips unknown page",
			rawHTML: `<div class="item-sold-out-badge"></div>`,
			text:    "商品ページ",
			want:    models.StockOutOfStock,
		},
		{
			name: "empty input",
			text: "",
			want: models.StockUnknown,
		},
		{
			name:    "quantity overrides structured availability",
			rawHTML: `<link itemprop="availability" href="https://schema.org/InStock">`,
			text:    "残り1点",
			want:    models.StockLastOne,
			wantQty: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock, qty := sharedStock(tt.rawHTML, tt.text, policy)
			assert.Equal(t, tt.want, stock)
			assert.Equal(t, tt.wantQty, qty)
		})
	}
}

func TestRemainingQty(t *testing.T) {
	tests := []struct {
		text string
		n    int
		ok   bool
	}{
		{"残り1点", 1, true},
		{"残り 3 個", 3, true},
		{"残り12枚", 12, true},
		{"在庫あり", 0, false},
	}

	for _, tt := range tests {
		n, ok := remainingQty(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		if tt.ok {
			assert.Equal(t, tt.n, n, tt.text)
		}
	}
}
