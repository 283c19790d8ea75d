package extract

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultSites(), NewRegistry(), DefaultStockPolicy(), nil)
}

func TestExtractScenarios(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name      string
		url       string
		html      string
		wantStock models.StockState
		wantQty   string
		wantPrice int // -1 means absent
	}{
		{
			name:      "in stock with cart button",
			url:       "https://shop.example.co.jp/item/1",
			html:      "<p>在庫あり カートに入れる ¥12,800 税込</p>",
			wantStock: models.StockInStock,
			wantPrice: 12800,
		},
		{
			name:      "last one remaining",
			url:       "https://shop.example.co.jp/item/2",
			html:      "<p>残り1点 販売価格 ¥3,980</p>",
			wantStock: models.StockLastOne,
			wantQty:   "1",
			wantPrice: 3980,
		},
		{
			name:      "sold out without purchase ui",
			url:       "https://shop.example.co.jp/item/3",
			html:      "<p>売り切れました</p>",
			wantStock: models.StockOutOfStock,
			wantPrice: -1,
		},
		{
			name:      "empty html",
			url:       "https://shop.example.co.jp/item/4",
			html:      "",
			wantStock: models.StockUnknown,
			wantPrice: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Extract(tt.url, tt.html, false)
			assert.Equal(t, tt.wantStock, res.Stock)
			assert.Equal(t, tt.wantQty, res.Qty)
			assert.Equal(t, tt.wantPrice, res.IntPrice())
			assert.Nil(t, res.Debug)
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	e := newTestEngine()
	url := "https://shop.example.co.jp/item/1"
	html := "<p>在庫あり カートに入れる ¥12,800 税込</p>"

	first := e.Extract(url, html, false)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Extract(url, html, false))
	}
}

func TestExtractPriceBound(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Plugin{
		Name:  "huge-price",
		Hosts: []*regexp.Regexp{regexp.MustCompile(`shop\.example\.co\.jp`)},
		Price: func(url, rawHTML, text string) (int, bool) {
			return 99999999, true
		},
	})
	e := NewEngine(DefaultSites(), reg, DefaultStockPolicy(), nil)

	res := e.Extract("https://shop.example.co.jp/x", "<p>商品ページ</p>", false)
	assert.False(t, res.HasPrice())
}

func TestExtractLastOneConsistency(t *testing.T) {
	e := newTestEngine()
	// The purchase affordance alone reads as plain IN_STOCK; the explicit
	// quantity must still win.
	res := e.Extract("https://shop.example.co.jp/x",
		"<p>在庫あり カートに入れる 残り1点 ¥3,980 税込</p>", false)
	assert.Equal(t, models.StockLastOne, res.Stock)
	assert.Equal(t, "1", res.Qty)
}

func TestExtractStopWordExclusion(t *testing.T) {
	e := newTestEngine()
	res := e.Extract("https://shop.example.co.jp/x", "<p>128ポイント進呈</p>", false)
	assert.False(t, res.HasPrice())
}

func TestExtractDebugInfo(t *testing.T) {
	e := newTestEngine()
	url := "https://shop.example.co.jp/item/1"
	html := "<p>在庫あり カートに入れる ¥12,800 税込</p>"

	plain := e.Extract(url, html, false)
	debugged := e.Extract(url, html, true)

	require.NotNil(t, debugged.Debug)
	assert.Equal(t, "shop.example.co.jp", debugged.Debug.Host)
	assert.NotEmpty(t, debugged.Debug.TextSnippet)

	// Debug mode must not alter the outcome.
	debugged.Debug = nil
	assert.Equal(t, plain, debugged)
}

func TestPluginFillsGapOnly(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Plugin{
		Name:  "always-9999",
		Hosts: []*regexp.Regexp{regexp.MustCompile(`shop\.example\.co\.jp`)},
		Price: func(url, rawHTML, text string) (int, bool) {
			return 9999, true
		},
	})
	e := NewEngine(DefaultSites(), reg, DefaultStockPolicy(), nil)

	// Existing confident price is kept.
	res := e.Extract("https://shop.example.co.jp/x",
		"<p>販売価格 ¥5,000 税込 カートに入れる</p>", false)
	assert.Equal(t, 5000, res.IntPrice())

	// Gap is filled.
	res = e.Extract("https://shop.example.co.jp/y", "<p>商品ページ</p>", false)
	assert.Equal(t, 9999, res.IntPrice())
}

func TestPluginOverride(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Plugin{
		Name:     "override-777",
		Hosts:    []*regexp.Regexp{regexp.MustCompile(`shop\.example\.co\.jp`)},
		Override: true,
		Price: func(url, rawHTML, text string) (int, bool) {
			return 777, true
		},
	})
	e := NewEngine(DefaultSites(), reg, DefaultStockPolicy(), nil)

	res := e.Extract("https://shop.example.co.jp/x",
		"<p>販売価格 ¥5,000 税込</p>", false)
	assert.Equal(t, 777, res.IntPrice())
}

func TestPluginPanicSwallowed(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Plugin{
		Name:  "panics",
		Hosts: []*regexp.Regexp{regexp.MustCompile(`.`)},
		Price: func(url, rawHTML, text string) (int, bool) {
			panic("browser runtime missing")
		},
		Stock: func(url, rawHTML, text string) (models.StockState, bool) {
			panic("browser runtime missing")
		},
	})
	e := NewEngine(DefaultSites(), reg, DefaultStockPolicy(), nil)

	// Both fields unresolved, so both hooks run and panic.
	assert.NotPanics(t, func() {
		res := e.Extract("https://shop.example.co.jp/x", "<p>商品ページ</p>", false)
		assert.Equal(t, models.StockUnknown, res.Stock)
		assert.False(t, res.HasPrice())
	})
}

func TestRegistryIdempotentByName(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	first := &Plugin{
		Name:  "dup",
		Hosts: []*regexp.Regexp{regexp.MustCompile(`.`)},
		Price: func(url, rawHTML, text string) (int, bool) {
			calls++
			return 100, true
		},
	}
	second := &Plugin{
		Name:  "dup",
		Hosts: []*regexp.Regexp{regexp.MustCompile(`.`)},
		Price: func(url, rawHTML, text string) (int, bool) {
			return 200, true
		},
	}
	reg.Register(first)
	reg.Register(second)

	stock, price := reg.Apply("https://x.example/", "x.example", "", "", models.StockUnknown, nil)
	assert.Equal(t, models.StockUnknown, stock)
	require.NotNil(t, price)
	assert.Equal(t, 100, *price)
	assert.Equal(t, 1, calls)
}

func TestRegistryPriorityOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Plugin{
		Name:     "low",
		Hosts:    []*regexp.Regexp{regexp.MustCompile(`.`)},
		Priority: 1,
		Price: func(url, rawHTML, text string) (int, bool) {
			return 111, true
		},
	})
	reg.Register(&Plugin{
		Name:     "high",
		Hosts:    []*regexp.Regexp{regexp.MustCompile(`.`)},
		Priority: 50,
		Price: func(url, rawHTML, text string) (int, bool) {
			return 555, true
		},
	})

	_, price := reg.Apply("https://x.example/", "x.example", "", "", models.StockUnknown, nil)
	require.NotNil(t, price)
	assert.Equal(t, 555, *price)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "jp.mercari.com", hostOf("https://jp.mercari.com/item/m123"))
	assert.Equal(t, "item.rakuten.co.jp", hostOf("http://item.rakuten.co.jp/shop/x/"))
	assert.Equal(t, "not-a-url", hostOf("NOT-A-URL"))
}
