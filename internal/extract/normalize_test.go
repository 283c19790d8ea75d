package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "strips markup",
			html: "<div><p>在庫あり</p><span>¥1,000</span></div>",
			want: "在庫あり ¥1,000",
		},
		{
			name: "merges alt text",
			html: `<img src="x.png" alt="売り切れ">`,
			want: "売り切れ",
		},
		{
			name: "merges aria label",
			html: `<button aria-label="カートに入れる">buy</button>`,
			want: "buy カートに入れる",
		},
		{
			name: "folds fullwidth digits",
			html: "<p>１２８００円</p>",
			want: "12800円",
		},
		{
			name: "collapses whitespace",
			html: "<p>在庫  あり\n\n\tです</p>",
			want: "在庫 あり です",
		},
		{
			name: "empty input",
			html: "",
			want: "",
		},
		{
			name: "whitespace only",
			html: "   \n\t ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.html))
		})
	}
}

func TestNormalizeKeepsElementBoundaries(t *testing.T) {
	// Adjacent block elements must not fuse their text together, or digit
	// runs from separate elements would merge into bogus amounts.
	got := Normalize("<div>100</div><div>200</div>")
	assert.Equal(t, "100 200", got)
}

func TestFoldWidth(t *testing.T) {
	assert.Equal(t, "12,800.5", FoldWidth("１２，８００．５"))
	assert.Equal(t, "abcあ", FoldWidth("abcあ"))
	assert.Equal(t, "", FoldWidth(""))
}

func TestWindowRuneSafety(t *testing.T) {
	s := "あいうえおかきくけこ"
	// Span covering "かき" (bytes 15..21), padded by 2 runes each side.
	got := window(s, 15, 21, 2)
	assert.Equal(t, "えおかきくけ", got)

	// Pads clamp at string bounds.
	assert.Equal(t, s, window(s, 0, len(s), 5))
}

func TestHeadRunes(t *testing.T) {
	assert.Equal(t, "あいう", headRunes("あいうえお", 3))
	assert.Equal(t, "abc", headRunes("abc", 10))
	assert.Equal(t, "", headRunes("", 5))
}
