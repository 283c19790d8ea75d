package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToYen(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  int
		ok    bool
	}{
		{name: "plain digits", token: "3980", want: 3980, ok: true},
		{name: "comma grouped", token: "12,800", want: 12800, ok: true},
		{name: "glyph prefixed", token: "¥12,800", want: 12800, ok: true},
		{name: "fullwidth glyph", token: "￥3,980", want: 3980, ok: true},
		{name: "unit suffixed", token: "5000円", want: 5000, ok: true},
		{name: "fullwidth digits", token: "１２８００", want: 12800, ok: true},
		{name: "fullwidth comma", token: "12，800", want: 12800, ok: true},
		{name: "empty", token: "", ok: false},
		{name: "no digits", token: "円", ok: false},
		{name: "zero out of range", token: "0", ok: false},
		{name: "above bound", token: "10,000,000", want: 0, ok: false},
		{name: "at bound", token: "9,999,999", want: 9_999_999, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToYen(tt.token)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseYenStrict(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  int
		ok    bool
	}{
		{name: "glyph", token: "¥3,980", want: 3980, ok: true},
		{name: "unit word", token: "3980円", want: 3980, ok: true},
		{name: "comma counts as marker", token: "12,800", want: 12800, ok: true},
		{name: "bare digits rejected", token: "3980", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseYenStrict(tt.token)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestManYen(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  int
		ok    bool
	}{
		{name: "man only", token: "3万", want: 30000, ok: true},
		{name: "man with remainder", token: "1万2000", want: 12000, ok: true},
		{name: "man with unit", token: "2万5000円", want: 25000, ok: true},
		{name: "fullwidth digits", token: "１万２０００", want: 12000, ok: true},
		{name: "no man marker", token: "12000", ok: false},
		{name: "trailing junk", token: "1万2000ポイント", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ManYen(tt.token)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
