package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch-jp/supplier-watcher/internal/extract"
	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

func newTestRouter() *chi.Mux {
	h := NewHandlers(extract.NewDefaultEngine(slog.Default()), nil, nil, slog.Default())
	r := chi.NewRouter()
	r.Post("/api/v1/extract", h.Extract)
	return r
}

func postExtract(t *testing.T, r *chi.Mux, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestExtractEndpoint(t *testing.T) {
	r := newTestRouter()

	body, err := json.Marshal(ExtractRequest{
		URL:  "https://shop.example.co.jp/item/1",
		HTML: "<p>在庫あり カートに入れる ¥12,800 税込</p>",
	})
	require.NoError(t, err)

	rec := postExtract(t, r, string(body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res models.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, models.StockInStock, res.Stock)
	require.NotNil(t, res.Price)
	assert.Equal(t, 12800, *res.Price)
	assert.Nil(t, res.Debug)
}

func TestExtractEndpointDebug(t *testing.T) {
	r := newTestRouter()

	body, err := json.Marshal(ExtractRequest{
		URL:   "https://shop.example.co.jp/item/1",
		HTML:  "<p>売り切れました</p>",
		Debug: true,
	})
	require.NoError(t, err)

	rec := postExtract(t, r, string(body))
	assert.Equal(t, http.StatusOK, rec.Code)

	var res models.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, models.StockOutOfStock, res.Stock)
	require.NotNil(t, res.Debug)
	assert.Equal(t, "shop.example.co.jp", res.Debug.Host)
}

func TestExtractEndpointValidation(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "missing url",
			body:    `{"html":"<p>在庫あり</p>"}`,
			wantMsg: "url is required",
		},
		{
			name:    "malformed json",
			body:    `{"url": `,
			wantMsg: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postExtract(t, r, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantMsg, resp["error"])
		})
	}
}
