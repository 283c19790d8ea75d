package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch-jp/supplier-watcher/internal/config"
)

func testConfig() config.FetcherConfig {
	return config.FetcherConfig{
		Timeout:      5 * time.Second,
		MaxRetries:   2,
		RetryDelay:   10 * time.Millisecond,
		DesktopAgent: "desktop-agent",
		MobileAgent:  "mobile-agent",
		MergeMobile:  true,
	}
}

func TestFetchSendsDesktopAgent(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("<html>在庫あり</html>"))
	}))
	defer srv.Close()

	f := New(testConfig(), nil, slog.Default())
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "desktop-agent", gotAgent)
	assert.Contains(t, body, "在庫あり")
	assert.NotContains(t, body, MobileMergeMarker)
}

func TestFetchRetriesOnServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New(testConfig(), nil, slog.Default())
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, 2, attempts)
}

func TestFetchFailsAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := New(testConfig(), nil, slog.Default())
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestSuspect(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "empty", body: "", want: true},
		{name: "whitespace", body: "  \n ", want: true},
		{name: "captcha", body: "<html>Please solve this CAPTCHA</html>", want: true},
		{name: "cloudflare", body: "<title>Just a moment...</title>", want: true},
		{name: "rate limited japanese", body: "アクセスが集中しています", want: true},
		{name: "ordinary listing", body: "<html>在庫あり ¥1,000</html>", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suspect(tt.body))
		})
	}
}

func TestMobileMergeHostSelection(t *testing.T) {
	assert.True(t, mobileMergeHosts.MatchString("https://jp.mercari.com/item/m1"))
	assert.True(t, mobileMergeHosts.MatchString("https://item.fril.jp/abc"))
	assert.False(t, mobileMergeHosts.MatchString("https://www.amazon.co.jp/dp/B000"))
}

func TestFetchMergesMobileRendering(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "mobile-agent" {
			w.Write([]byte("mobile body"))
			return
		}
		w.Write([]byte("desktop body"))
	}))
	defer srv.Close()

	f := New(testConfig(), nil, slog.Default())
	// The path makes the URL match the merge host pattern.
	body, err := f.Fetch(context.Background(), srv.URL+"/mercari/item/m1")
	require.NoError(t, err)

	parts := strings.Split(body, MobileMergeMarker)
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "desktop body")
	assert.Contains(t, parts[1], "mobile body")
}
