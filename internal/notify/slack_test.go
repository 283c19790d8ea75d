package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyPostsPayload(t *testing.T) {
	var got slackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSlack(srv.URL, slog.Default())
	err := s.Notify(context.Background(), "*SKU-1* 在庫変化: 売り切れ → 在庫あり")
	require.NoError(t, err)

	assert.Contains(t, got.Text, "SKU-1")
	require.Len(t, got.Blocks, 1)
	assert.Equal(t, "section", got.Blocks[0].Type)
	assert.Equal(t, "mrkdwn", got.Blocks[0].Text.Type)
}

func TestNotifyTruncatesLongMessages(t *testing.T) {
	var got slackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
	}))
	defer srv.Close()

	s := NewSlack(srv.URL, slog.Default())
	err := s.Notify(context.Background(), strings.Repeat("あ", 5000))
	require.NoError(t, err)

	assert.LessOrEqual(t, len([]rune(got.Text)), maxMessageText+1)
	assert.LessOrEqual(t, len([]rune(got.Blocks[0].Text.Text)), maxBlockText+1)
}

func TestNotifySwallowsDeliveryFailure(t *testing.T) {
	s := NewSlack("http://127.0.0.1:1/unreachable", slog.Default())
	assert.NoError(t, s.Notify(context.Background(), "message"))
}

func TestNotifyNoopWithoutWebhook(t *testing.T) {
	s := NewSlack("", slog.Default())
	assert.NoError(t, s.Notify(context.Background(), "message"))
}
