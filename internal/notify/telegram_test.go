package notify

import (
	"bountywatch/internal/telemetry"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type botApi struct {
	mu       sync.Mutex
	requests []url.Values
	paths    []string
	fail     bool
}

func (b *botApi) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	b.paths = append(b.paths, r.URL.Path)
	b.requests = append(b.requests, r.PostForm)

	if b.fail {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
		return
	}
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
}

func newTestTelegram(t *testing.T, api *botApi, tel telemetry.API) Telegram {
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return NewTelegram(TelegramConfig{
		BaseUrl:  srv.URL,
		BotToken: "123:secret",
		ChatId:   "-1001",
	}, tel)
}

func TestTelegramNotify(t *testing.T) {
	api := &botApi{}
	tg := newTestTelegram(t, api, telemetry.NewRecorder())

	require.NoError(t, tg.Notify(context.Background(), bounty))
	require.Equal(t, []string{"/bot123:secret/sendMessage"}, api.paths)
	require.Equal(t, "-1001", api.requests[0].Get("chat_id"))
	require.Equal(t, "Markdown", api.requests[0].Get("parse_mode"))
	require.Equal(t, Markdown(bounty), api.requests[0].Get("text"))
}

func TestTelegramNotifyFailure(t *testing.T) {
	api := &botApi{fail: true}
	rec := telemetry.NewRecorder()
	tg := newTestTelegram(t, api, rec)

	err := tg.Notify(context.Background(), bounty)
	require.ErrorContains(t, err, "chat not found")
	require.Len(t, rec.Find(telemetry.KindBroken, report_telegram_send), 1)
}
