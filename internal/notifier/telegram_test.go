package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTelegram struct {
	mu       sync.Mutex
	sent     []map[string]string
	failSend bool
	updates  []string // served once, one per getUpdates call
}

func (f *fakeTelegram) sentMessages() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.sent...)
}

func (f *fakeTelegram) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"sentinel","username":"sentinel_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		f.mu.Lock()
		var next string
		if len(f.updates) > 0 {
			next, f.updates = f.updates[0], f.updates[1:]
		}
		f.mu.Unlock()
		if next == "" {
			time.Sleep(20 * time.Millisecond)
			w.Write([]byte(`{"ok":true,"result":[]}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":[` + next + `]}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if f.failSend {
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`))
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.sent = append(f.sent, map[string]string{
			"chat_id":    r.PostForm.Get("chat_id"),
			"text":       r.PostForm.Get("text"),
			"parse_mode": r.PostForm.Get("parse_mode"),
		})
		f.mu.Unlock()
		w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestNotifier(t *testing.T, fake *fakeTelegram, token, chatID string) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier(token, chatID, "")
	n.Endpoint = srv.URL + "/bot%s/%s"
	return n
}

func TestTelegramNotifier_Send(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(t, fake, "token", "42")

	require.NoError(t, n.Send(context.Background(), "*hello*"))
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "42", fake.sent[0]["chat_id"])
	assert.Equal(t, "*hello*", fake.sent[0]["text"])
	assert.Equal(t, "Markdown", fake.sent[0]["parse_mode"])
}

func TestTelegramNotifier_ChannelChatID(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(t, fake, "token", "@alerts")

	require.NoError(t, n.Send(context.Background(), "hi"))
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "@alerts", fake.sent[0]["chat_id"])
}

func TestTelegramNotifier_NotConfigured(t *testing.T) {
	n := NewTelegramNotifier("", "42", "")
	assert.False(t, n.Configured())
	assert.ErrorIs(t, n.Send(context.Background(), "x"), ErrNotConfigured)
}

func TestTelegramNotifier_SendFailure(t *testing.T) {
	fake := &fakeTelegram{failSend: true}
	n := newTestNotifier(t, fake, "token", "42")

	err := n.Send(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}
