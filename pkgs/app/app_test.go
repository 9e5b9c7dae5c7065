package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"moviebot/whatsapp-bot/pkgs/conf"
	"moviebot/whatsapp-bot/pkgs/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *conf.Config {
	t.Helper()
	cfg, err := conf.LoadWithProviders(conf.MapProvider{
		"GEMINI_API_KEY":           "test-key",
		"SESSION_CLEANUP_INTERVAL": "10ms",
	})
	require.NoError(t, err)
	return cfg
}

func TestNew_MemoryStore(t *testing.T) {
	cfg := testConfig(t)
	client := llmtest.Respond("Try Casablanca.")

	a, err := New(context.Background(), cfg, WithClient(client))
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.janitor)
	assert.True(t, a.janitor.IsRunning())

	router, err := a.Router()
	require.NoError(t, err)

	form := url.Values{"From": {"whatsapp:+15550000"}, "Body": {"a romantic classic?"}}
	req := httptest.NewRequest(http.MethodPost, "/bot", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Try Casablanca.")
	assert.Equal(t, 1, client.Calls())

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClose_StopsJanitor(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), WithClient(llmtest.Respond("x")))
	require.NoError(t, err)

	require.NoError(t, a.Close())
	assert.False(t, a.janitor.IsRunning())
}

func TestServer(t *testing.T) {
	cfg := testConfig(t)
	cfg.BaseConfig.Port = 8081
	a, err := New(context.Background(), cfg, WithClient(llmtest.Respond("x")))
	require.NoError(t, err)
	defer a.Close()

	srv, err := a.Server()
	require.NoError(t, err)
	assert.Equal(t, ":8081", srv.Addr)
	assert.GreaterOrEqual(t, srv.WriteTimeout, cfg.GeminiConfig.Timeout+cfg.SessionConfig.LockTimeout)
	assert.Equal(t, 60*time.Second, srv.IdleTimeout)
}

func TestNew_RedisUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.SessionConfig.Store = "redis"
	cfg.RedisConfig.URL = "redis://127.0.0.1:1/0"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := New(ctx, cfg, WithClient(llmtest.Respond("x")))
	assert.Error(t, err)
}
