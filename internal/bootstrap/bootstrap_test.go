package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Zhima-Mochi/garmentshop/internal/config"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.Service.Name = "garmentshop"
	cfg.Service.Env = "dev"
	cfg.Store.Driver = config.StoreMemory
	cfg.Session.BcryptCost = 4
	return cfg
}

func TestNewMemoryApp(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, testConfig(), WithZapLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	n, err := app.Shop.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	app.Bus.Start(ctx)

	srv := httptest.NewServer(app.Handler)
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = srv.Client().Get(srv.URL + "/api/v1/garments")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestNewFailsOnUnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Session.RedisAddr = "127.0.0.1:1"
	_, err := New(context.Background(), cfg, WithZapLogger(zap.NewNop()))
	assert.Error(t, err)
}
