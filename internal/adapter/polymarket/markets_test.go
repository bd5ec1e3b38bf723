package polymarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ParlayEngine/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gammaMarketBody = `{
	"id": "512329",
	"question": "Will it rain tomorrow?",
	"outcomes": "[\"Yes\", \"No\"]",
	"outcomePrices": "[\"0.62\", \"0.38\"]",
	"clobTokenIds": "[\"tok-yes\", \"tok-no\"]",
	"endDate": "2026-09-01T12:00:00Z",
	"liquidity": "15000.5",
	"category": "Weather",
	"active": true,
	"closed": false
}`

func newTestMarketAdapter(t *testing.T, handler http.HandlerFunc) (*MarketAdapter, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	cfg := &config.PolymarketConfig{
		GammaBaseURL:    srv.URL,
		Timeout:         5,
		MarketCacheTTL:  60,
		MarketCacheSize: 16,
	}
	return NewMarketAdapter(cfg, logger), srv
}

func TestGetMarket_ParsesGammaResponse(t *testing.T) {
	adapter, _ := newTestMarketAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets/512329", r.URL.Path)
		w.Write([]byte(gammaMarketBody))
	})

	info, err := adapter.GetMarket(context.Background(), "512329")
	require.NoError(t, err)
	assert.Equal(t, "512329", info.MarketID)
	assert.Equal(t, "Will it rain tomorrow?", info.Question)
	assert.InDelta(t, 0.62, info.YesPrice, 1e-9)
	assert.InDelta(t, 0.38, info.NoPrice, 1e-9)
	assert.Equal(t, [2]string{"tok-yes", "tok-no"}, info.TokenIDs)
	assert.InDelta(t, 15000.5, info.Liquidity, 1e-6)
	assert.True(t, info.Active)
	assert.False(t, info.Closed)
	// 2026-09-01T12:00:00Z
	assert.Equal(t, int64(1788264000000), info.EndDate)
}

// 第二次查询命中缓存，不再请求上游
func TestGetMarket_UsesCache(t *testing.T) {
	hits := 0
	adapter, _ := newTestMarketAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(gammaMarketBody))
	})

	_, err := adapter.GetMarket(context.Background(), "512329")
	require.NoError(t, err)
	_, err = adapter.GetMarket(context.Background(), "512329")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

// 按 slug 查询时 Gamma 返回数组，取第一个
func TestGetMarket_ArrayResponse(t *testing.T) {
	adapter, _ := newTestMarketAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[" + gammaMarketBody + "]"))
	})

	info, err := adapter.GetMarket(context.Background(), "will-it-rain-tomorrow")
	require.NoError(t, err)
	assert.Equal(t, "512329", info.MarketID)
}

func TestGetMarket_UpstreamError(t *testing.T) {
	adapter, _ := newTestMarketAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := adapter.GetMarket(context.Background(), "missing")
	assert.Error(t, err)
}

// 结算查询不走缓存，每次实时请求
func TestGetResolution_Uncached(t *testing.T) {
	hits := 0
	adapter, _ := newTestMarketAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{
			"id": "512329",
			"outcomePrices": "[\"1\", \"0\"]",
			"clobTokenIds": "[\"tok-yes\", \"tok-no\"]",
			"closed": true
		}`))
	})

	res, err := adapter.GetResolution(context.Background(), "512329")
	require.NoError(t, err)
	assert.True(t, res.Closed)
	assert.Equal(t, [2]float64{1, 0}, res.OutcomePrices)

	_, err = adapter.GetResolution(context.Background(), "512329")
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestParseJSONStringSlice(t *testing.T) {
	out, err := parseJSONStringSlice(`["Yes", "No"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Yes", "No"}, out)

	out, err = parseJSONStringSlice("")
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = parseJSONStringSlice("not json")
	assert.Error(t, err)
}
