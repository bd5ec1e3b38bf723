package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ParlayEngine/internal/config"
	"ParlayEngine/internal/interfaces"
	"ParlayEngine/internal/model"
	"ParlayEngine/internal/utils/httpclient"
	"ParlayEngine/internal/utils/memcache"

	"github.com/sirupsen/logrus"
)

// Ensure MarketAdapter implements both lookup interfaces
var _ interfaces.MarketFetcher = (*MarketAdapter)(nil)
var _ interfaces.ResolutionFetcher = (*MarketAdapter)(nil)

// MarketAdapter Polymarket 市场查询适配器，对接 Gamma API
// 市场元数据走注入的 TTL 缓存（允许数十秒陈旧）；结算查询必须实时，不走缓存
type MarketAdapter struct {
	cfg        *config.PolymarketConfig
	httpClient *http.Client
	cache      *memcache.Cache[*model.MarketInfo]
	logger     *logrus.Logger
}

// NewMarketAdapter 创建市场查询适配器
func NewMarketAdapter(cfg *config.PolymarketConfig, logger *logrus.Logger) *MarketAdapter {
	return &MarketAdapter{
		cfg:        cfg,
		httpClient: httpclient.New(httpclient.Options{Timeout: cfg.Timeout, Proxy: cfg.Proxy}, logger),
		cache:      memcache.New[*model.MarketInfo](time.Duration(cfg.MarketCacheTTL)*time.Second, cfg.MarketCacheSize),
		logger:     logger,
	}
}

// GetMarket 按市场 ID 返回统一市场视图（缓存优先）
func (a *MarketAdapter) GetMarket(ctx context.Context, marketID string) (*model.MarketInfo, error) {
	if cached, ok := a.cache.Get(marketID); ok {
		return cached, nil
	}
	gm, err := a.fetchGammaMarket(ctx, marketID)
	if err != nil {
		return nil, err
	}
	info, err := a.toMarketInfo(gm)
	if err != nil {
		return nil, err
	}
	a.cache.Set(marketID, info)
	return info, nil
}

// GetResolution 按市场 ID 查询结算状态（实时，不缓存）
func (a *MarketAdapter) GetResolution(ctx context.Context, marketID string) (*model.MarketResolution, error) {
	gm, err := a.fetchGammaMarket(ctx, marketID)
	if err != nil {
		return nil, err
	}
	prices, err := parseJSONStringSlice(gm.OutcomePrices)
	if err != nil || len(prices) < 2 {
		return nil, fmt.Errorf("市场 %s 结算价格解析失败: %v", marketID, err)
	}
	res := &model.MarketResolution{Closed: gm.Closed}
	for i := 0; i < 2; i++ {
		p, err := strconv.ParseFloat(strings.TrimSpace(prices[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("市场 %s 结算价格 %q 非法: %w", marketID, prices[i], err)
		}
		res.OutcomePrices[i] = p
	}
	return res, nil
}

// fetchGammaMarket 请求 Gamma /markets/:id；按 slug 查询时返回数组，取第一个
func (a *MarketAdapter) fetchGammaMarket(ctx context.Context, marketID string) (*model.GammaMarket, error) {
	u := strings.TrimSuffix(a.cfg.GammaBaseURL, "/") + "/markets/" + url.PathEscape(marketID)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 Gamma 市场失败: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gamma 返回 %d: %s", resp.StatusCode, string(body))
	}
	var gm model.GammaMarket
	if strings.HasPrefix(strings.TrimSpace(string(body)), "[") {
		var arr []model.GammaMarket
		if err := json.Unmarshal(body, &arr); err != nil || len(arr) == 0 {
			return nil, fmt.Errorf("未找到市场 %s", marketID)
		}
		gm = arr[0]
	} else if err := json.Unmarshal(body, &gm); err != nil {
		return nil, fmt.Errorf("解析 Gamma 响应失败: %w", err)
	}
	return &gm, nil
}

// toMarketInfo 抹平 Gamma 的伪 JSON 字符串字段，转为统一市场视图
// outcome 顺序约定：第 1 个=YES，第 2 个=NO（二元市场不依赖 outcome 名称）
func (a *MarketAdapter) toMarketInfo(gm *model.GammaMarket) (*model.MarketInfo, error) {
	prices, err := parseJSONStringSlice(gm.OutcomePrices)
	if err != nil || len(prices) < 2 {
		return nil, fmt.Errorf("市场 %s 价格列表解析失败: %v", gm.ID, err)
	}
	tokens, err := parseJSONStringSlice(gm.ClobTokenIds)
	if err != nil || len(tokens) < 2 {
		return nil, fmt.Errorf("市场 %s token 列表解析失败: %v", gm.ID, err)
	}

	info := &model.MarketInfo{
		MarketID: gm.ID,
		Question: gm.Question,
		Category: gm.Category,
		Active:   gm.Active,
		Closed:   gm.Closed,
		TokenIDs: [2]string{strings.TrimSpace(tokens[0]), strings.TrimSpace(tokens[1])},
	}
	if info.YesPrice, err = strconv.ParseFloat(strings.TrimSpace(prices[0]), 64); err != nil {
		return nil, fmt.Errorf("市场 %s YES 价格 %q 非法: %w", gm.ID, prices[0], err)
	}
	if info.NoPrice, err = strconv.ParseFloat(strings.TrimSpace(prices[1]), 64); err != nil {
		return nil, fmt.Errorf("市场 %s NO 价格 %q 非法: %w", gm.ID, prices[1], err)
	}
	if gm.Liquidity != "" {
		if liq, err := strconv.ParseFloat(gm.Liquidity, 64); err == nil {
			info.Liquidity = liq
		}
	}
	if gm.EndDate != "" {
		if t, err := time.Parse(time.RFC3339, gm.EndDate); err == nil {
			info.EndDate = t.UnixMilli()
		} else {
			a.logger.Warnf("市场 %s 结束时间解析失败: %v", gm.ID, err)
		}
	}
	return info, nil
}

// parseJSONStringSlice 解析伪JSON数组字符串（如 "[\"Yes\",\"No\"]"）
func parseJSONStringSlice(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
