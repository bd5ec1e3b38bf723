package polymarket

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ParlayEngine/internal/config"
	"ParlayEngine/internal/interfaces"

	"github.com/GoPolymarket/polymarket-go-sdk"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
	"github.com/sirupsen/logrus"
)

// Ensure TradingAdapter implements interfaces.TradingAdapter
var _ interfaces.TradingAdapter = (*TradingAdapter)(nil)

// TradingAdapter Polymarket 下单适配器，对接 CLOB API
// 构建侧私钥来自配置；用户 API 凭证逐请求传入，按 api_key 缓存已认证客户端
type TradingAdapter struct {
	cfg     *config.PolymarketConfig
	markets *MarketAdapter // 下单前查 tick size
	logger  *logrus.Logger

	mu      sync.Mutex
	signer  auth.Signer
	clients map[string]clob.Client // api_key -> 已认证 CLOB 客户端
}

// NewTradingAdapter 创建 Polymarket 下单适配器
func NewTradingAdapter(cfg *config.PolymarketConfig, markets *MarketAdapter, logger *logrus.Logger) *TradingAdapter {
	return &TradingAdapter{
		cfg:     cfg,
		markets: markets,
		logger:  logger,
		clients: make(map[string]clob.Client),
	}
}

// Ready 构建侧凭证（签名私钥）已配置才可下单
func (t *TradingAdapter) Ready() error {
	if strings.TrimSpace(t.cfg.AuthPrivateKey) == "" {
		return fmt.Errorf("Polymarket 下单需配置 auth_private_key（私钥）")
	}
	return nil
}

// clientFor 延迟初始化签名器，并按用户 API 凭证缓存已认证的 CLOB 客户端
func (t *TradingAdapter) clientFor(creds *interfaces.APICredentials) (clob.Client, auth.Signer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.signer == nil {
		pk := strings.TrimSpace(t.cfg.AuthPrivateKey)
		if pk == "" {
			return nil, nil, fmt.Errorf("Polymarket 下单需配置 auth_private_key（私钥）")
		}
		signer, err := auth.NewPrivateKeySigner(pk, 137) // Polygon mainnet
		if err != nil {
			return nil, nil, fmt.Errorf("Polymarket 私钥解析失败: %w", err)
		}
		t.signer = signer
	}

	if client, ok := t.clients[creds.APIKey]; ok {
		return client, t.signer, nil
	}

	apiKey := &auth.APIKey{
		Key:        strings.TrimSpace(creds.APIKey),
		Secret:     strings.TrimSpace(creds.Secret),
		Passphrase: strings.TrimSpace(creds.Passphrase),
	}
	sdkCfg := polymarket.DefaultConfig()
	sdkCfg.BaseURLs.CLOB = strings.TrimSuffix(t.cfg.ClobBaseURL, "/")
	client := polymarket.NewClient(polymarket.WithConfig(sdkCfg)).WithAuth(t.signer, apiKey).CLOB
	t.clients[creds.APIKey] = client
	return client, t.signer, nil
}

// resolveTickSize 从 Gamma 拉取市场的最小价格步长，失败时退回 0.01
func (t *TradingAdapter) resolveTickSize(ctx context.Context, marketID string) float64 {
	gm, err := t.markets.fetchGammaMarket(ctx, marketID)
	if err != nil {
		t.logger.WithError(err).WithField("market_id", marketID).Warn("查询 tick size 失败，使用默认 0.01")
		return 0.01
	}
	if gm.OrderPriceMinTickSize <= 0 {
		return 0.01
	}
	return gm.OrderPriceMinTickSize
}

// BuildAndSign 为一条腿构建并签名 GTC 买单
// 始终 BUY 选中侧的 token；size 为本腿下单的 USD 金额
func (t *TradingAdapter) BuildAndSign(ctx context.Context, req *interfaces.LegOrderRequest, creds *interfaces.APICredentials) (*interfaces.SignedLegOrder, error) {
	if req == nil {
		return nil, fmt.Errorf("LegOrderRequest is nil")
	}
	client, signer, err := t.clientFor(creds)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.TokenID) == "" {
		return nil, fmt.Errorf("腿 %s 缺少 token_id", req.LegID)
	}
	// 价格合法性
	price := req.Price
	if price <= 0 || price >= 1 {
		return nil, fmt.Errorf("腿 %s 锁定价格 %.4f 无效，应在 (0,1) 之间", req.LegID, price)
	}
	// 数量：BUY 侧为 USD 金额
	size := req.Stake
	if size < 1 {
		size = 1
	}

	tickSize := t.resolveTickSize(ctx, req.MarketID)
	tickStr := fmt.Sprintf("%.4f", tickSize)
	if tickSize >= 0.1 {
		tickStr = fmt.Sprintf("%.1f", tickSize)
	} else if tickSize >= 0.01 {
		tickStr = fmt.Sprintf("%.2f", tickSize)
	} else if tickSize >= 0.001 {
		tickStr = fmt.Sprintf("%.3f", tickSize)
	}

	order, err := clob.NewOrderBuilder(client, signer).
		TokenID(req.TokenID).
		Side("BUY").
		Price(price).
		Size(size).
		TickSize(tickStr).
		OrderType(clobtypes.OrderTypeGTC).
		Build()
	if err != nil {
		return nil, fmt.Errorf("构建腿订单失败: %w", err)
	}

	return &interfaces.SignedLegOrder{
		LegID:   req.LegID,
		TokenID: req.TokenID,
		Payload: order,
	}, nil
}

// Submit 提交已签名订单，返回平台订单号
func (t *TradingAdapter) Submit(ctx context.Context, signed *interfaces.SignedLegOrder, creds *interfaces.APICredentials) (string, error) {
	if signed == nil {
		return "", fmt.Errorf("SignedLegOrder is nil")
	}
	order, ok := signed.Payload.(*clobtypes.Order)
	if !ok {
		return "", fmt.Errorf("腿 %s 签名订单类型错误", signed.LegID)
	}
	client, _, err := t.clientFor(creds)
	if err != nil {
		return "", err
	}
	resp, err := client.CreateOrder(ctx, order)
	if err != nil {
		return "", fmt.Errorf("Polymarket 下单失败: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("Polymarket 返回空 order id")
	}
	return resp.ID, nil
}
