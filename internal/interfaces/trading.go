package interfaces

import "context"

// APICredentials 用户的 CLOB API 凭证（下单请求随身携带，不落库）
type APICredentials struct {
	APIKey     string `json:"api_key"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// Empty 任一字段缺失即视为凭证不完整
func (c *APICredentials) Empty() bool {
	return c == nil || c.APIKey == "" || c.Secret == "" || c.Passphrase == ""
}

// LegOrderRequest 单腿下单参数
type LegOrderRequest struct {
	LegID    string  // 腿 ID（market_id + 方向）
	MarketID string  // 平台市场 ID
	TokenID  string  // 该侧 CLOB token
	Side     string  // YES / NO
	Price    float64 // 选入时锁定的价格
	Stake    float64 // 本腿下单金额（USD）
}

// SignedLegOrder 一条腿对应的已签名订单，签名后不可变
// Payload 为适配器内部的签名订单对象，引擎只透传不解读
type SignedLegOrder struct {
	LegID   string
	TokenID string
	Payload interface{}
}

// TradingAdapter 平台下单适配器：对每条腿各签名一次、提交一次
type TradingAdapter interface {
	// Ready 检查构建侧凭证（签名私钥）是否已配置；未配置时下单前置校验直接失败
	Ready() error
	// BuildAndSign 为一条腿构建并签名订单；失败作为腿级错误，对应腿不再提交
	BuildAndSign(ctx context.Context, req *LegOrderRequest, creds *APICredentials) (*SignedLegOrder, error)
	// Submit 向平台提交已签名订单，返回平台订单号；非 2xx 的响应文本用于错误归类
	Submit(ctx context.Context, order *SignedLegOrder, creds *APICredentials) (platformOrderID string, err error)
}
