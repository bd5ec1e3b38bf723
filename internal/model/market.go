package model

// MarketInfo 统一的二元市场视图（抹平 Gamma 返回的伪 JSON 字符串字段）
// YesPrice/NoPrice 为当前概率价格；TokenIDs 与 outcome 顺序对齐（第 1 个=YES，第 2 个=NO）
type MarketInfo struct {
	MarketID  string    `json:"market_id"`
	Question  string    `json:"question"`
	YesPrice  float64   `json:"yes_price"`
	NoPrice   float64   `json:"no_price"`
	TokenIDs  [2]string `json:"token_ids"`
	EndDate   int64     `json:"end_date"` // 毫秒
	Liquidity float64   `json:"liquidity"`
	Category  string    `json:"category,omitempty"`
	Active    bool      `json:"active"`
	Closed    bool      `json:"closed"`
}

// MarketResolution 市场结算查询结果
// OutcomePrices 为两侧的结算价格（[YES, NO]）；Closed=false 表示仍在交易
type MarketResolution struct {
	Closed        bool       `json:"closed"`
	OutcomePrices [2]float64 `json:"outcome_prices"`
}

// GammaMarket Gamma API /markets/:id 原始响应
// Outcomes/OutcomePrices/ClobTokenIds 为伪 JSON 数组字符串（如 "[\"Yes\",\"No\"]"），需二次解析
type GammaMarket struct {
	ID                    string  `json:"id"`
	Question              string  `json:"question"`
	Outcomes              string  `json:"outcomes"`
	OutcomePrices         string  `json:"outcomePrices"`
	ClobTokenIds          string  `json:"clobTokenIds"`
	EndDate               string  `json:"endDate"`
	Liquidity             string  `json:"liquidity"`
	Category              string  `json:"category"`
	Active                bool    `json:"active"`
	Closed                bool    `json:"closed"`
	OrderPriceMinTickSize float64 `json:"orderPriceMinTickSize"`
	NegRisk               bool    `json:"negRisk"`
}
