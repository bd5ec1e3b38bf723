package interfaces

import (
	"context"

	"ParlayEngine/internal/model"
)

// MarketFetcher 按市场 ID 拉取元数据（只读，可缓存，允许数十秒级陈旧）
type MarketFetcher interface {
	GetMarket(ctx context.Context, marketID string) (*model.MarketInfo, error)
}

// ResolutionFetcher 按市场 ID 查询结算状态（结算同步服务使用，不走缓存）
// 查询失败按"未结算"处理，调用方不得因单个市场失败中断整轮同步
type ResolutionFetcher interface {
	GetResolution(ctx context.Context, marketID string) (*model.MarketResolution, error)
}
