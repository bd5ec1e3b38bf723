package service

import (
	"fmt"

	"ParlayEngine/internal/model"
)

// 计算器告警阈值
const (
	// extremePriceLow / extremePriceHigh 价格接近定局的阈值，触发提示但不阻断
	extremePriceLow  = 0.02
	extremePriceHigh = 0.98
	// MinParlayLegs 串关的最少腿数（少于此数仅告警）
	MinParlayLegs = 2
)

// Quote 串关报价：每次 slip 变更后立即重算，不存在可观察的陈旧派生值
type Quote struct {
	CombinedProbability float64  `json:"combined_probability"` // 各腿价格连乘（独立性假设，已知的简化）
	CombinedOdds        float64  `json:"combined_odds"`        // 1/组合概率（十进制赔率）
	PotentialPayout     float64  `json:"potential_payout"`     // stake × 组合赔率
	Warnings            []string `json:"warnings,omitempty"`
}

// CalculateParlay 由腿价格集合计算组合概率、赔率与潜在派彩
// 纯函数：无 I/O、无副作用、可独立单测
// 空腿列表为显式恒等情形：概率 1、赔率 1、派彩 = stake
func CalculateParlay(legs []model.Leg, stake float64) Quote {
	q := Quote{CombinedProbability: 1, CombinedOdds: 1}

	if len(legs) > 0 && len(legs) < MinParlayLegs {
		q.Warnings = append(q.Warnings, fmt.Sprintf("串关至少需要 %d 条独立腿", MinParlayLegs))
	}

	for _, leg := range legs {
		if leg.Price <= extremePriceLow || leg.Price >= extremePriceHigh {
			q.Warnings = append(q.Warnings, fmt.Sprintf("腿 %s 价格 %.3f 接近定局，收益空间极小", leg.LegID, leg.Price))
		}
		q.CombinedProbability *= leg.Price
	}

	// 任一腿价格为 0 时组合概率为 0，赔率不可计算，视为不可成立
	if q.CombinedProbability <= 0 {
		q.CombinedOdds = 0
		q.PotentialPayout = 0
		q.Warnings = append(q.Warnings, "组合概率为 0，该串关不可成立")
		return q
	}

	q.CombinedOdds = 1 / q.CombinedProbability
	q.PotentialPayout = stake * q.CombinedOdds
	return q
}
