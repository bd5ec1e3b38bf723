package service

import "strings"

// 腿级下单失败的用户侧归类
// 基于平台原始错误文本的子串匹配，只影响展示文案，绝不影响控制流
const (
	ErrCategoryApproval     = "approval_required"
	ErrCategoryBalance      = "insufficient_balance"
	ErrCategorySignature    = "invalid_signature"
	ErrCategoryAuthExpired  = "auth_expired"
	ErrCategoryPriceMoved   = "price_moved"
	ErrCategoryUnclassified = "unclassified"
)

// maxRawErrorLen 未归类错误透传原文的截断长度
const maxRawErrorLen = 160

// ClassifyVenueError 将平台原始错误文本映射为固定的小型归类集合
// 匹配不到的归入 unclassified，透传截断后的原文，不做猜测
func ClassifyVenueError(raw string) (category, message string) {
	lower := strings.ToLower(raw)
	switch {
	// "not enough balance / allowance" 同时含 balance 与 allowance，授权判断必须在前
	case strings.Contains(lower, "allowance") || strings.Contains(lower, "approval"):
		return ErrCategoryApproval, "需要先完成 USDC 授权（approve）才能下单"
	case strings.Contains(lower, "not enough balance") || strings.Contains(lower, "insufficient"):
		return ErrCategoryBalance, "余额不足，无法提交该腿订单"
	case strings.Contains(lower, "signature"):
		return ErrCategorySignature, "订单签名无效，请重新连接钱包后重试"
	case strings.Contains(lower, "unauthorized") || strings.Contains(lower, "api key") ||
		strings.Contains(lower, "expired"):
		return ErrCategoryAuthExpired, "API 凭证已失效，请重新登录后重试"
	case strings.Contains(lower, "price") || strings.Contains(lower, "tick") ||
		strings.Contains(lower, "stale"):
		return ErrCategoryPriceMoved, "市场价格已变动，请刷新报价后重新提交"
	default:
		if len(raw) > maxRawErrorLen {
			raw = raw[:maxRawErrorLen]
		}
		return ErrCategoryUnclassified, raw
	}
}
