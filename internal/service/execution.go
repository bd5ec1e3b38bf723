package service

import (
	"context"
	"fmt"

	"ParlayEngine/internal/interfaces"
	"ParlayEngine/internal/model"

	"github.com/sirupsen/logrus"
)

// OrderResult 单腿提交结果
type OrderResult struct {
	LegID         string `json:"leg_id"`
	Success       bool   `json:"success"`
	OrderID       string `json:"order_id,omitempty"`       // 平台订单号（成功时）
	Error         string `json:"error,omitempty"`          // 用户侧文案（失败时）
	ErrorCategory string `json:"error_category,omitempty"` // 错误归类（失败时）
}

// ExecutionResult 整批执行结果：Success 仅当每条腿都成功
// Orders 始终返回完整的逐腿列表（与提交顺序一致），调用方据此展示"8 腿成交 6 腿"
type ExecutionResult struct {
	Success bool          `json:"success"`
	Orders  []OrderResult `json:"orders"`
}

// ExecutionService 串关多腿顺序执行引擎
// 平台没有原子多单原语，各腿是独立交易：严格按给定顺序逐腿签名并提交，
// 等上一腿返回（无论成败）才发起下一腿，保证逐腿结果可审计；
// 单腿失败只记录不中断，部分成交是产品层面接受的风险而非需恢复的错误
type ExecutionService struct {
	adapter interfaces.TradingAdapter
	logger  *logrus.Logger
}

// NewExecutionService 创建执行引擎
func NewExecutionService(adapter interfaces.TradingAdapter, logger *logrus.Logger) *ExecutionService {
	return &ExecutionService{adapter: adapter, logger: logger}
}

// Execute 顺序提交各腿订单
// 前置校验失败（构建侧私钥未配置 / 用户 API 凭证不全）时立即返回，零腿提交，不重试
// stake 为整单下注金额，每条腿按该金额独立下单
func (s *ExecutionService) Execute(ctx context.Context, legs []model.Leg, stake float64, creds *interfaces.APICredentials) (*ExecutionResult, error) {
	result := &ExecutionResult{Orders: []OrderResult{}}

	// 前置校验：全部通过才会发起任何网络调用
	if err := s.adapter.Ready(); err != nil {
		return result, fmt.Errorf("下单通道未就绪: %w", err)
	}
	if creds.Empty() {
		return result, fmt.Errorf("用户 API 凭证不完整：api_key、secret、passphrase 必填")
	}
	if len(legs) == 0 {
		return result, fmt.Errorf("没有可提交的腿")
	}

	allOK := true
	for _, leg := range legs {
		r := s.executeLeg(ctx, leg, stake, creds)
		if !r.Success {
			allOK = false
		}
		result.Orders = append(result.Orders, r)
	}
	result.Success = allOK

	s.logger.WithFields(logrus.Fields{
		"legs":    len(legs),
		"success": result.Success,
	}).Info("串关逐腿提交完成")
	return result, nil
}

// executeLeg 签名并提交一条腿；签名失败与提交失败都归为腿级错误
func (s *ExecutionService) executeLeg(ctx context.Context, leg model.Leg, stake float64, creds *interfaces.APICredentials) OrderResult {
	req := &interfaces.LegOrderRequest{
		LegID:    leg.LegID,
		MarketID: leg.MarketID,
		TokenID:  leg.TokenID,
		Side:     leg.Side,
		Price:    leg.Price,
		Stake:    stake,
	}

	signed, err := s.adapter.BuildAndSign(ctx, req, creds)
	if err != nil {
		s.logger.WithError(err).WithField("leg_id", leg.LegID).Warn("腿订单签名失败")
		return s.failedLeg(leg.LegID, err)
	}

	orderID, err := s.adapter.Submit(ctx, signed, creds)
	if err != nil {
		s.logger.WithError(err).WithField("leg_id", leg.LegID).Warn("腿订单提交失败，继续下一腿")
		return s.failedLeg(leg.LegID, err)
	}

	return OrderResult{LegID: leg.LegID, Success: true, OrderID: orderID}
}

func (s *ExecutionService) failedLeg(legID string, err error) OrderResult {
	category, message := ClassifyVenueError(err.Error())
	return OrderResult{
		LegID:         legID,
		Success:       false,
		Error:         message,
		ErrorCategory: category,
	}
}
