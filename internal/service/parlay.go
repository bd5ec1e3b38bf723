package service

import (
	"context"
	"fmt"
	"time"

	"ParlayEngine/internal/interfaces"
	"ParlayEngine/internal/model"
	"ParlayEngine/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ParlayService 串关下单与查询：调用执行引擎逐腿提交，并将结果落库
type ParlayService struct {
	execution  *ExecutionService
	parlayRepo repository.ParlayRepository
	logger     *logrus.Logger
}

// NewParlayService 创建 ParlayService
func NewParlayService(execution *ExecutionService, parlayRepo repository.ParlayRepository, logger *logrus.Logger) *ParlayService {
	return &ParlayService{
		execution:  execution,
		parlayRepo: parlayRepo,
		logger:     logger,
	}
}

// PlaceParlayRequest 前端提交串关请求
type PlaceParlayRequest struct {
	UserWallet  string                    `json:"user_wallet"`
	Stake       float64                   `json:"stake"`
	Legs        []model.Leg               `json:"legs"`
	Credentials interfaces.APICredentials `json:"credentials"`
}

// PlaceParlayResult 提交结果：逐腿结果 + 落库记录（至少一腿成交时才生成）
type PlaceParlayResult struct {
	Success    bool          `json:"success"`
	Orders     []OrderResult `json:"orders"`
	ParlayUUID string        `json:"parlay_uuid,omitempty"`
	Quote      *Quote        `json:"quote,omitempty"` // 按实际成交腿重算的报价
}

// PlaceParlay 校验→逐腿执行→落库
// 记录只包含实际成交的腿（未成交的腿没有可结算的订单）；零腿成交时不落库
// 部分成交时组合赔率/潜在派彩按成交腿重算
func (s *ParlayService) PlaceParlay(ctx context.Context, req *PlaceParlayRequest) (*PlaceParlayResult, error) {
	if req == nil || req.UserWallet == "" {
		return nil, fmt.Errorf("user_wallet 必填")
	}
	if len(req.Legs) == 0 {
		return nil, fmt.Errorf("至少需要一条腿")
	}
	if req.Stake <= 0 {
		return nil, fmt.Errorf("下注金额必须大于 0")
	}

	execResult, err := s.execution.Execute(ctx, req.Legs, req.Stake, &req.Credentials)
	if err != nil {
		return nil, err
	}

	result := &PlaceParlayResult{
		Success: execResult.Success,
		Orders:  execResult.Orders,
	}

	// 收集成交腿（保持提交顺序），卷入持久化记录
	orderByLeg := make(map[string]OrderResult, len(execResult.Orders))
	for _, o := range execResult.Orders {
		orderByLeg[o.LegID] = o
	}
	var filled []model.Leg
	var storedLegs []model.ParlayLeg
	for _, leg := range req.Legs {
		o, ok := orderByLeg[leg.LegID]
		if !ok || !o.Success {
			continue
		}
		filled = append(filled, leg)
		storedLegs = append(storedLegs, model.ParlayLeg{
			Leg:             leg,
			Status:          model.LegStatusPending,
			Outcome:         model.OutcomeUnknown,
			PlatformOrderID: o.OrderID,
		})
	}
	if len(filled) == 0 {
		s.logger.WithField("user_wallet", req.UserWallet).Warn("所有腿均未成交，不生成串关记录")
		return result, nil
	}

	quote := CalculateParlay(filled, req.Stake)
	result.Quote = &quote

	legsJSON, err := model.EncodeLegs(storedLegs)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	parlay := &model.Parlay{
		ParlayUUID:      uuid.NewString(),
		UserWallet:      req.UserWallet,
		Stake:           req.Stake,
		CombinedOdds:    quote.CombinedOdds,
		PotentialPayout: quote.PotentialPayout,
		Status:          model.ParlayStatusOpen,
		Legs:            legsJSON,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.parlayRepo.Create(ctx, parlay); err != nil {
		return nil, fmt.Errorf("创建串关记录失败: %w", err)
	}
	result.ParlayUUID = parlay.ParlayUUID

	s.logger.WithFields(logrus.Fields{
		"parlay_uuid": parlay.ParlayUUID,
		"user_wallet": req.UserWallet,
		"legs_filled": len(filled),
		"legs_total":  len(req.Legs),
		"stake":       req.Stake,
	}).Info("串关已提交并落库")
	return result, nil
}

// ParlayListItem 串关列表项
type ParlayListItem struct {
	ParlayUUID      string  `json:"parlay_uuid"`
	Stake           float64 `json:"stake"`
	CombinedOdds    float64 `json:"combined_odds"`
	PotentialPayout float64 `json:"potential_payout"`
	Status          string  `json:"status"`
	Payout          float64 `json:"payout"`
	LegCount        int     `json:"leg_count"`
	CreatedAt       int64   `json:"created_at"`
	ResolvedAt      int64   `json:"resolved_at,omitempty"`
}

// ParlayListResult 串关列表返回
type ParlayListResult struct {
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int64            `json:"total"`
	Items    []ParlayListItem `json:"items"`
}

// ListByUser 按用户钱包分页查询串关历史
func (s *ParlayService) ListByUser(ctx context.Context, userWallet string, page, pageSize int) (*ParlayListResult, error) {
	parlays, total, err := s.parlayRepo.ListByUser(ctx, userWallet, page, pageSize)
	if err != nil {
		return nil, err
	}
	items := make([]ParlayListItem, 0, len(parlays))
	for _, p := range parlays {
		legs, err := p.DecodeLegs()
		if err != nil {
			s.logger.WithError(err).WithField("parlay_uuid", p.ParlayUUID).Warn("解析腿列表失败，跳过该条")
			continue
		}
		item := ParlayListItem{
			ParlayUUID:      p.ParlayUUID,
			Stake:           p.Stake,
			CombinedOdds:    p.CombinedOdds,
			PotentialPayout: p.PotentialPayout,
			Status:          p.Status,
			Payout:          p.Payout,
			LegCount:        len(legs),
			CreatedAt:       p.CreatedAt.UnixMilli(),
		}
		if p.ResolvedAt != nil {
			item.ResolvedAt = p.ResolvedAt.UnixMilli()
		}
		items = append(items, item)
	}
	return &ParlayListResult{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Items:    items,
	}, nil
}

// ParlayDetail 串关详情（含逐腿状态）
type ParlayDetail struct {
	ParlayUUID      string            `json:"parlay_uuid"`
	UserWallet      string            `json:"user_wallet"`
	Stake           float64           `json:"stake"`
	CombinedOdds    float64           `json:"combined_odds"`
	PotentialPayout float64           `json:"potential_payout"`
	Status          string            `json:"status"`
	Payout          float64           `json:"payout"`
	Legs            []model.ParlayLeg `json:"legs"`
	CreatedAt       int64             `json:"created_at"`
	ResolvedAt      int64             `json:"resolved_at,omitempty"`
}

// GetDetail 按 parlay_uuid 获取串关详情
func (s *ParlayService) GetDetail(ctx context.Context, parlayUUID string) (*ParlayDetail, error) {
	p, err := s.parlayRepo.GetByUUID(ctx, parlayUUID)
	if err != nil {
		return nil, err
	}
	legs, err := p.DecodeLegs()
	if err != nil {
		return nil, err
	}
	detail := &ParlayDetail{
		ParlayUUID:      p.ParlayUUID,
		UserWallet:      p.UserWallet,
		Stake:           p.Stake,
		CombinedOdds:    p.CombinedOdds,
		PotentialPayout: p.PotentialPayout,
		Status:          p.Status,
		Payout:          p.Payout,
		Legs:            legs,
		CreatedAt:       p.CreatedAt.UnixMilli(),
	}
	if p.ResolvedAt != nil {
		detail.ResolvedAt = p.ResolvedAt.UnixMilli()
	}
	return detail, nil
}
