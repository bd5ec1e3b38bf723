package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ParlayEngine/internal/interfaces"
	"ParlayEngine/internal/model"
	"ParlayEngine/internal/repository"

	"github.com/sirupsen/logrus"
)

// resolutionThreshold 市场判定已结算的近确定性阈值：
// 已关闭且某一侧结算价 ≥ 该值才认定该侧获胜；关闭但无一侧过线（歧义/作废盘）保持 pending，不做猜测
const resolutionThreshold = 0.99

// SettleSyncService 串关结算同步：周期性核对未结算记录各腿市场的结算状态，
// 逐腿更新胜负，全部腿出结果后一次性写入记录终态与派彩
// 前提：外部调度器保证两轮同步不重叠（单写者约束）
type SettleSyncService struct {
	parlayRepo   repository.ParlayRepository
	resolutions  interfaces.ResolutionFetcher
	batchLimit   int
	chunkSize    int
	chunkWorkers int
	logger       *logrus.Logger
}

// NewSettleSyncService 创建结算同步服务
func NewSettleSyncService(parlayRepo repository.ParlayRepository, resolutions interfaces.ResolutionFetcher, batchLimit, chunkSize, chunkWorkers int, logger *logrus.Logger) *SettleSyncService {
	if batchLimit <= 0 {
		batchLimit = 500
	}
	if chunkSize <= 0 {
		chunkSize = 20
	}
	if chunkWorkers <= 0 {
		chunkWorkers = 5
	}
	return &SettleSyncService{
		parlayRepo:   parlayRepo,
		resolutions:  resolutions,
		batchLimit:   batchLimit,
		chunkSize:    chunkSize,
		chunkWorkers: chunkWorkers,
		logger:       logger,
	}
}

// Run 执行一轮结算同步；幂等：已终态的腿/记录直接跳过，重复执行不产生变更
// 单条记录落库失败只记日志不中断其余记录；单个市场查询失败按"未结算"处理
func (s *SettleSyncService) Run(ctx context.Context) error {
	parlays, err := s.parlayRepo.ListOpen(ctx, s.batchLimit)
	if err != nil {
		return fmt.Errorf("查询未结算串关失败: %w", err)
	}
	if len(parlays) == 0 {
		return nil
	}

	// 跨记录去重 pending 腿的市场 ID，避免对同一市场重复请求
	marketIDs := s.collectPendingMarkets(parlays)
	if len(marketIDs) == 0 {
		return nil
	}
	outcomes := s.fetchResolutions(ctx, marketIDs)
	if len(outcomes) == 0 {
		s.logger.Debug("SettleSync: 本轮无市场出结果")
		return nil
	}

	updated, settled := 0, 0
	for _, p := range parlays {
		changed, final, err := s.applyOutcomes(ctx, p, outcomes)
		if err != nil {
			s.logger.WithError(err).WithField("parlay_uuid", p.ParlayUUID).Warn("更新串关记录失败，跳过")
			continue
		}
		if changed {
			updated++
		}
		if final {
			settled++
		}
	}

	if updated > 0 {
		s.logger.Infof("结算同步：更新 %d 条串关，其中 %d 条已出终态", updated, settled)
	}
	return nil
}

// collectPendingMarkets 收集所有 pending 腿的去重市场 ID
func (s *SettleSyncService) collectPendingMarkets(parlays []*model.Parlay) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, p := range parlays {
		legs, err := p.DecodeLegs()
		if err != nil {
			s.logger.WithError(err).WithField("parlay_uuid", p.ParlayUUID).Warn("解析腿列表失败，跳过")
			continue
		}
		for _, leg := range legs {
			if leg.Status != model.LegStatusPending {
				continue
			}
			if _, ok := seen[leg.MarketID]; ok {
				continue
			}
			seen[leg.MarketID] = struct{}{}
			ids = append(ids, leg.MarketID)
		}
	}
	return ids
}

// fetchResolutions 分片 + 片内有界并发查询市场结算状态
// 返回 marketID → 获胜方向（YES/NO）；查询失败或未过阈值的市场不出现在结果中
func (s *SettleSyncService) fetchResolutions(ctx context.Context, marketIDs []string) map[string]string {
	outcomes := make(map[string]string, len(marketIDs))
	var mu sync.Mutex

	for start := 0; start < len(marketIDs); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(marketIDs) {
			end = len(marketIDs)
		}
		chunk := marketIDs[start:end]

		workCh := make(chan string, len(chunk))
		var wg sync.WaitGroup
		for i := 0; i < s.chunkWorkers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for marketID := range workCh {
					res, err := s.resolutions.GetResolution(ctx, marketID)
					if err != nil {
						// 查询失败视为未结算，下一轮同步自然重试
						s.logger.WithError(err).WithField("market_id", marketID).Warn("结算查询失败，保持 pending")
						continue
					}
					outcome, ok := resolveOutcome(res)
					if !ok {
						continue
					}
					mu.Lock()
					outcomes[marketID] = outcome
					mu.Unlock()
				}
			}()
		}
		for _, id := range chunk {
			workCh <- id
		}
		close(workCh)
		wg.Wait()
	}
	return outcomes
}

// resolveOutcome 判定市场获胜方向
// 已关闭且 YES 侧结算价过阈值 → YES；NO 侧过阈值 → NO；其余（未关闭/歧义）未结算
func resolveOutcome(res *model.MarketResolution) (string, bool) {
	if res == nil || !res.Closed {
		return "", false
	}
	if res.OutcomePrices[0] >= resolutionThreshold {
		return model.SideYes, true
	}
	if res.OutcomePrices[1] >= resolutionThreshold {
		return model.SideNo, true
	}
	return "", false
}

// applyOutcomes 将本轮市场结果套用到单条记录：
// 逐腿更新后若仍有 pending 腿，只覆盖 legs（记录级状态不变）；
// 全部腿出结果时按胜负组合写入终态：全胜=won 派彩=potential_payout；
// 有胜有负=partial 派彩 0（单腿失败即取消全额派彩，partial 仅为标记）；全负=lost 派彩 0
// 腿更新以整条记录读改写落库，避免交错的部分更新
func (s *SettleSyncService) applyOutcomes(ctx context.Context, p *model.Parlay, outcomes map[string]string) (changed, final bool, err error) {
	legs, err := p.DecodeLegs()
	if err != nil {
		return false, false, err
	}

	pendingLeft := 0
	for i := range legs {
		if legs[i].Status != model.LegStatusPending {
			continue
		}
		outcome, ok := outcomes[legs[i].MarketID]
		if !ok {
			pendingLeft++
			continue
		}
		legs[i].Outcome = outcome
		if legs[i].Side == outcome {
			legs[i].Status = model.LegStatusWon
		} else {
			legs[i].Status = model.LegStatusLost
		}
		changed = true
	}
	if !changed {
		return false, false, nil
	}

	legsJSON, err := model.EncodeLegs(legs)
	if err != nil {
		return false, false, err
	}

	if pendingLeft > 0 {
		// 部分腿已出结果：只持久化腿状态，避免下一轮重复查询已结算的腿
		if err := s.parlayRepo.UpdateLegs(ctx, p.ParlayUUID, legsJSON); err != nil {
			return false, false, err
		}
		return true, false, nil
	}

	status, payout := finalizeParlay(legs, p.PotentialPayout)
	if err := s.parlayRepo.FinalizeStatus(ctx, p.ParlayUUID, legsJSON, status, payout, time.Now()); err != nil {
		return false, false, err
	}
	s.logger.WithFields(logrus.Fields{
		"parlay_uuid": p.ParlayUUID,
		"status":      status,
		"payout":      payout,
	}).Info("串关已结算")
	return true, true, nil
}

// finalizeParlay 由逐腿胜负推导记录终态与实际派彩
// 派彩取创建时存储的 potential_payout，不按最新价格重算
func finalizeParlay(legs []model.ParlayLeg, potentialPayout float64) (status string, payout float64) {
	won, lost := 0, 0
	for _, leg := range legs {
		switch leg.Status {
		case model.LegStatusWon:
			won++
		case model.LegStatusLost:
			lost++
		}
	}
	switch {
	case lost == 0:
		return model.ParlayStatusWon, potentialPayout
	case won == 0:
		return model.ParlayStatusLost, 0
	default:
		return model.ParlayStatusPartial, 0
	}
}
