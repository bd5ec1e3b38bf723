package service

import (
	"sync"

	"ParlayEngine/internal/model"

	"github.com/sirupsen/logrus"
)

// Slip 一个会话的选腿单：腿列表（保持展示顺序）+ 下注金额
// 腿一经选入不再原地修改（价格为选入时快照），只会被替换或移除
type Slip struct {
	Legs  []model.Leg `json:"legs"`
	Stake float64     `json:"stake"`
}

// SlipState 每次变更后的完整快照：slip 本体 + 即时重算的报价
type SlipState struct {
	Slip
	Quote Quote `json:"quote"`
}

// SlipService 管理各会话的选腿单
// 每个 slip 仅属于一个会话，单写者；互斥锁只保护会话表本身
type SlipService struct {
	mu           sync.Mutex
	slips        map[string]*Slip
	defaultStake float64
	logger       *logrus.Logger
}

// NewSlipService 创建 SlipService
func NewSlipService(defaultStake float64, logger *logrus.Logger) *SlipService {
	if defaultStake < 0 {
		defaultStake = 0
	}
	return &SlipService{
		slips:        make(map[string]*Slip),
		defaultStake: defaultStake,
		logger:       logger,
	}
}

// ---- 纯 reducer：(legs, action) -> newLegs，服务层只负责存取结果 ----

// addLeg 选入一条腿：
// 同 LegID 已存在 → 原样返回（幂等）；
// 同市场另一侧已存在 → 先移除旧腿再追加（换边语义，绝不共存）
func addLeg(legs []model.Leg, leg model.Leg) []model.Leg {
	for _, l := range legs {
		if l.LegID == leg.LegID {
			return legs
		}
	}
	out := make([]model.Leg, 0, len(legs)+1)
	for _, l := range legs {
		if l.MarketID == leg.MarketID {
			continue
		}
		out = append(out, l)
	}
	return append(out, leg)
}

// removeLeg 移除指定腿；不存在时原样返回
func removeLeg(legs []model.Leg, legID string) []model.Leg {
	idx := -1
	for i, l := range legs {
		if l.LegID == legID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return legs
	}
	out := make([]model.Leg, 0, len(legs)-1)
	out = append(out, legs[:idx]...)
	return append(out, legs[idx+1:]...)
}

// clampStake 金额钳制到非负（负数按 0 处理，不报错）
func clampStake(amount float64) float64 {
	if amount < 0 {
		return 0
	}
	return amount
}

// ---- 会话级操作：每次变更同步重算报价并返回快照 ----

// AddLeg 向会话 slip 选入一条腿
func (s *SlipService) AddLeg(sessionID string, leg model.Leg) SlipState {
	s.mu.Lock()
	defer s.mu.Unlock()
	slip := s.getOrCreate(sessionID)
	slip.Legs = addLeg(slip.Legs, leg)
	return s.snapshot(slip)
}

// RemoveLeg 从会话 slip 移除一条腿；腿不存在为 no-op
func (s *SlipService) RemoveLeg(sessionID, legID string) SlipState {
	s.mu.Lock()
	defer s.mu.Unlock()
	slip := s.getOrCreate(sessionID)
	slip.Legs = removeLeg(slip.Legs, legID)
	return s.snapshot(slip)
}

// ClearAll 清空会话 slip 的所有腿
func (s *SlipService) ClearAll(sessionID string) SlipState {
	s.mu.Lock()
	defer s.mu.Unlock()
	slip := s.getOrCreate(sessionID)
	slip.Legs = nil
	return s.snapshot(slip)
}

// SetStake 设置下注金额（负数钳制为 0）
func (s *SlipService) SetStake(sessionID string, amount float64) SlipState {
	s.mu.Lock()
	defer s.mu.Unlock()
	slip := s.getOrCreate(sessionID)
	slip.Stake = clampStake(amount)
	return s.snapshot(slip)
}

// Get 返回会话 slip 当前快照（不存在则初始化）
func (s *SlipService) Get(sessionID string) SlipState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(s.getOrCreate(sessionID))
}

// Discard 丢弃会话 slip（提交成功或用户清空后调用）
func (s *SlipService) Discard(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slips, sessionID)
}

func (s *SlipService) getOrCreate(sessionID string) *Slip {
	slip, ok := s.slips[sessionID]
	if !ok {
		slip = &Slip{Stake: s.defaultStake}
		s.slips[sessionID] = slip
	}
	return slip
}

// snapshot 拷贝 slip 并附带即时报价，调用方拿到的状态与派生值永远一致
func (s *SlipService) snapshot(slip *Slip) SlipState {
	legs := make([]model.Leg, len(slip.Legs))
	copy(legs, slip.Legs)
	return SlipState{
		Slip:  Slip{Legs: legs, Stake: slip.Stake},
		Quote: CalculateParlay(legs, slip.Stake),
	}
}
