package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// 串关（parlay）状态枚举
// open 为唯一非终态；终态由结算同步服务一次性写入
const (
	ParlayStatusOpen    = "open"    // 已提交，存在未结算腿
	ParlayStatusWon     = "won"     // 全部腿获胜
	ParlayStatusLost    = "lost"    // 全部腿失败
	ParlayStatusPartial = "partial" // 有胜有负（当前产品策略：不派彩，仅作标记）
)

// 腿状态枚举
const (
	LegStatusPending = "pending"
	LegStatusWon     = "won"
	LegStatusLost    = "lost"
)

// 下注方向
const (
	SideYes = "YES"
	SideNo  = "NO"
)

// OutcomeUnknown 腿所属市场尚未出结果时的占位
const OutcomeUnknown = "?"

// Leg 用户选入串关的一条腿：某个二元市场的一侧，价格为选入时的快照，不随行情更新
type Leg struct {
	LegID     string  `json:"leg_id"`    // market_id + 方向，slip 内唯一
	MarketID  string  `json:"market_id"` // 平台市场 ID
	TokenID   string  `json:"token_id"`  // 该侧对应的 CLOB token
	Question  string  `json:"question"`  // 市场问题（展示用）
	Side      string  `json:"side"`      // YES / NO
	Price     float64 `json:"price"`     // 选入时的概率价格，(0,1)
	Category  string  `json:"category,omitempty"`
	EndDate   int64   `json:"end_date,omitempty"` // 市场截止时间（毫秒）
	Liquidity float64 `json:"liquidity,omitempty"`
}

// LegKey 生成腿的复合 ID（市场 + 方向）
func LegKey(marketID, side string) string {
	return marketID + ":" + side
}

// ParlayLeg 已入库串关中的一条腿，附带结算状态
type ParlayLeg struct {
	Leg
	Status          string `json:"status"`                      // pending / won / lost
	Outcome         string `json:"outcome"`                     // 市场最终结果（YES/NO），未知为 "?"
	PlatformOrderID string `json:"platform_order_id,omitempty"` // 平台侧订单号
}

// Parlay 对应 parlays 表，记录一次多腿下注的持久化结果
// Legs 为 jsonb，整体读改写，保证单条记录内腿状态的原子更新
// 记录只追加不删除（用户历史）；创建后仅结算同步服务可改 status/legs/payout
type Parlay struct {
	ID              uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	ParlayUUID      string         `gorm:"column:parlay_uuid;type:varchar(64);uniqueIndex;not null"`
	UserWallet      string         `gorm:"column:user_wallet;type:varchar(64);index;not null"`
	Stake           float64        `gorm:"column:stake;type:numeric(18,6);not null"`
	CombinedOdds    float64        `gorm:"column:combined_odds;type:numeric(12,4);not null"`
	PotentialPayout float64        `gorm:"column:potential_payout;type:numeric(18,6);not null"`
	Status          string         `gorm:"column:status;type:varchar(16);default:'open';index"`
	Payout          float64        `gorm:"column:payout;type:numeric(18,6);default:0"` // 实际派彩，结算时一次性写入
	Legs            datatypes.JSON `gorm:"column:legs;type:jsonb;not null"`
	ResolvedAt      *time.Time     `gorm:"column:resolved_at"`
	CreatedAt       time.Time      `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;type:timestamp;default:now()"`
}

func (Parlay) TableName() string { return "parlays" }

// DecodeLegs 解析 jsonb 腿列表（按提交顺序）
func (p *Parlay) DecodeLegs() ([]ParlayLeg, error) {
	var legs []ParlayLeg
	if len(p.Legs) == 0 {
		return legs, nil
	}
	if err := json.Unmarshal(p.Legs, &legs); err != nil {
		return nil, fmt.Errorf("解析 parlay legs 失败 parlay_uuid=%s: %w", p.ParlayUUID, err)
	}
	return legs, nil
}

// EncodeLegs 序列化腿列表为 jsonb
func EncodeLegs(legs []ParlayLeg) (datatypes.JSON, error) {
	b, err := json.Marshal(legs)
	if err != nil {
		return nil, fmt.Errorf("序列化 parlay legs 失败: %w", err)
	}
	return b, nil
}
