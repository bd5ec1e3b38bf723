package repository

import (
	"context"
	"time"

	"ParlayEngine/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ParlayRepository 串关记录持久化
// 约束：记录创建后仅结算同步服务写 status/legs/payout（外部调度器保证单写者），记录永不删除
type ParlayRepository interface {
	Create(ctx context.Context, parlay *model.Parlay) error
	GetByUUID(ctx context.Context, parlayUUID string) (*model.Parlay, error)
	ListByUser(ctx context.Context, userWallet string, page, pageSize int) ([]*model.Parlay, int64, error)
	ListOpen(ctx context.Context, limit int) ([]*model.Parlay, error)
	// UpdateLegs 整体覆盖 legs（部分腿结算后记录级状态不变时使用）
	UpdateLegs(ctx context.Context, parlayUUID string, legs datatypes.JSON) error
	// FinalizeStatus 所有腿结算后一次性写入终态与实际派彩
	FinalizeStatus(ctx context.Context, parlayUUID string, legs datatypes.JSON, status string, payout float64, resolvedAt time.Time) error
}

type parlayRepository struct {
	db *gorm.DB
}

// NewParlayRepository 创建串关仓储
func NewParlayRepository(db *gorm.DB) ParlayRepository {
	return &parlayRepository{db: db}
}

func (r *parlayRepository) Create(ctx context.Context, parlay *model.Parlay) error {
	return r.db.WithContext(ctx).Create(parlay).Error
}

func (r *parlayRepository) GetByUUID(ctx context.Context, parlayUUID string) (*model.Parlay, error) {
	var p model.Parlay
	if err := r.db.WithContext(ctx).Where("parlay_uuid = ?", parlayUUID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *parlayRepository) ListByUser(ctx context.Context, userWallet string, page, pageSize int) ([]*model.Parlay, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	db := r.db.WithContext(ctx).Model(&model.Parlay{}).Where("user_wallet = ?", userWallet)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*model.Parlay
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *parlayRepository) ListOpen(ctx context.Context, limit int) ([]*model.Parlay, error) {
	if limit <= 0 {
		limit = 500
	}
	var list []*model.Parlay
	if err := r.db.WithContext(ctx).
		Where("status = ?", model.ParlayStatusOpen).
		Order("created_at ASC").
		Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *parlayRepository) UpdateLegs(ctx context.Context, parlayUUID string, legs datatypes.JSON) error {
	return r.db.WithContext(ctx).Model(&model.Parlay{}).
		Where("parlay_uuid = ?", parlayUUID).
		Updates(map[string]interface{}{
			"legs":       legs,
			"updated_at": time.Now(),
		}).Error
}

func (r *parlayRepository) FinalizeStatus(ctx context.Context, parlayUUID string, legs datatypes.JSON, status string, payout float64, resolvedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Parlay{}).
		Where("parlay_uuid = ?", parlayUUID).
		Updates(map[string]interface{}{
			"legs":        legs,
			"status":      status,
			"payout":      payout,
			"resolved_at": resolvedAt,
			"updated_at":  time.Now(),
		}).Error
}
