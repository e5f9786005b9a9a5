package repository

import (
	"context"

	"github.com/bitfantasy/fair-qms/internal/qis/entity"
	"gorm.io/gorm"
)

// HistoryRepository 报告操作历史仓储
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository 创建历史仓储
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create 追加历史记录
func (r *HistoryRepository) Create(ctx context.Context, h *entity.FormHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// ListByForm 按报告获取历史,时间正序
func (r *HistoryRepository) ListByForm(ctx context.Context, formID string) ([]entity.FormHistory, error) {
	var entries []entity.FormHistory
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
