package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/fair-qms/pkg/inspection"
	"gorm.io/gorm"
)

// FormRepository 检验报告仓储
type FormRepository struct {
	db *gorm.DB
}

// NewFormRepository 创建检验报告仓储
func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

// FindByID 根据ID查找报告
func (r *FormRepository) FindByID(ctx context.Context, id string) (*inspection.InspectionForm, error) {
	var form inspection.InspectionForm
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &form, nil
}

// ListAll 获取全部报告,最近创建的在前
func (r *FormRepository) ListAll(ctx context.Context) ([]inspection.InspectionForm, error) {
	var forms []inspection.InspectionForm
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&forms).Error
	return forms, err
}

// ListByStatus 按状态过滤报告
func (r *FormRepository) ListByStatus(ctx context.Context, status inspection.FormStatus) ([]inspection.InspectionForm, error) {
	var forms []inspection.InspectionForm
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&forms).Error
	return forms, err
}

// ListBySubmitter 按提交人过滤报告
func (r *FormRepository) ListBySubmitter(ctx context.Context, name string) ([]inspection.InspectionForm, error) {
	var forms []inspection.InspectionForm
	err := r.db.WithContext(ctx).
		Where("submitted_by = ?", name).
		Order("created_at DESC").
		Find(&forms).Error
	return forms, err
}

// Create 创建报告
func (r *FormRepository) Create(ctx context.Context, form *inspection.InspectionForm) error {
	return r.db.WithContext(ctx).Create(form).Error
}

// Update 整体更新报告
func (r *FormRepository) Update(ctx context.Context, form *inspection.InspectionForm) error {
	return r.db.WithContext(ctx).Save(form).Error
}

// CountByStatus 按状态计数
func (r *FormRepository) CountByStatus(ctx context.Context, status inspection.FormStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&inspection.InspectionForm{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
