package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bitfantasy/fair-qms/pkg/inspection"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dashboardCacheKey = "qis:dashboard:metrics"
	dashboardCacheTTL = 30 * time.Second
)

// DashboardMetrics 主控看板聚合指标
type DashboardMetrics struct {
	TotalForms      int64   `json:"totalForms"`
	PendingReview   int64   `json:"pendingReview"`
	ApprovedToday   int64   `json:"approvedToday"`
	QualityIssues   int64   `json:"qualityIssues"`
	AvgApprovalTime float64 `json:"avgApprovalTime"`
	ComplianceRate  float64 `json:"complianceRate"`
}

// DashboardService 看板聚合服务,结果短TTL缓存在Redis
type DashboardService struct {
	db     *gorm.DB
	rdb    *redis.Client
	logger *zap.Logger
}

// NewDashboardService 创建看板服务
func NewDashboardService(db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *DashboardService {
	return &DashboardService{db: db, rdb: rdb, logger: logger}
}

// Metrics 计算看板指标。缓存命中直接返回,缓存层故障降级为直查。
func (s *DashboardService) Metrics(ctx context.Context) (*DashboardMetrics, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var m DashboardMetrics
			if err := json.Unmarshal([]byte(cached), &m); err == nil {
				return &m, nil
			}
		}
	}

	m, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(m); err == nil {
			if err := s.rdb.Set(ctx, dashboardCacheKey, data, dashboardCacheTTL).Err(); err != nil {
				s.logger.Warn("cache dashboard metrics failed", zap.Error(err))
			}
		}
	}
	return m, nil
}

func (s *DashboardService) compute(ctx context.Context) (*DashboardMetrics, error) {
	var m DashboardMetrics
	db := s.db.WithContext(ctx)
	model := func() *gorm.DB { return db.Model(&inspection.InspectionForm{}) }

	if err := model().Count(&m.TotalForms).Error; err != nil {
		return nil, err
	}
	if err := model().Where("status = ?", inspection.FormStatusSubmitted).Count(&m.PendingReview).Error; err != nil {
		return nil, err
	}
	if err := model().Where("status = ?", inspection.FormStatusRejected).Count(&m.QualityIssues).Error; err != nil {
		return nil, err
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	if err := model().
		Where("status = ? AND reviewed_at >= ?", inspection.FormStatusApproved, startOfDay).
		Count(&m.ApprovedToday).Error; err != nil {
		return nil, err
	}

	// 平均审批时长(小时):提交到审批通过
	var avgHours *float64
	if err := model().
		Select("AVG(EXTRACT(EPOCH FROM (reviewed_at - submitted_at)) / 3600.0)").
		Where("status = ? AND submitted_at IS NOT NULL AND reviewed_at IS NOT NULL", inspection.FormStatusApproved).
		Scan(&avgHours).Error; err != nil {
		return nil, err
	}
	if avgHours != nil {
		m.AvgApprovalTime = *avgHours
	}

	// 合规率:已评审报告中通过的占比,无评审时记为100
	var approved int64
	if err := model().Where("status = ?", inspection.FormStatusApproved).Count(&approved).Error; err != nil {
		return nil, err
	}
	reviewed := approved + m.QualityIssues
	if reviewed > 0 {
		m.ComplianceRate = float64(approved) / float64(reviewed) * 100
	} else {
		m.ComplianceRate = 100
	}

	return &m, nil
}
