package service

import (
	"github.com/bitfantasy/fair-qms/internal/config"
	"github.com/bitfantasy/fair-qms/internal/qis/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Auth      *AuthService
	Form      *FormService
	Dashboard *DashboardService
	Report    *ReportService
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	// 初始化MinIO客户端
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("MinIO client init failed, report archive disabled", zap.Error(err))
			minioClient = nil
		}
	}

	reportSvc := NewReportService(repos.Form, minioClient, cfg.MinIO.Bucket, logger)
	formSvc := NewFormService(repos.Form, repos.History, logger)
	formSvc.SetReportService(reportSvc)

	return &Services{
		Auth:      NewAuthService(repos.User, rdb, cfg),
		Form:      formSvc,
		Dashboard: NewDashboardService(db, rdb, logger),
		Report:    reportSvc,
	}
}

// generateID 生成32位ID
func generateID() string {
	return uuid.New().String()[:32]
}
