package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/fair-qms/internal/config"
	"github.com/bitfantasy/fair-qms/internal/middleware"
	"github.com/bitfantasy/fair-qms/internal/qis/entity"
	"github.com/bitfantasy/fair-qms/internal/qis/handler"
	"github.com/bitfantasy/fair-qms/internal/qis/repository"
	"github.com/bitfantasy/fair-qms/internal/qis/service"
	"github.com/bitfantasy/fair-qms/pkg/inspection"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting fair-qms service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// AutoMigrate
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.FormHistory{},
		&inspection.InspectionForm{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	// 手动兜底索引（AutoMigrate 对已有表可能跳过）
	migrationSQL := []string{
		"CREATE INDEX IF NOT EXISTS idx_qis_forms_status ON qis_inspection_forms(status)",
		"CREATE INDEX IF NOT EXISTS idx_qis_forms_submitted_by ON qis_inspection_forms(submitted_by)",
		"CREATE INDEX IF NOT EXISTS idx_qis_histories_form_id ON qis_form_histories(form_id)",
	}
	for _, sql := range migrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			zapLogger.Warn("Migration SQL warning (may already exist)", zap.String("sql", sql), zap.Error(err))
		}
	}
	zapLogger.Info("Database migration completed")

	// Seed: 默认用户（每个角色一个，密码可通过环境变量覆盖）
	seedDefaultUsers(db, zapLogger)

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services, repos, cfg)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// seedDefaultUsers 为四个角色各创建一个初始账号，已存在则跳过
func seedDefaultUsers(db *gorm.DB, zapLogger *zap.Logger) {
	defaultPassword := config.GetEnvOrDefault("SEED_USER_PASSWORD", "changeme123")
	hash, err := service.HashPassword(defaultPassword)
	if err != nil {
		zapLogger.Warn("Failed to hash seed password, skipping user seeds", zap.Error(err))
		return
	}

	userSeeds := []struct {
		ID       string
		Username string
		Name     string
		Role     inspection.Role
	}{
		{"seed-operator-0001", "operator", "Production Operator", inspection.RoleOperator},
		{"seed-qa-0000000001", "qa", "QA Executive", inspection.RoleQA},
		{"seed-avp-000000001", "avp", "AVP-QA", inspection.RoleAVP},
		{"seed-master-000001", "master", "System Master", inspection.RoleMaster},
	}
	for _, us := range userSeeds {
		db.Exec(`INSERT INTO qis_users (id, username, name, password_hash, role, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 'active', NOW(), NOW())
			ON CONFLICT (username) DO NOTHING`, us.ID, us.Username, us.Name, hash, string(us.Role))
	}
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	api := r.Group("/api")
	{
		// 认证 (无需登录)
		api.POST("/users/login", h.Auth.Login)
		api.POST("/users/refresh", h.Auth.Refresh)

		// 需要认证的接口
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			// SSE 实时推送
			authorized.GET("/events", h.SSE.Stream)

			// 用户查询
			authorized.GET("/users", middleware.RequireRole("master"), h.User.List)
			authorized.GET("/users/role/:role", h.User.ListByRole)

			// 检验报告
			forms := authorized.Group("/inspection-forms")
			{
				forms.GET("", h.Form.List)
				forms.POST("", h.Form.Create)
				forms.GET("/status/:status", h.Form.ListByStatus)
				forms.GET("/submitter/:name", h.Form.ListBySubmitter)
				forms.GET("/:id", h.Form.Get)
				forms.PUT("/:id", h.Form.Update)
				forms.POST("/:id/submit", h.Form.Submit)
				forms.POST("/:id/approve", h.Form.Approve)
				forms.POST("/:id/reject", h.Form.Reject)
				forms.GET("/:id/history", h.Form.History)
				forms.GET("/:id/report", h.Report.Download)
			}

			// 看板指标
			authorized.GET("/dashboard/metrics", h.Dashboard.Metrics)
		}
	}
}
