// Package clouddesk 提供服务的主入口和初始化逻辑
package clouddesk

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jimmicro/grace"
	"github.com/jimyag/clouddesk/internal/clouddesk/api"
	"github.com/jimyag/clouddesk/internal/clouddesk/billing"
	"github.com/jimyag/clouddesk/internal/clouddesk/config"
	"github.com/jimyag/clouddesk/internal/clouddesk/metrics"
	"github.com/jimyag/clouddesk/internal/clouddesk/repository"
	"github.com/jimyag/clouddesk/internal/clouddesk/service"
	"github.com/jimyag/clouddesk/pkg/gcloud"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg        *config.Config
	api        *api.API
	reconciler *reconciler
	repo       *repository.Repository
}

func New(cfg *config.Config) (*Server, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			return nil, fmt.Errorf("init sentry: %w", err)
		}
		logger.Info().Msg("Sentry error reporting enabled")
	}

	// 1. 持久化层
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}
	desktopRepo := repository.NewDesktopRepository(repo.DB())
	backupRepo := repository.NewBackupRepository(repo.DB())

	// 2. 厂商命令执行器和资源管理器
	runner := metrics.InstrumentRunner(gcloud.NewClient(cfg.GcloudPath, cfg.Project))
	instances := gcloud.NewInstances(runner, cfg.BaseTemplate)
	images := gcloud.NewImages(runner)

	// 3. 价格表和计费引擎
	pricing, err := billing.LoadPricing(cfg.PricingFile)
	if err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}
	engine := billing.NewEngine(pricing)

	// 4. 业务服务
	desktopService := service.NewDesktopService(desktopRepo, instances)
	backupService := service.NewBackupService(backupRepo, desktopRepo, images)
	usageService := service.NewUsageService(desktopRepo, backupRepo, engine)

	// 5. 指标和 API
	metrics.Register(desktopRepo)
	apiInstance, err := api.New(cfg.Address, desktopService, backupService, usageService)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("address", cfg.Address).
		Str("project", cfg.Project).
		Str("base_template", cfg.BaseTemplate).
		Msg("clouddesk server initialized")

	return &Server{
		cfg:        cfg,
		api:        apiInstance,
		reconciler: newReconciler(backupService),
		repo:       repo,
	}, nil
}

func (s *Server) Run(ctx context.Context) error {
	// 使用 grace.Shepherd 管理服务生命周期
	services := []grace.Grace{
		s.api,
		s.reconciler,
	}

	shepherd := grace.NewShepherd(
		services,
		grace.WithTimeout(30*time.Second),
		grace.WithLogger(&zerologLogger{}),
	)

	shepherd.Start(ctx)
	return s.repo.Close()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.reconciler.Shutdown(ctx); err != nil {
		return err
	}
	return s.api.Shutdown(ctx)
}

// Name 实现 grace.Grace 接口
func (s *Server) Name() string {
	return "clouddesk Server"
}

// zerologLogger 实现 grace.Logger 接口
type zerologLogger struct{}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Info()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Error()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}
