// Package api 提供 HTTP API
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jimyag/clouddesk/internal/clouddesk/metrics"
	"github.com/jimyag/clouddesk/internal/clouddesk/service"
	"github.com/jimyag/clouddesk/pkg/ginx"
	"github.com/rs/zerolog"
)

// ownerHeader 调用方身份由网关注入，这里只透传
// 认证本身不在本服务内完成
const ownerHeader = "X-Owner-ID"

const defaultOwner = "default"

type API struct {
	engine *gin.Engine
	server *http.Server

	desktop *Desktop
	backup  *Backup
	usage   *Usage
}

func New(
	address string,
	desktopService *service.DesktopService,
	backupService *service.BackupService,
	usageService *service.UsageService,
) (*API, error) {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestContext(), metrics.Middleware())

	api := &API{
		engine:  engine,
		desktop: NewDesktop(desktopService),
		backup:  NewBackup(backupService),
		usage:   NewUsage(usageService),
	}

	engine.GET("/healthz", ginx.Adapt2(func(_ *gin.Context) gin.H {
		return gin.H{"status": "ok"}
	}))
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	group := engine.Group("/api")
	api.desktop.RegisterRoutes(group)
	api.backup.RegisterRoutes(group)
	api.usage.RegisterRoutes(group)

	api.server = &http.Server{
		Addr:    address,
		Handler: engine,
	}
	return api, nil
}

// requestContext 为每个请求注入请求 ID 和带上下文字段的 logger
// 下游通过 zerolog.Ctx(ctx) 取到的都是这里装配的 logger
func requestContext() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		owner := ctx.GetHeader(ownerHeader)
		if owner == "" {
			owner = defaultOwner
		}

		base := zerolog.DefaultContextLogger
		if base == nil {
			nop := zerolog.Nop()
			base = &nop
		}
		logger := base.With().
			Str("request_id", requestID).
			Str("owner_id", owner).
			Logger()
		ctx.Request = ctx.Request.WithContext(logger.WithContext(ctx.Request.Context()))

		ctx.Header("X-Request-ID", requestID)
		ctx.Next()
	}
}

// ownerID 取调用方身份，网关未注入时按默认租户处理
func ownerID(ctx *gin.Context) string {
	if owner := ctx.GetHeader(ownerHeader); owner != "" {
		return owner
	}
	return defaultOwner
}

func (a *API) Run(ctx context.Context) error {
	return a.server.ListenAndServe()
}

func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Name 实现 grace.Grace 接口
func (a *API) Name() string {
	return "clouddesk API"
}
