package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/clouddesk/internal/clouddesk/entity"
	"github.com/jimyag/clouddesk/internal/clouddesk/service"
	"github.com/jimyag/clouddesk/pkg/ginx"
)

// UsageServiceInterface 定义用量服务的接口
type UsageServiceInterface interface {
	Summarize(ctx context.Context, ownerID string) (*entity.UsageSummary, error)
}

type Usage struct {
	usageService UsageServiceInterface
}

func NewUsage(usageService *service.UsageService) *Usage {
	return &Usage{
		usageService: usageService,
	}
}

func (u *Usage) RegisterRoutes(router *gin.RouterGroup) {
	usageRouter := router.Group("/usage")
	// 自己的用量按请求头里的身份取
	usageRouter.GET("", ginx.Adapt3(u.GetOwnUsage))
	usageRouter.GET("/:owner_id", ginx.Adapt5(u.GetUsage))
}

func (u *Usage) GetOwnUsage(ctx *gin.Context) (*entity.GetUsageResponse, error) {
	summary, err := u.usageService.Summarize(ctx.Request.Context(), ownerID(ctx))
	if err != nil {
		return nil, err
	}
	return &entity.GetUsageResponse{
		Summary: summary,
	}, nil
}

func (u *Usage) GetUsage(ctx *gin.Context, req *entity.GetUsageRequest) (*entity.GetUsageResponse, error) {
	summary, err := u.usageService.Summarize(ctx.Request.Context(), req.OwnerID)
	if err != nil {
		return nil, err
	}
	return &entity.GetUsageResponse{
		Summary: summary,
	}, nil
}
