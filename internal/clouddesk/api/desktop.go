package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/clouddesk/internal/clouddesk/entity"
	"github.com/jimyag/clouddesk/internal/clouddesk/service"
	"github.com/jimyag/clouddesk/pkg/ginx"
	"github.com/rs/zerolog"
)

// DesktopServiceInterface 定义桌面服务的接口
type DesktopServiceInterface interface {
	Create(ctx context.Context, ownerID string, req *entity.CreateDesktopRequest) (*entity.Desktop, error)
	Describe(ctx context.Context, id string) (*entity.Desktop, error)
	List(ctx context.Context, ownerID string, req *entity.ListDesktopsRequest) ([]entity.Desktop, error)
	Start(ctx context.Context, id string) (*entity.DesktopStateChangeResponse, error)
	Stop(ctx context.Context, id string) (*entity.DesktopStateChangeResponse, error)
	Delete(ctx context.Context, id string) (*entity.DesktopStateChangeResponse, error)
}

type Desktop struct {
	desktopService DesktopServiceInterface
}

func NewDesktop(desktopService *service.DesktopService) *Desktop {
	return &Desktop{
		desktopService: desktopService,
	}
}

func (d *Desktop) RegisterRoutes(router *gin.RouterGroup) {
	desktopRouter := router.Group("/desktops")
	desktopRouter.POST("", ginx.Adapt5(d.CreateDesktop))
	desktopRouter.GET("", ginx.Adapt5(d.ListDesktops))
	desktopRouter.GET("/:id", ginx.Adapt5(d.DescribeDesktop))
	desktopRouter.POST("/:id/start", ginx.Adapt5(d.StartDesktop))
	desktopRouter.POST("/:id/stop", ginx.Adapt5(d.StopDesktop))
	desktopRouter.DELETE("/:id", ginx.Adapt5(d.DeleteDesktop))
}

func (d *Desktop) CreateDesktop(ctx *gin.Context, req *entity.CreateDesktopRequest) (*entity.CreateDesktopResponse, error) {
	logger := zerolog.Ctx(ctx.Request.Context())
	logger.Info().
		Interface("request", req).
		Msg("CreateDesktop called")

	desktop, err := d.desktopService.Create(ctx.Request.Context(), ownerID(ctx), req)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("Failed to create desktop")
		return nil, err
	}

	logger.Info().
		Str("desktop_id", desktop.ID).
		Msg("Desktop created successfully")

	return &entity.CreateDesktopResponse{
		Desktop: desktop,
	}, nil
}

func (d *Desktop) DescribeDesktop(ctx *gin.Context, req *entity.DescribeDesktopRequest) (*entity.DescribeDesktopResponse, error) {
	desktop, err := d.desktopService.Describe(ctx.Request.Context(), req.ID)
	if err != nil {
		return nil, err
	}
	return &entity.DescribeDesktopResponse{
		Desktop: desktop,
	}, nil
}

func (d *Desktop) ListDesktops(ctx *gin.Context, req *entity.ListDesktopsRequest) (*entity.ListDesktopsResponse, error) {
	desktops, err := d.desktopService.List(ctx.Request.Context(), ownerID(ctx), req)
	if err != nil {
		return nil, err
	}
	return &entity.ListDesktopsResponse{
		Desktops: desktops,
	}, nil
}

func (d *Desktop) StartDesktop(ctx *gin.Context, req *entity.StartDesktopRequest) (*entity.DesktopStateChangeResponse, error) {
	logger := zerolog.Ctx(ctx.Request.Context())
	logger.Info().
		Str("desktop_id", req.ID).
		Msg("StartDesktop called")

	change, err := d.desktopService.Start(ctx.Request.Context(), req.ID)
	if err != nil {
		logger.Error().
			Err(err).
			Str("desktop_id", req.ID).
			Msg("Failed to start desktop")
		return nil, err
	}
	return change, nil
}

func (d *Desktop) StopDesktop(ctx *gin.Context, req *entity.StopDesktopRequest) (*entity.DesktopStateChangeResponse, error) {
	logger := zerolog.Ctx(ctx.Request.Context())
	logger.Info().
		Str("desktop_id", req.ID).
		Msg("StopDesktop called")

	change, err := d.desktopService.Stop(ctx.Request.Context(), req.ID)
	if err != nil {
		logger.Error().
			Err(err).
			Str("desktop_id", req.ID).
			Msg("Failed to stop desktop")
		return nil, err
	}
	return change, nil
}

func (d *Desktop) DeleteDesktop(ctx *gin.Context, req *entity.DeleteDesktopRequest) (*entity.DesktopStateChangeResponse, error) {
	logger := zerolog.Ctx(ctx.Request.Context())
	logger.Info().
		Str("desktop_id", req.ID).
		Msg("DeleteDesktop called")

	change, err := d.desktopService.Delete(ctx.Request.Context(), req.ID)
	if err != nil {
		logger.Error().
			Err(err).
			Str("desktop_id", req.ID).
			Msg("Failed to delete desktop")
		return nil, err
	}
	return change, nil
}
