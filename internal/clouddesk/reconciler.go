package clouddesk

import (
	"context"
	"time"

	"github.com/jimyag/clouddesk/internal/clouddesk/service"
	"github.com/rs/zerolog"
)

// reconcileInterval 备份物化是异步的，定期把 CREATING 状态的备份和厂商侧对齐
const reconcileInterval = 5 * time.Minute

// reconciler 后台任务，实现 grace.Grace 接口
type reconciler struct {
	backups *service.BackupService
	stop    chan struct{}
	done    chan struct{}
}

func newReconciler(backups *service.BackupService) *reconciler {
	return &reconciler{
		backups: backups,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (r *reconciler) Run(ctx context.Context) error {
	defer close(r.done)

	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.backups.Reconcile(ctx); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("Backup reconcile pass failed")
			}
		case <-r.stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *reconciler) Shutdown(ctx context.Context) error {
	close(r.stop)
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Name 实现 grace.Grace 接口
func (r *reconciler) Name() string {
	return "backup reconciler"
}
