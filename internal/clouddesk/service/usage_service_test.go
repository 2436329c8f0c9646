package service

import (
	"context"
	"testing"
	"time"

	"github.com/jimyag/clouddesk/internal/clouddesk/entity"
	"github.com/jimyag/clouddesk/internal/clouddesk/repository/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageService_Summarize(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	ctx := context.Background()

	seedDesktop(t, env, "desk-1", "owner-1", entity.DesktopStatusRunning)
	seedDesktop(t, env, "desk-2", "owner-1", entity.DesktopStatusDeleted)
	seedDesktop(t, env, "desk-3", "owner-2", entity.DesktopStatusRunning)

	size := int64(5 << 30)
	require.NoError(t, env.backupRepo.Create(ctx, &model.Backup{
		ID: "bak-1", OwnerID: "owner-1", DesktopID: "desk-1",
		Status: string(entity.BackupStatusCompleted), StorageBytes: &size,
		SourceInstance: "desk-1", SourceZone: "us-central1-a",
		CreatedAt: time.Now().Add(-2 * time.Hour), UpdatedAt: time.Now(),
	}))

	summary, err := env.usage.Summarize(ctx, "owner-1")
	require.NoError(t, err)

	// 只统计该用户的记录，其他用户不掺入
	assert.Equal(t, "owner-1", summary.OwnerID)
	assert.Equal(t, 2, summary.DesktopCount)
	assert.Equal(t, 1, summary.BackupCount)
	assert.Equal(t, 1, summary.ActiveDesktopCount)
	assert.Len(t, summary.Desktops, 2)
	assert.Positive(t, summary.GrandTotal)
	assert.Positive(t, summary.BackupTotal)
}

func TestUsageService_SummarizeEmptyOwner(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	summary, err := env.usage.Summarize(context.Background(), "owner-none")
	require.NoError(t, err)
	assert.Zero(t, summary.DesktopCount)
	assert.Zero(t, summary.GrandTotal)
	assert.Zero(t, summary.AverageDesktopCost)
}
