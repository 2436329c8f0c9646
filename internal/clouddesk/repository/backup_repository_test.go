package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jimyag/clouddesk/internal/clouddesk/repository/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestBackup(id, ownerID, desktopID, status string) *model.Backup {
	return &model.Backup{
		ID:             id,
		OwnerID:        ownerID,
		DesktopID:      desktopID,
		Status:         status,
		SourceInstance: desktopID,
		SourceZone:     "us-central1-a",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

func TestBackupRepository(t *testing.T) {
	t.Parallel()

	repo := setupTestDB(t)
	backupRepo := NewBackupRepository(repo.DB())
	ctx := context.Background()

	t.Run("Create and GetByID", func(t *testing.T) {
		backup := newTestBackup("bak-1", "owner-1", "desk-1", "CREATING")
		require.NoError(t, backupRepo.Create(ctx, backup))

		got, err := backupRepo.GetByID(ctx, "bak-1")
		require.NoError(t, err)
		assert.Equal(t, "bak-1", got.ID)
		assert.Equal(t, "CREATING", got.Status)
		// 创建时大小未知
		assert.Nil(t, got.StorageBytes)
	})

	t.Run("GetByID not found", func(t *testing.T) {
		_, err := backupRepo.GetByID(ctx, "bak-missing")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("Update backfills size and status", func(t *testing.T) {
		backup := newTestBackup("bak-2", "owner-1", "desk-1", "CREATING")
		require.NoError(t, backupRepo.Create(ctx, backup))

		size := int64(10 << 30)
		backup.Status = "COMPLETED"
		backup.StorageBytes = &size
		require.NoError(t, backupRepo.Update(ctx, backup))

		got, err := backupRepo.GetByID(ctx, "bak-2")
		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", got.Status)
		require.NotNil(t, got.StorageBytes)
		assert.Equal(t, size, *got.StorageBytes)
	})

	t.Run("List filters by desktop", func(t *testing.T) {
		require.NoError(t, backupRepo.Create(ctx, newTestBackup("bak-3", "owner-2", "desk-9", "COMPLETED")))

		backups, err := backupRepo.List(ctx, map[string]interface{}{"desktop_id": "desk-9"})
		require.NoError(t, err)
		require.Len(t, backups, 1)
		assert.Equal(t, "bak-3", backups[0].ID)
	})

	t.Run("ListByOwner includes deleted records", func(t *testing.T) {
		require.NoError(t, backupRepo.Create(ctx, newTestBackup("bak-4", "owner-3", "desk-1", "DELETED")))
		require.NoError(t, backupRepo.Create(ctx, newTestBackup("bak-5", "owner-3", "desk-1", "COMPLETED")))

		all, err := backupRepo.ListByOwner(ctx, "owner-3")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}
