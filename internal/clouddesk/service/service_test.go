package service

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jimyag/clouddesk/internal/clouddesk/billing"
	"github.com/jimyag/clouddesk/internal/clouddesk/repository"
	"github.com/jimyag/clouddesk/pkg/gcloud"
	"github.com/stretchr/testify/require"
)

// testEnv 一套完整的被测服务：真实 sqlite 仓库 + 假厂商 CLI
type testEnv struct {
	runner      *gcloud.MockRunner
	desktopRepo repository.DesktopRepository
	backupRepo  repository.BackupRepository
	desktops    *DesktopService
	backups     *BackupService
	usage       *UsageService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := repository.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	runner := gcloud.NewMockRunner()
	desktopRepo := repository.NewDesktopRepository(repo.DB())
	backupRepo := repository.NewBackupRepository(repo.DB())

	return &testEnv{
		runner:      runner,
		desktopRepo: desktopRepo,
		backupRepo:  backupRepo,
		desktops:    NewDesktopService(desktopRepo, gcloud.NewInstances(runner, "desktop-base")),
		backups:     NewBackupService(backupRepo, desktopRepo, gcloud.NewImages(runner)),
		usage:       NewUsageService(desktopRepo, backupRepo, billing.NewEngine(billing.DefaultPricing())),
	}
}

// instanceJSON 按实例名拼一个厂商侧实例描述
func instanceJSON(name, status string) string {
	return fmt.Sprintf(`{
		"name": %q,
		"zone": "projects/p/zones/us-central1-a",
		"machineType": "zones/us-central1-a/machineTypes/custom-4-8192",
		"status": %q,
		"networkInterfaces": [{"accessConfigs": [{"natIP": "34.1.2.3"}]}]
	}`, name, status)
}

// happyInstanceHandler 模拟一个一切顺利的厂商：
// create 返回实例数组，describe 返回 RUNNING，其余命令返回空对象
func happyInstanceHandler(args []string, _ gcloud.RunOptions) (json.RawMessage, error) {
	verb := args[2]
	name := ""
	if len(args) > 3 {
		name = args[3]
	}
	switch verb {
	case "create":
		return json.RawMessage("[" + instanceJSON(name, "PROVISIONING") + "]"), nil
	case "describe":
		return json.RawMessage(instanceJSON(name, "RUNNING")), nil
	default:
		return json.RawMessage(`{}`), nil
	}
}
