package gcloud

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jimyag/clouddesk/pkg/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeCLI 生成一个模拟厂商 CLI 的 shell 脚本
func writeFakeCLI(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-gcloud")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755)
	require.NoError(t, err)
	return path
}

func TestClient_Run_Success(t *testing.T) {
	t.Parallel()

	bin := writeFakeCLI(t, `echo '{"status":"RUNNING"}'`)
	client := NewClient(bin, "proj-1")

	raw, err := client.Run(context.Background(), []string{"compute", "instances", "describe", "desk-1"}, RunOptions{})
	require.NoError(t, err)

	var result struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, "RUNNING", result.Status)
}

func TestClient_Run_NoisyStdout(t *testing.T) {
	t.Parallel()

	bin := writeFakeCLI(t, `
echo 'WARNING: some components are outdated'
echo '[{"name":"desk-1"}]'
echo 'Updates are available.'`)
	client := NewClient(bin, "proj-1")

	raw, err := client.Run(context.Background(), []string{"compute", "instances", "list"}, RunOptions{})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"desk-1"}]`, string(raw))
}

func TestClient_Run_ImplicitFlags(t *testing.T) {
	t.Parallel()

	// 脚本把收到的参数回显为 JSON 数组
	bin := writeFakeCLI(t, `
printf '['
first=1
for arg in "$@"; do
  if [ $first -eq 1 ]; then first=0; else printf ','; fi
  printf '"%s"' "$arg"
done
printf ']\n'`)
	client := NewClient(bin, "proj-1")

	raw, err := client.Run(context.Background(), []string{"compute", "instances", "list"}, RunOptions{})
	require.NoError(t, err)

	var args []string
	require.NoError(t, json.Unmarshal(raw, &args))
	assert.Contains(t, args, "--format=json")
	assert.Contains(t, args, "--project=proj-1")
}

func TestClient_Run_AutoConfirm(t *testing.T) {
	t.Parallel()

	bin := writeFakeCLI(t, `
read answer
printf '{"confirmed":"%s"}\n' "$answer"`)
	client := NewClient(bin, "proj-1")

	raw, err := client.Run(context.Background(), []string{"compute", "instances", "delete", "desk-1"}, RunOptions{AutoConfirm: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"confirmed":"Y"}`, string(raw))
}

func TestClient_Run_Timeout(t *testing.T) {
	t.Parallel()

	bin := writeFakeCLI(t, `sleep 10`)
	client := NewClient(bin, "proj-1")

	start := time.Now()
	_, err := client.Run(context.Background(), []string{"compute", "instances", "create", "desk-1"}, RunOptions{Timeout: 200 * time.Millisecond})
	assert.ErrorIs(t, err, apierror.ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second, "process should be killed at the deadline")
}

func TestClient_Run_SDKNotInstalled(t *testing.T) {
	t.Parallel()

	client := NewClient("definitely-not-a-real-binary-xyz", "proj-1")

	_, err := client.Run(context.Background(), []string{"compute", "instances", "list"}, RunOptions{})
	assert.ErrorIs(t, err, apierror.ErrSDKNotInstalled)
}

func TestClient_Run_UnparsableOutput(t *testing.T) {
	t.Parallel()

	bin := writeFakeCLI(t, `echo 'all good, nothing to report'`)
	client := NewClient(bin, "proj-1")

	_, err := client.Run(context.Background(), []string{"compute", "instances", "list"}, RunOptions{})
	assert.ErrorIs(t, err, apierror.ErrCommand)
	assert.Contains(t, err.Error(), "failed to parse output")
}

func TestClient_Run_StderrClassification(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name   string
		stderr string
		want   *apierror.Error
	}{
		{
			name:   "zone exhausted",
			stderr: "ERROR: operation failed: ZONE_RESOURCE_POOL_EXHAUSTED",
			want:   apierror.ErrZoneExhausted,
		},
		{
			name:   "quota",
			stderr: "ERROR: Quota 'GPUS_ALL_REGIONS' exceeded.",
			want:   apierror.ErrQuota,
		},
		{
			name:   "auth",
			stderr: "ERROR: Your credentials have expired, run gcloud auth login",
			want:   apierror.ErrAuth,
		},
		{
			name:   "permission",
			stderr: "ERROR: Required permission compute.instances.start is missing",
			want:   apierror.ErrPermission,
		},
		{
			name:   "not found",
			stderr: "ERROR: The resource 'desk-1' was not found",
			want:   apierror.ErrNotFound,
		},
		{
			name:   "invalid config",
			stderr: "ERROR: Invalid value for field 'machineType'",
			want:   apierror.ErrInvalidConfig,
		},
		{
			name:   "fallback",
			stderr: "ERROR: something nobody expected",
			want:   apierror.ErrCommand,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			bin := writeFakeCLI(t, `echo '`+tc.stderr+`' >&2; exit 1`)
			client := NewClient(bin, "proj-1")

			_, err := client.Run(context.Background(), []string{"compute", "instances", "start", "desk-1"}, RunOptions{})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRedactArgs(t *testing.T) {
	t.Parallel()

	args := []string{
		"compute", "reset-windows-password", "desk-1",
		"--zone=us-central1-a",
		"--user=admin",
		"--secret-token=abc",
		"--api-key=xyz",
	}
	got := redactArgs(args)

	assert.Equal(t, "compute", got[0])
	assert.Equal(t, "[REDACTED]", got[1]) // 包含 password
	assert.Equal(t, "desk-1", got[2])
	assert.Equal(t, "--zone=us-central1-a", got[3])
	assert.Equal(t, "--user=admin", got[4])
	assert.Equal(t, "[REDACTED]", got[5])
	assert.Equal(t, "[REDACTED]", got[6])
}

func TestOperationName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "compute instances create",
		operationName([]string{"compute", "instances", "create", "desk-1", "--zone=z"}))
	assert.Equal(t, "compute machine-images list",
		operationName([]string{"compute", "machine-images", "list"}))
}
