package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jimyag/clouddesk/pkg/apierror"
	"github.com/jimyag/clouddesk/pkg/gcloud"
)

// instrumentedRunner 包装 Runner，按操作和结果码上报指标
type instrumentedRunner struct {
	next gcloud.Runner
}

// InstrumentRunner 给命令执行器加上指标上报
func InstrumentRunner(next gcloud.Runner) gcloud.Runner {
	return &instrumentedRunner{next: next}
}

func (r *instrumentedRunner) Run(ctx context.Context, args []string, opts gcloud.RunOptions) (json.RawMessage, error) {
	start := time.Now()
	raw, err := r.next.Run(ctx, args, opts)

	operation := operationLabel(args)
	code := "OK"
	if err != nil {
		var apiErr *apierror.Error
		if errors.As(err, &apiErr) {
			code = apiErr.Code
		} else {
			code = "UNKNOWN"
		}
	}

	providerCommandsTotal.WithLabelValues(operation, code).Inc()
	providerCommandDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	return raw, err
}

// operationLabel 取命令动词部分作为指标标签，不含资源名和标志，避免高基数
func operationLabel(args []string) string {
	verbs := make([]string, 0, 3)
	for _, arg := range args {
		if strings.HasPrefix(arg, "--") {
			break
		}
		verbs = append(verbs, arg)
		if len(verbs) == 3 {
			break
		}
	}
	return strings.Join(verbs, " ")
}
