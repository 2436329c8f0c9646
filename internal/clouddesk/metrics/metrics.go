// Package metrics 暴露 Prometheus 指标
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clouddesk_http_requests_total",
			Help: "Total number of HTTP requests by method, route, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clouddesk_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clouddesk_http_requests_in_flight",
		Help: "Current number of HTTP requests being processed.",
	})

	providerCommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clouddesk_provider_commands_total",
			Help: "Total number of provider CLI invocations by operation and result code.",
		},
		[]string{"operation", "code"},
	)

	providerCommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clouddesk_provider_command_duration_seconds",
			Help:    "Provider CLI invocation latency in seconds by operation.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// DesktopCounter 桌面仓库中指标需要的最小接口
type DesktopCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// desktopCollector 每次抓取时现查数据库，按状态上报桌面数量
type desktopCollector struct {
	counter      DesktopCounter
	desktopsDesc *prometheus.Desc
}

func (c *desktopCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desktopsDesc
}

func (c *desktopCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := c.counter.CountByStatus(context.Background())
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.desktopsDesc, err)
		return
	}
	for status, n := range counts {
		ch <- prometheus.MustNewConstMetric(
			c.desktopsDesc,
			prometheus.GaugeValue,
			float64(n),
			status,
		)
	}
}

// Register 把所有指标注册到默认 registry，启动时调用一次
func Register(counter DesktopCounter) {
	prometheus.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),

		httpRequestsTotal,
		httpRequestDuration,
		httpRequestsInFlight,
		providerCommandsTotal,
		providerCommandDuration,

		&desktopCollector{
			counter: counter,
			desktopsDesc: prometheus.NewDesc(
				"clouddesk_desktops_total",
				"Number of desktops managed, partitioned by status.",
				[]string{"status"},
				nil,
			),
		},
	)
}

// Handler 返回 /metrics 端点的 HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware 记录 HTTP 指标的 gin 中间件
// path 标签用路由模板（FullPath），避免高基数
func Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		ctx.Next()

		httpRequestsInFlight.Dec()
		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(ctx.Writer.Status())
		httpRequestsTotal.WithLabelValues(ctx.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(ctx.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
