// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する。
// サービス層（上流フェッチ）とHTTPミドルウェアから利用する。
type Collector struct {
	upstreamSuccess   prometheus.Counter
	upstreamFail      prometheus.Counter
	malformedResponse prometheus.Counter
	upstreamLatency   prometheus.Histogram
	httpStatus        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dokusho_upstream_fetch_success_total",
			Help: "Hardcover APIフェッチ成功の合計数",
		}),
		upstreamFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dokusho_upstream_fetch_fail_total",
			Help: "Hardcover APIフェッチ失敗の合計数",
		}),
		malformedResponse: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dokusho_malformed_response_total",
			Help: "形状不正な上流レスポンスの合計数",
		}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dokusho_upstream_fetch_latency_seconds",
			Help:    "Hardcover APIフェッチのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dokusho_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.upstreamSuccess,
		c.upstreamFail,
		c.malformedResponse,
		c.upstreamLatency,
		c.httpStatus,
	)

	return c
}

// RecordUpstreamSuccess は上流フェッチ成功を記録する。
func (c *Collector) RecordUpstreamSuccess() {
	c.upstreamSuccess.Inc()
}

// RecordUpstreamFailure は上流フェッチ失敗を記録する。
func (c *Collector) RecordUpstreamFailure() {
	c.upstreamFail.Inc()
}

// RecordMalformedResponse は形状不正な上流レスポンスを記録する。
func (c *Collector) RecordMalformedResponse() {
	c.malformedResponse.Inc()
}

// RecordUpstreamLatency は上流フェッチのレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(duration time.Duration) {
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
