// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ダウンロード結果のラベル値
const (
	DownloadServed      = "served"
	DownloadNotFound    = "not_found"
	DownloadNotReleased = "not_released"
	DownloadNoFile      = "no_file"
	DownloadMissing     = "missing"
	DownloadError       = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordDownload(result string)
	RecordBookmarkToggle(action string)
	RecordRegistration()
	RecordWelcomeEmailFailure()
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	downloads         *prometheus.CounterVec
	bookmarkToggles   *prometheus.CounterVec
	registrations     prometheus.Counter
	welcomeMailFailed prometheus.Counter
	httpStatus        *prometheus.CounterVec
	requestDuration   prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dropzone_downloads_total",
			Help: "結果別のダウンロード要求数",
		}, []string{"result"}),
		bookmarkToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dropzone_bookmark_toggles_total",
			Help: "作成・削除別のブックマーク切り替え数",
		}, []string{"action"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dropzone_registrations_total",
			Help: "ユーザー登録の合計数",
		}),
		welcomeMailFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dropzone_welcome_email_failures_total",
			Help: "ウェルカムメール送信失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dropzone_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dropzone_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.downloads,
		c.bookmarkToggles,
		c.registrations,
		c.welcomeMailFailed,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordDownload はダウンロード要求の結果を記録する。
func (c *Collector) RecordDownload(result string) {
	c.downloads.WithLabelValues(result).Inc()
}

// RecordBookmarkToggle はブックマークの切り替えを記録する。
func (c *Collector) RecordBookmarkToggle(action string) {
	c.bookmarkToggles.WithLabelValues(action).Inc()
}

// RecordRegistration はユーザー登録を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordWelcomeEmailFailure はウェルカムメール送信失敗を記録する。
func (c *Collector) RecordWelcomeEmailFailure() {
	c.welcomeMailFailed.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var _ MetricsCollector = (*Collector)(nil)
