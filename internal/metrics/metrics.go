// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AggregationMetrics はフィード集約と推薦のメトリクス収集インターフェース。
// オーケストレーターから利用する。
type AggregationMetrics interface {
	// RecordFetch はディメンションへの1回のフェッチ呼び出しを記録する。
	RecordFetch(source string, returned int)
	// RecordPage は生成した1ページを記録する。fullはページが満杯だったかどうか。
	RecordPage(feedType string, size int, full bool)
	// RecordAggregateLatency は集約呼び出し全体のレイテンシを記録する。
	RecordAggregateLatency(duration time.Duration)
	// RecordRecommendStage は推薦パイプラインの1段の採用件数を記録する。
	RecordRecommendStage(stage string, count int)
	// RecordRecommendServed は返却した推薦の合計件数を記録する。
	RecordRecommendServed(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	fetchCalls       *prometheus.CounterVec
	fetchEmpty       *prometheus.CounterVec
	pages            *prometheus.CounterVec
	shortPages       prometheus.Counter
	aggregateLatency prometheus.Histogram
	recommendStage   *prometheus.CounterVec
	recommendServed  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_feed_fetch_calls_total",
			Help: "ディメンション別のフェッチ呼び出し合計数",
		}, []string{"source"}),
		fetchEmpty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_feed_fetch_empty_total",
			Help: "ディメンション別の空結果フェッチ合計数",
		}, []string{"source"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_feed_pages_total",
			Help: "フィード種別ごとの生成ページ合計数",
		}, []string{"feed_type"}),
		shortPages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atelier_feed_short_pages_total",
			Help: "クォータ未満で終了したページの合計数（ストリーム終端）",
		}),
		aggregateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "atelier_feed_aggregate_latency_seconds",
			Help:    "フィード集約呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		recommendStage: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_recommend_stage_hits_total",
			Help: "推薦パイプラインの段別採用件数",
		}, []string{"stage"}),
		recommendServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atelier_recommend_served_total",
			Help: "返却した推薦ユーザーの合計数",
		}),
	}

	reg.MustRegister(
		c.fetchCalls,
		c.fetchEmpty,
		c.pages,
		c.shortPages,
		c.aggregateLatency,
		c.recommendStage,
		c.recommendServed,
	)

	return c
}

// RecordFetch はディメンションへの1回のフェッチ呼び出しを記録する。
func (c *Collector) RecordFetch(source string, returned int) {
	c.fetchCalls.WithLabelValues(source).Inc()
	if returned == 0 {
		c.fetchEmpty.WithLabelValues(source).Inc()
	}
}

// RecordPage は生成した1ページを記録する。
func (c *Collector) RecordPage(feedType string, size int, full bool) {
	c.pages.WithLabelValues(feedType).Inc()
	if !full {
		c.shortPages.Inc()
	}
}

// RecordAggregateLatency は集約呼び出し全体のレイテンシを記録する。
func (c *Collector) RecordAggregateLatency(duration time.Duration) {
	c.aggregateLatency.Observe(duration.Seconds())
}

// RecordRecommendStage は推薦パイプラインの1段の採用件数を記録する。
func (c *Collector) RecordRecommendStage(stage string, count int) {
	c.recommendStage.WithLabelValues(stage).Add(float64(count))
}

// RecordRecommendServed は返却した推薦の合計件数を記録する。
func (c *Collector) RecordRecommendServed(count int) {
	c.recommendServed.Add(float64(count))
}

// Nop は何も記録しないAggregationMetrics実装。テストで使用する。
type Nop struct{}

func (Nop) RecordFetch(string, int)                  {}
func (Nop) RecordPage(string, int, bool)             {}
func (Nop) RecordAggregateLatency(time.Duration)     {}
func (Nop) RecordRecommendStage(string, int)         {}
func (Nop) RecordRecommendServed(int)                {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ AggregationMetrics = (*Collector)(nil)
var _ AggregationMetrics = Nop{}
