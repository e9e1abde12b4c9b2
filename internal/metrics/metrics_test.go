package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// gatherValue は指定メトリクスの最初のカウンタ値を取得するヘルパー。
func gatherValue(t *testing.T, reg *prometheus.Registry, name string) (float64, bool) {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue(), true
		}
	}
	return 0, false
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordFetch_IncrementsCounter はフェッチ呼び出しカウンタが増加することを検証する。
func TestRecordFetch_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFetch("friends_posts", 5)
	c.RecordFetch("friends_posts", 3)

	val, found := gatherValue(t, reg, "atelier_feed_fetch_calls_total")
	if !found {
		t.Fatal("atelier_feed_fetch_calls_total metric not found")
	}
	if val != 2 {
		t.Errorf("fetch_calls_total = %v, want 2", val)
	}
}

// TestRecordFetch_EmptyResultCounted は空結果のフェッチが専用カウンタに
// 記録されることを検証する。
func TestRecordFetch_EmptyResultCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFetch("popular_posts", 0)
	c.RecordFetch("popular_posts", 4)

	val, found := gatherValue(t, reg, "atelier_feed_fetch_empty_total")
	if !found {
		t.Fatal("atelier_feed_fetch_empty_total metric not found")
	}
	if val != 1 {
		t.Errorf("fetch_empty_total = %v, want 1", val)
	}
}

// TestRecordPage_ShortPageCounted は端数ページが専用カウンタに
// 記録されることを検証する。
func TestRecordPage_ShortPageCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPage("forYou", 10, true)
	c.RecordPage("forYou", 4, false)

	pages, found := gatherValue(t, reg, "atelier_feed_pages_total")
	if !found {
		t.Fatal("atelier_feed_pages_total metric not found")
	}
	if pages != 2 {
		t.Errorf("pages_total = %v, want 2", pages)
	}

	short, found := gatherValue(t, reg, "atelier_feed_short_pages_total")
	if !found {
		t.Fatal("atelier_feed_short_pages_total metric not found")
	}
	if short != 1 {
		t.Errorf("short_pages_total = %v, want 1", short)
	}
}

// TestRecordRecommendStage_AddsCount は段別採用カウンタに件数が
// 加算されることを検証する。
func TestRecordRecommendStage_AddsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRecommendStage("friends_of_friends", 2)
	c.RecordRecommendStage("friends_of_friends", 3)

	val, found := gatherValue(t, reg, "atelier_recommend_stage_hits_total")
	if !found {
		t.Fatal("atelier_recommend_stage_hits_total metric not found")
	}
	if val != 5 {
		t.Errorf("recommend_stage_hits_total = %v, want 5", val)
	}
}

// TestRecordAggregateLatency_Observes はレイテンシヒストグラムに
// 観測値が記録されることを検証する。
func TestRecordAggregateLatency_Observes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAggregateLatency(50 * time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "atelier_feed_aggregate_latency_seconds" {
			found = true
			if mf.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
				t.Errorf("sample count = %d, want 1", mf.GetMetric()[0].GetHistogram().GetSampleCount())
			}
		}
	}
	if !found {
		t.Error("atelier_feed_aggregate_latency_seconds metric not found")
	}
}

// TestNop_DoesNotPanic は何も記録しない実装が安全に呼べることを検証する。
func TestNop_DoesNotPanic(t *testing.T) {
	var m AggregationMetrics = Nop{}
	m.RecordFetch("friends_posts", 1)
	m.RecordPage("forYou", 10, true)
	m.RecordAggregateLatency(time.Millisecond)
	m.RecordRecommendStage("random_accounts", 0)
	m.RecordRecommendServed(12)
}
