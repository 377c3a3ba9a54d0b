package risk

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAggregate_Mean(t *testing.T) {
	agg, err := NewAggregator(StrategyMean, nil)
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	scores := map[string]float64{
		"time_of_day": 0.2,
		"geolocation": 0.8,
		"ip_address":  0.1,
		"user_agent":  0.9,
	}
	got := agg.Aggregate(scores)
	if !almostEqual(got, 0.5) {
		t.Fatalf("mean: got %v, want 0.5", got)
	}
}

func TestAggregate_Max(t *testing.T) {
	agg, _ := NewAggregator(StrategyMax, nil)
	got := agg.Aggregate(map[string]float64{"a": 0.2, "b": 0.8, "c": 0.1})
	if !almostEqual(got, 0.8) {
		t.Fatalf("max: got %v, want 0.8", got)
	}
}

func TestAggregate_Weighted(t *testing.T) {
	agg, _ := NewAggregator(StrategyWeighted, map[string]float64{"a": 3})
	// a=1.0 peso 3, b=0.0 peso default 1 => 0.75
	got := agg.Aggregate(map[string]float64{"a": 1.0, "b": 0.0})
	if !almostEqual(got, 0.75) {
		t.Fatalf("weighted: got %v, want 0.75", got)
	}
}

func TestAggregate_EmptyIsMaxRisk(t *testing.T) {
	agg, _ := NewAggregator(StrategyMean, nil)
	if got := agg.Aggregate(nil); !almostEqual(got, MaxScore) {
		t.Fatalf("empty scores: got %v, want MaxScore", got)
	}
}

func TestNewAggregator_UnknownStrategy(t *testing.T) {
	if _, err := NewAggregator("median", nil); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestNewAggregator_DefaultsToMean(t *testing.T) {
	agg, err := NewAggregator("", nil)
	if err != nil {
		t.Fatalf("empty strategy: %v", err)
	}
	got := agg.Aggregate(map[string]float64{"a": 0.0, "b": 1.0})
	if !almostEqual(got, 0.5) {
		t.Fatalf("default strategy must be mean, got %v", got)
	}
}
