package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRegisterMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewRegisterMetrics(reg)

	metrics.IncSubmit(OutcomeApplied)
	metrics.IncSubmit(OutcomeApplied)
	metrics.IncSubmit(OutcomeRolledBack)
	metrics.IncLocalRejection("multiple_vouchers")
	metrics.ObserveUpstream("register", 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "register_submits_total", "outcome", OutcomeApplied); err != nil {
		t.Fatalf("fetch applied: %v", err)
	} else if got != 2 {
		t.Fatalf("expected applied=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "register_submits_total", "outcome", OutcomeRolledBack); err != nil {
		t.Fatalf("fetch rolled back: %v", err)
	} else if got != 1 {
		t.Fatalf("expected rolled_back=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "register_local_rejections_total", "reason", "multiple_vouchers"); err != nil {
		t.Fatalf("fetch rejection: %v", err)
	} else if got != 1 {
		t.Fatalf("expected rejection=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "register_upstream_duration_seconds", "endpoint", "register"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestRegisterMetricsNilSafe(t *testing.T) {
	var metrics *RegisterMetrics
	metrics.IncSubmit(OutcomeApplied)
	metrics.IncLocalRejection("reason")
	metrics.ObserveUpstream("register", time.Second)

	empty := NewRegisterMetrics(nil)
	empty.IncSubmit(OutcomeExpired)
	empty.ObserveUpstream("", time.Second)
}

func TestNormalizeLabel(t *testing.T) {
	if got := normalizeLabel(""); got != "unknown" {
		t.Fatalf("expected unknown for empty label, got %q", got)
	}
	if got := normalizeLabel("checkin"); got != "checkin" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
