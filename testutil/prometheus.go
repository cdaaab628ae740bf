package testutil

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// PromCounterValue returns the value of the counter with the given name and
// label values, or 0 if no such series exists.
func PromCounterValue(t testing.TB, reg prometheus.Gatherer, name string, label ...string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range metrics {
		if family.GetName() != name {
			continue
		}
	metricsLoop:
		for _, m := range family.GetMetric() {
			require.Equal(t, len(label), len(m.GetLabel()))
			for i, lv := range label {
				if lv != m.GetLabel()[i].GetValue() {
					continue metricsLoop
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

// PromCounterHasValue reports whether the counter series has exactly value.
func PromCounterHasValue(t testing.TB, metrics []*dto.MetricFamily, value float64, name string, label ...string) bool {
	t.Helper()
	for _, family := range metrics {
		if family.GetName() != name {
			continue
		}
		ms := family.GetMetric()
	metricsLoop:
		for _, m := range ms {
			require.Equal(t, len(label), len(m.GetLabel()))
			for i, lv := range label {
				if lv != m.GetLabel()[i].GetValue() {
					continue metricsLoop
				}
			}
			return value == m.GetCounter().GetValue()
		}
	}
	return false
}
