// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gatherer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/geth/metrics"
	"github.com/luxfi/metric"
)

func TestGatherer_Gather(t *testing.T) {
	registry := metrics.NewRegistry()
	register := func(t *testing.T, name string, collector any) {
		t.Helper()
		err := registry.Register(name, collector)
		require.NoErrorf(t, err, "registering collector %q", name)
	}

	counter := metrics.NewCounter()
	counter.Inc(12345)
	register(t, "test/counter", counter)

	gauge := metrics.NewGauge()
	gauge.Update(23456)
	register(t, "test/gauge", gauge)

	sample := metrics.NewUniformSample(1028)
	histogram := metrics.NewHistogram(sample)
	register(t, "test/histogram", histogram)

	timer := metrics.NewTimer()
	t.Cleanup(timer.Stop)
	timer.Update(20 * time.Millisecond)
	timer.Update(21 * time.Millisecond)
	timer.Update(22 * time.Millisecond)
	timer.Update(120 * time.Millisecond)
	timer.Update(23 * time.Millisecond)
	timer.Update(24 * time.Millisecond)
	register(t, "test/timer", timer)

	gatherer := NewGatherer(registry)

	families, err := gatherer.Gather()
	require.NoError(t, err)

	expectedFamilies := map[string]*metric.MetricFamily{
		"test_counter": {
			Name: "test_counter",
			Type: metric.MetricTypeCounter,
			Metrics: []metric.Metric{{
				Value: metric.MetricValue{Value: 12345},
			}},
		},
		"test_gauge": {
			Name: "test_gauge",
			Type: metric.MetricTypeGauge,
			Metrics: []metric.Metric{{
				Value: metric.MetricValue{Value: 23456},
			}},
		},
		"test_histogram": {
			Name: "test_histogram",
			Type: metric.MetricTypeSummary,
			Metrics: []metric.Metric{{
				Value: metric.MetricValue{
					SampleCount: 0,
					SampleSum:   0,
					Quantiles: []metric.Quantile{
						{Quantile: 0.5, Value: 0},
						{Quantile: 0.75, Value: 0},
						{Quantile: 0.95, Value: 0},
						{Quantile: 0.99, Value: 0},
						{Quantile: 0.999, Value: 0},
						{Quantile: 0.9999, Value: 0},
					},
				},
			}},
		},
		"test_timer": {
			Name: "test_timer",
			Type: metric.MetricTypeSummary,
			Metrics: []metric.Metric{{
				Value: metric.MetricValue{
					SampleCount: 6,
					SampleSum:   2.3e8,
					Quantiles: []metric.Quantile{
						{Quantile: 0.5, Value: 2.25e7},
						{Quantile: 0.75, Value: 4.8e7},
						{Quantile: 0.95, Value: 1.2e8},
						{Quantile: 0.99, Value: 1.2e8},
						{Quantile: 0.999, Value: 1.2e8},
						{Quantile: 0.9999, Value: 1.2e8},
					},
				},
			}},
		},
	}

	assert.Len(t, families, len(expectedFamilies))
	for _, got := range families {
		want, ok := expectedFamilies[got.Name]
		require.True(t, ok, "unexpected metric family: %s", got.Name)
		assert.Equal(t, want.Type, got.Type, "type mismatch for %s", got.Name)
		assert.Equal(t, want.Help, got.Help, "help mismatch for %s", got.Name)
		assert.Equal(t, want.Metrics, got.Metrics, "metrics mismatch for %s", got.Name)
	}

	register(t, "unsupported", metrics.NewCounterFloat64())
	families, err = gatherer.Gather()
	assert.ErrorIs(t, err, errMetricTypeNotSupported)
	assert.Empty(t, families)
}
