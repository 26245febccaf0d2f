package runner

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumValue(t *testing.T, got map[string]metricdata.Aggregation, name string) int64 {
	t.Helper()
	s, ok := got[name].(metricdata.Sum[int64])
	if !ok || len(s.DataPoints) != 1 {
		t.Fatalf("%s: %#v", name, got[name])
	}
	return s.DataPoints[0].Value
}

func gaugeValue(t *testing.T, got map[string]metricdata.Aggregation, name string) int64 {
	t.Helper()
	g, ok := got[name].(metricdata.Gauge[int64])
	if !ok || len(g.DataPoints) != 1 {
		t.Fatalf("%s: %#v", name, got[name])
	}
	return g.DataPoints[0].Value
}

func TestMetrics_ReportedThroughProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	r := newRunner(t, nil, Config{MeterProvider: mp})
	r.Frame(time.Second)
	r.Frame(500 * time.Millisecond)

	got := collect(t, reader)
	steps := int64(r.Steps())
	if steps < 149 || steps > 150 {
		t.Fatalf("runner steps=%d", steps)
	}
	if n := sumValue(t, got, "sim.steps"); n != steps {
		t.Fatalf("sim.steps=%d want %d", n, steps)
	}
	h, ok := got["sim.frame.steps"].(metricdata.Histogram[int64])
	if !ok || len(h.DataPoints) != 1 || h.DataPoints[0].Count != 2 || h.DataPoints[0].Sum != steps {
		t.Fatalf("sim.frame.steps=%#v", got["sim.frame.steps"])
	}
	if n := gaugeValue(t, got, "sim.units"); n != int64(r.w.UnitCount()) {
		t.Fatalf("sim.units=%d want %d", n, r.w.UnitCount())
	}
	if n := gaugeValue(t, got, "sim.satellites"); n != int64(len(r.w.Satellites())) {
		t.Fatalf("sim.satellites=%d", n)
	}
}

func TestMetrics_DroppedSteps(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	r := newRunner(t, nil, Config{MeterProvider: mp})
	r.Frame(30 * time.Second)

	got := collect(t, reader)
	if n := sumValue(t, got, "sim.steps"); n != maxStepsPerFrame {
		t.Fatalf("sim.steps=%d", n)
	}
	if n := sumValue(t, got, "sim.steps.dropped"); n != 3000-maxStepsPerFrame {
		t.Fatalf("sim.steps.dropped=%d", n)
	}
}
