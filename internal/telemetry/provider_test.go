package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func TestHandler_PrometheusText(t *testing.T) {
	p := New("robonav-test")
	defer p.Shutdown(context.Background())

	m := p.MeterProvider().Meter("test")
	steps, err := m.Int64Counter("sim.steps", metric.WithDescription("Simulation steps executed"))
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	frame, err := m.Int64Histogram("sim.frame.steps", metric.WithExplicitBucketBoundaries(1, 10))
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}
	units, err := m.Int64ObservableGauge("sim.units")
	if err != nil {
		t.Fatalf("gauge: %v", err)
	}
	if _, err := m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(units, 7, metric.WithAttributes(attribute.String("kind", "robot")))
		return nil
	}, units); err != nil {
		t.Fatalf("callback: %v", err)
	}

	ctx := context.Background()
	steps.Add(ctx, 5)
	frame.Record(ctx, 3)
	frame.Record(ctx, 20)

	rec := httptest.NewRecorder()
	p.Handler()(rec, httptest.NewRequest("GET", "/metrics", nil))
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; version=0.0.4" {
		t.Fatalf("content type %q", ct)
	}
	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	for _, want := range []string{
		"# HELP sim_steps_total Simulation steps executed\n",
		"# TYPE sim_steps_total counter\n",
		"sim_steps_total 5\n",
		"# TYPE sim_frame_steps histogram\n",
		`sim_frame_steps_bucket{le="1"} 0` + "\n",
		`sim_frame_steps_bucket{le="10"} 1` + "\n",
		`sim_frame_steps_bucket{le="+Inf"} 2` + "\n",
		"sim_frame_steps_sum 23\n",
		"sim_frame_steps_count 2\n",
		"# TYPE sim_units gauge\n",
		`sim_units{kind="robot"} 7` + "\n",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
}

func TestPromName(t *testing.T) {
	cases := map[string]string{
		"sim.steps.dropped": "sim_steps_dropped",
		"a-b c":             "a_b_c",
		"ok_name:x":         "ok_name:x",
	}
	for in, want := range cases {
		if got := promName(in); got != want {
			t.Fatalf("promName(%q)=%q want %q", in, got, want)
		}
	}
}
