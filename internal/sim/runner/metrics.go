package runner

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/runner"

func meter(mp metric.MeterProvider) metric.Meter {
	if mp == nil {
		return otel.Meter(instrumentationName)
	}
	return mp.Meter(instrumentationName)
}

type metrics struct {
	steps        metric.Int64Counter
	droppedSteps metric.Int64Counter
	frameSteps   metric.Int64Histogram

	// Mirrored after each frame so gauge callbacks never touch the world.
	units      atomic.Int64
	resources  atomic.Int64
	satellites atomic.Int64

	r *Runner
}

// newMetrics falls back to the global OTel meter (no-op if not configured).
func newMetrics(r *Runner, mp metric.MeterProvider) (*metrics, error) {
	m := meter(mp)
	mt := &metrics{r: r}

	var err error
	mt.steps, err = m.Int64Counter(
		"sim.steps",
		metric.WithDescription("Simulation steps executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating steps counter: %w", err)
	}
	mt.droppedSteps, err = m.Int64Counter(
		"sim.steps.dropped",
		metric.WithDescription("Steps skipped because the runner fell behind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}
	mt.frameSteps, err = m.Int64Histogram(
		"sim.frame.steps",
		metric.WithDescription("Steps executed per frame"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame histogram: %w", err)
	}

	units, err := m.Int64ObservableGauge("sim.units", metric.WithDescription("Live units including headquarters and viruses"))
	if err != nil {
		return nil, fmt.Errorf("creating units gauge: %w", err)
	}
	resources, err := m.Int64ObservableGauge("sim.resources", metric.WithDescription("Resources left on the board"))
	if err != nil {
		return nil, fmt.Errorf("creating resources gauge: %w", err)
	}
	satellites, err := m.Int64ObservableGauge("sim.satellites", metric.WithDescription("Satellites in the constellation"))
	if err != nil {
		return nil, fmt.Errorf("creating satellites gauge: %w", err)
	}
	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(units, mt.units.Load())
			o.ObserveInt64(resources, mt.resources.Load())
			o.ObserveInt64(satellites, mt.satellites.Load())
			return nil
		},
		units, resources, satellites,
	)
	if err != nil {
		return nil, fmt.Errorf("registering gauge callback: %w", err)
	}
	return mt, nil
}

func (m *metrics) frame(n int) {
	ctx := context.Background()
	if n > 0 {
		m.steps.Add(ctx, int64(n))
	}
	m.frameSteps.Record(ctx, int64(n))
	w := m.r.w
	m.units.Store(int64(w.UnitCount()))
	m.resources.Store(int64(len(w.Resources())))
	m.satellites.Store(int64(len(w.Satellites())))
}

func (m *metrics) dropped(n int64) {
	m.droppedSteps.Add(context.Background(), n)
}
