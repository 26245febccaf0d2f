// Package telemetry owns the OpenTelemetry meter provider and exposes its readings
// in the Prometheus text format.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Provider collects on demand: every scrape of Handler pulls one reading.
type Provider struct {
	reader *sdkmetric.ManualReader
	mp     *sdkmetric.MeterProvider
}

// New builds a meter provider backed by a manual reader.
func New(serviceName string) *Provider {
	reader := sdkmetric.NewManualReader()
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	return &Provider{
		reader: reader,
		mp:     sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res)),
	}
}

// MeterProvider is handed to instrumented packages.
func (p *Provider) MeterProvider() metric.MeterProvider { return p.mp }

// SetGlobal installs the provider behind otel.Meter.
func (p *Provider) SetGlobal() { otel.SetMeterProvider(p.mp) }

func (p *Provider) Collect(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics
	err := p.reader.Collect(ctx, &rm)
	return rm, err
}

func (p *Provider) Shutdown(ctx context.Context) error { return p.mp.Shutdown(ctx) }

// Handler serves GET /metrics.
func (p *Provider) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rm, err := p.Collect(r.Context())
		if err != nil {
			http.Error(rw, fmt.Sprintf("collect: %v", err), http.StatusInternalServerError)
			return
		}
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		WriteText(rw, rm)
	}
}

// WriteText renders a reading in the Prometheus exposition format. Dots in
// instrument names become underscores and counters gain a _total suffix.
func WriteText(w io.Writer, rm metricdata.ResourceMetrics) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			name := promName(m.Name)
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				writeSum(w, name, m.Description, data.IsMonotonic, data.DataPoints)
			case metricdata.Sum[float64]:
				writeSum(w, name, m.Description, data.IsMonotonic, data.DataPoints)
			case metricdata.Gauge[int64]:
				writeGauge(w, name, m.Description, data.DataPoints)
			case metricdata.Gauge[float64]:
				writeGauge(w, name, m.Description, data.DataPoints)
			case metricdata.Histogram[int64]:
				writeHistogram(w, name, m.Description, data.DataPoints)
			case metricdata.Histogram[float64]:
				writeHistogram(w, name, m.Description, data.DataPoints)
			}
		}
	}
}

func writeHeader(w io.Writer, name, help, typ string) {
	if help != "" {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	}
	fmt.Fprintf(w, "# TYPE %s %s\n", name, typ)
}

func writeSum[N int64 | float64](w io.Writer, name, help string, monotonic bool, dps []metricdata.DataPoint[N]) {
	typ := "gauge"
	if monotonic {
		name += "_total"
		typ = "counter"
	}
	writeHeader(w, name, help, typ)
	for _, dp := range dps {
		fmt.Fprintf(w, "%s%s %s\n", name, labels(dp.Attributes, ""), formatNum(float64(dp.Value)))
	}
}

func writeGauge[N int64 | float64](w io.Writer, name, help string, dps []metricdata.DataPoint[N]) {
	writeHeader(w, name, help, "gauge")
	for _, dp := range dps {
		fmt.Fprintf(w, "%s%s %s\n", name, labels(dp.Attributes, ""), formatNum(float64(dp.Value)))
	}
}

func writeHistogram[N int64 | float64](w io.Writer, name, help string, dps []metricdata.HistogramDataPoint[N]) {
	writeHeader(w, name, help, "histogram")
	for _, dp := range dps {
		var cum uint64
		for i, bound := range dp.Bounds {
			cum += dp.BucketCounts[i]
			fmt.Fprintf(w, "%s_bucket%s %d\n", name, labels(dp.Attributes, formatNum(bound)), cum)
		}
		fmt.Fprintf(w, "%s_bucket%s %d\n", name, labels(dp.Attributes, "+Inf"), dp.Count)
		fmt.Fprintf(w, "%s_sum%s %s\n", name, labels(dp.Attributes, ""), formatNum(float64(dp.Sum)))
		fmt.Fprintf(w, "%s_count%s %d\n", name, labels(dp.Attributes, ""), dp.Count)
	}
}

// labels renders the attribute set, plus le when non-empty.
func labels(set attribute.Set, le string) string {
	parts := make([]string, 0, set.Len()+1)
	iter := set.Iter()
	for iter.Next() {
		kv := iter.Attribute()
		parts = append(parts, fmt.Sprintf("%s=%q", promName(string(kv.Key)), kv.Value.Emit()))
	}
	sort.Strings(parts)
	if le != "" {
		parts = append(parts, fmt.Sprintf("le=%q", le))
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func promName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ':':
			return r
		}
		return '_'
	}, s)
}

func formatNum(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
