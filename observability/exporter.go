package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type MetricsExporterType string

const (
	StdOutExporter     MetricsExporterType = "stdout"
	PrometheusExporter MetricsExporterType = "prometheus"
	NoopExporter       MetricsExporterType = "none"
)

var ErrUnknownMetricsExporter = errors.New("[observability] unknown metrics exporter")

// MetricsExporter owns the meter provider installed as the otel global.
// Handler is only set for the prometheus exporter.
type MetricsExporter struct {
	Provider *metric.MeterProvider
	Handler  http.Handler
}

func (e *MetricsExporter) Shutdown(ctx context.Context) error {
	if e == nil || e.Provider == nil {
		return nil
	}
	return e.Provider.Shutdown(ctx)
}

// Serves for test/dev environment.
func NewConsoleMetricsExporter(w io.Writer, interval, timeout time.Duration, opts ...stdoutmetric.Option) (*MetricsExporter, error) {
	if w != nil {
		opts = append(opts, stdoutmetric.WithWriter(w))
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return &MetricsExporter{Provider: mp}, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
// Each exporter has its own registry, so more than one may coexist
// in the same process.
func NewPrometheusMetricsExporter() (*MetricsExporter, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return &MetricsExporter{
		Provider: mp,
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// NewMetricsExporter returns nil for the noop exporter. The otel global
// meter provider stays a noop one in that case.
func NewMetricsExporter(typ MetricsExporterType, w io.Writer, interval time.Duration) (*MetricsExporter, error) {
	switch typ {
	case StdOutExporter:
		return NewConsoleMetricsExporter(w, interval, interval)
	case PrometheusExporter:
		return NewPrometheusMetricsExporter()
	case NoopExporter, "":
		return nil, nil
	default:
	}
	return nil, ErrUnknownMetricsExporter
}
