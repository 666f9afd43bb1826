// Package telemetry wires Prometheus metrics and OpenTelemetry tracing
// around the relay's HTTP handlers.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jawat-my/saferoute/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saferoute_http_requests_total",
			Help: "Total HTTP requests handled by the relay.",
		},
		[]string{"handler", "method", "code"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saferoute_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration)
}

// Init installs the global tracer provider. The exporter comes from
// cfg.Tracing.Exporter: "otlp" ships spans to an OTLP/HTTP collector,
// anything else falls back to a pretty-printed stdout exporter.
func Init(cfg *config.Config) error {
	serviceName := "saferoute"
	var tracing *config.TracingConfig
	if cfg != nil {
		tracing = cfg.Tracing
	}
	if tracing != nil && tracing.ServiceName != "" {
		serviceName = tracing.ServiceName
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return fmt.Errorf("failed to build trace resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch {
	case tracing != nil && tracing.Exporter == "otlp":
		opts := []otlptracehttp.Option{}
		if tracing.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(tracing.Endpoint))
		}
		exporter, err = otlptracehttp.New(context.Background(), opts...)
		if err != nil {
			return fmt.Errorf("failed to create otlp exporter: %w", err)
		}
	default:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return nil
}

// WrapHandler instruments an HTTP handler with tracing and per-handler
// request count and latency metrics.
func WrapHandler(name string, next http.Handler) http.Handler {
	traced := otelhttp.NewHandler(next, name)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		traced.ServeHTTP(sw, r)
		httpRequestsTotal.WithLabelValues(name, r.Method, fmt.Sprintf("%d", sw.status)).Inc()
		httpRequestDuration.WithLabelValues(name, r.Method).Observe(time.Since(start).Seconds())
	})
}

// statusWriter records the status code written by the wrapped handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
