package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"gripulse/internal/infrastructure"
)

// HTTPMetrics records per-request counters and latency on the
// application meter.
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inflight metric.Int64UpDownCounter
}

// NewHTTPMetrics creates the HTTP instruments on the application meter.
func NewHTTPMetrics(providers *infrastructure.OTelProviders) (*HTTPMetrics, error) {
	requests, err := providers.Meter.Int64Counter("gripulse_http_requests_total",
		metric.WithDescription("HTTP requests by method, route and status"))
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	duration, err := providers.Meter.Float64Histogram("gripulse_http_request_seconds",
		metric.WithDescription("HTTP request duration in seconds"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	inflight, err := providers.Meter.Int64UpDownCounter("gripulse_http_requests_inflight",
		metric.WithDescription("HTTP requests currently being served"))
	if err != nil {
		return nil, fmt.Errorf("failed to create inflight counter: %w", err)
	}

	return &HTTPMetrics{
		requests: requests,
		duration: duration,
		inflight: inflight,
	}, nil
}

// Handler returns the middleware handler function
func (m *HTTPMetrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()

		m.inflight.Add(ctx, 1)
		defer m.inflight.Add(ctx, -1)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Use the chi route pattern so path parameters do not explode
		// the label cardinality.
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		attrs := metric.WithAttributes(
			attribute.String("method", r.Method),
			attribute.String("route", route),
			attribute.Int("status", ww.Status()),
		)
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	})
}
