package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"gripulse/pkg/contracts"
)

// OTelProviders holds the configured OpenTelemetry providers.
type OTelProviders struct {
	MeterProvider *sdkmetric.MeterProvider
	Meter         metric.Meter
}

// InitializeOTel sets up the OpenTelemetry meter provider with a
// Prometheus exporter. The collected metrics surface on /metrics through
// the standard promhttp handler.
func InitializeOTel(logger *slog.Logger) (*OTelProviders, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("gripulse"),
			semconv.ServiceVersion(contracts.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	logger.Info("OpenTelemetry metrics initialized",
		slog.String("exporter", "prometheus"))

	return &OTelProviders{
		MeterProvider: mp,
		Meter:         mp.Meter("gripulse"),
	}, nil
}

// Shutdown flushes and stops the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	if p == nil || p.MeterProvider == nil {
		return nil
	}
	return p.MeterProvider.Shutdown(ctx)
}

// AppMetrics groups the application-level instruments.
type AppMetrics struct {
	WorkbooksParsed  metric.Int64Counter
	ReportsGenerated metric.Int64Counter
	EmailsSent       metric.Int64Counter
	AgentQuestions   metric.Int64Counter
	AgentFallbacks   metric.Int64Counter
	ParseDuration    metric.Float64Histogram
}

// NewAppMetrics creates the application instruments on the given meter.
func NewAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	workbooks, err := meter.Int64Counter("gripulse_workbooks_parsed_total",
		metric.WithDescription("Workbooks parsed from the data directory"))
	if err != nil {
		return nil, fmt.Errorf("failed to create workbook counter: %w", err)
	}

	reports, err := meter.Int64Counter("gripulse_reports_generated_total",
		metric.WithDescription("PDF reports generated"))
	if err != nil {
		return nil, fmt.Errorf("failed to create report counter: %w", err)
	}

	emails, err := meter.Int64Counter("gripulse_emails_sent_total",
		metric.WithDescription("Report emails delivered"))
	if err != nil {
		return nil, fmt.Errorf("failed to create email counter: %w", err)
	}

	questions, err := meter.Int64Counter("gripulse_agent_questions_total",
		metric.WithDescription("Questions handled by the chat agent"))
	if err != nil {
		return nil, fmt.Errorf("failed to create question counter: %w", err)
	}

	fallbacks, err := meter.Int64Counter("gripulse_agent_fallbacks_total",
		metric.WithDescription("Agent answers served from the deterministic fallback"))
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback counter: %w", err)
	}

	parseDur, err := meter.Float64Histogram("gripulse_workbook_parse_seconds",
		metric.WithDescription("Workbook parse duration in seconds"))
	if err != nil {
		return nil, fmt.Errorf("failed to create parse histogram: %w", err)
	}

	return &AppMetrics{
		WorkbooksParsed:  workbooks,
		ReportsGenerated: reports,
		EmailsSent:       emails,
		AgentQuestions:   questions,
		AgentFallbacks:   fallbacks,
		ParseDuration:    parseDur,
	}, nil
}

// RecordReport counts one generated report of the given kind.
func (m *AppMetrics) RecordReport(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.ReportsGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordWorkbookParse counts one parsed workbook and its duration.
func (m *AppMetrics) RecordWorkbookParse(ctx context.Context, seconds float64) {
	if m == nil {
		return
	}
	m.WorkbooksParsed.Add(ctx, 1)
	m.ParseDuration.Record(ctx, seconds)
}

// RecordAgentQuestion counts one handled question, flagging fallback use.
func (m *AppMetrics) RecordAgentQuestion(ctx context.Context, fallback bool) {
	if m == nil {
		return
	}
	m.AgentQuestions.Add(ctx, 1)
	if fallback {
		m.AgentFallbacks.Add(ctx, 1)
	}
}
