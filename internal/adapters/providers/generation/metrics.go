package generation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type generationMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var genMetricsInit = false
var genMetrics generationMetrics

func ensureGenerationMetrics() {
	if genMetricsInit {
		return
	}
	meter := otel.Meter("github.com/clinaid/medassist/generation")

	requestCount, err := meter.Int64Counter(
		"ai.generation.request.count",
		metric.WithDescription("Number of text generation requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.generation.request.duration",
		metric.WithDescription("Text generation request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.generation.request.errors",
		metric.WithDescription("Number of text generation request errors"),
	)
	if err != nil {
		return
	}

	genMetrics = generationMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
	genMetricsInit = true
}

func recordGenerationMetric(ctx context.Context, provider string, duration time.Duration, err error) {
	ensureGenerationMetrics()
	if !genMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", provider),
	}

	genMetrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	genMetrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		genMetrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
