package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	dayOpens          metric.Int64Counter
	dayCloses         metric.Int64Counter
	dayCloseDuration  metric.Float64Histogram
	receiptsSubmitted metric.Int64Counter
	lockContention    metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "fiscalway"
	}
	meter := provider.Meter(name)

	dayOpens, err := meter.Int64Counter("fiscalway_day_opens_total")
	if err != nil {
		return nil, err
	}
	dayCloses, err := meter.Int64Counter("fiscalway_day_closes_total")
	if err != nil {
		return nil, err
	}
	dayCloseDuration, err := meter.Float64Histogram("fiscalway_day_close_duration_seconds")
	if err != nil {
		return nil, err
	}
	receiptsSubmitted, err := meter.Int64Counter("fiscalway_receipts_submitted_total")
	if err != nil {
		return nil, err
	}
	lockContention, err := meter.Int64Counter("fiscalway_day_lock_contention_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		dayOpens:          dayOpens,
		dayCloses:         dayCloses,
		dayCloseDuration:  dayCloseDuration,
		receiptsSubmitted: receiptsSubmitted,
		lockContention:    lockContention,
	}, nil
}

// RecordDayOpen increments fiscal day open counts.
func (m *Metrics) RecordDayOpen(ctx context.Context) {
	if m == nil {
		return
	}
	m.dayOpens.Add(ctx, 1)
}

// RecordDayClose increments fiscal day close counts by result.
func (m *Metrics) RecordDayClose(ctx context.Context, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("result", strings.TrimSpace(result)))
	m.dayCloses.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.dayCloseDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// RecordReceiptSubmitted increments receipt submission counts.
func (m *Metrics) RecordReceiptSubmitted(ctx context.Context, receiptType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("receipt_type", strings.TrimSpace(receiptType)))
	m.receiptsSubmitted.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordLockContention counts close attempts rejected by the per-device lock.
func (m *Metrics) RecordLockContention(ctx context.Context) {
	if m == nil {
		return
	}
	m.lockContention.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":     {},
	"status_code":  {},
	"result":       {},
	"receipt_type": {},
	"reason":       {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
