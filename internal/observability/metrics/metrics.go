package metrics

import (
	"context"
	"fmt"
	"strconv"
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
	entries            metric.Int64Counter
	exits              metric.Int64Counter
	payments           metric.Int64Counter
	capacityRejections metric.Int64Counter
	occupiedSpots      metric.Int64UpDownCounter
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
		name = "carpark"
	}
	meter := provider.Meter(name)

	entries, err := meter.Int64Counter("carpark_entries_total")
	if err != nil {
		return nil, err
	}
	exits, err := meter.Int64Counter("carpark_exits_total")
	if err != nil {
		return nil, err
	}
	payments, err := meter.Int64Counter("carpark_payments_total")
	if err != nil {
		return nil, err
	}
	capacityRejections, err := meter.Int64Counter("carpark_capacity_rejections_total")
	if err != nil {
		return nil, err
	}
	occupiedSpots, err := meter.Int64UpDownCounter("carpark_occupied_spots")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		entries:            entries,
		exits:              exits,
		payments:           payments,
		capacityRejections: capacityRejections,
		occupiedSpots:      occupiedSpots,
	}, nil
}

// RecordEntry counts a successful admission.
func (m *Metrics) RecordEntry(ctx context.Context, floor int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("floor", strconv.Itoa(floor)))
	m.entries.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.occupiedSpots.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordExit counts a completed session.
func (m *Metrics) RecordExit(ctx context.Context, floor int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("floor", strconv.Itoa(floor)))
	m.exits.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.occupiedSpots.Add(ctx, -1, metric.WithAttributes(attrs...))
}

// RecordPayment counts a settled fee.
func (m *Metrics) RecordPayment(ctx context.Context) {
	if m == nil {
		return
	}
	m.payments.Add(ctx, 1)
}

// RecordCapacityRejection counts admissions refused for lack of space.
func (m *Metrics) RecordCapacityRejection(ctx context.Context, scope string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("scope", strings.TrimSpace(scope)))
	m.capacityRejections.Add(ctx, 1, metric.WithAttributes(attrs...))
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
	"floor":       {},
	"scope":       {},
	"route":       {},
	"method":      {},
	"status_code": {},
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
