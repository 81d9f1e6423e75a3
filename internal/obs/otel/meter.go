// Package otel sets up OpenTelemetry metrics for stream segmentation.
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/reverie-dev/reverie/internal/constant"
)

// MeterSetup holds the meter provider and stream tracker.
type MeterSetup struct {
	meterProvider *sdkmetric.MeterProvider
	tracker       *StreamTracker
}

// NewMeterSetup builds a meter provider with a periodic stdout exporter and
// the stream tracker on top of it. Returns nil when disabled.
func NewMeterSetup(ctx context.Context, cfg *Config) (*MeterSetup, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(cfg.ExportInterval),
		sdkmetric.WithTimeout(cfg.ExportTimeout),
	)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
	)

	otel.SetMeterProvider(meterProvider)
	meter := meterProvider.Meter(constant.AppName)

	tracker, err := NewStreamTracker(meter)
	if err != nil {
		_ = meterProvider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create stream tracker: %w", err)
	}

	return &MeterSetup{
		meterProvider: meterProvider,
		tracker:       tracker,
	}, nil
}

// Tracker returns the stream tracker, nil when metrics are disabled.
func (ms *MeterSetup) Tracker() *StreamTracker {
	if ms == nil {
		return nil
	}
	return ms.tracker
}

// Shutdown flushes and stops the meter provider.
func (ms *MeterSetup) Shutdown(ctx context.Context) error {
	if ms == nil || ms.meterProvider == nil {
		return nil
	}
	return ms.meterProvider.Shutdown(ctx)
}
