package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StreamOptions describes one completed stream for metric recording.
type StreamOptions struct {
	// StreamID identifies the stream.
	StreamID string

	// Fragments is the number of fragments fed into the segmenter.
	Fragments int

	// Blocks is the total number of blocks produced.
	Blocks int

	// ReasoningBlocks is the number of reasoning blocks produced.
	ReasoningBlocks int

	// ThinkingSeconds is the summed reasoning duration.
	ThinkingSeconds int

	// Status is "finished" or "canceled".
	Status string
}

// StreamTracker records segmentation metrics. A nil tracker is a no-op so
// callers need not branch on whether metrics are enabled.
type StreamTracker struct {
	fragments        metric.Int64Counter
	blocks           metric.Int64Counter
	streams          metric.Int64Counter
	thinkingDuration metric.Float64Histogram
}

// NewStreamTracker creates a StreamTracker with the provided meter.
func NewStreamTracker(meter metric.Meter) (*StreamTracker, error) {
	st := &StreamTracker{}

	var err error

	st.fragments, err = meter.Int64Counter(
		"stream.fragments",
		metric.WithDescription("Text fragments fed into segmenters"),
		metric.WithUnit("{fragment}"),
	)
	if err != nil {
		return nil, err
	}

	st.blocks, err = meter.Int64Counter(
		"stream.blocks",
		metric.WithDescription("Blocks produced by segmentation, by kind"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return nil, err
	}

	st.streams, err = meter.Int64Counter(
		"stream.count",
		metric.WithDescription("Completed streams by status"),
		metric.WithUnit("{stream}"),
	)
	if err != nil {
		return nil, err
	}

	st.thinkingDuration, err = meter.Float64Histogram(
		"stream.thinking.duration",
		metric.WithDescription("Summed reasoning duration per stream in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return st, nil
}

// RecordFragment counts one fragment arrival.
func (st *StreamTracker) RecordFragment(ctx context.Context, streamID string) {
	if st == nil {
		return
	}
	st.fragments.Add(ctx, 1, metric.WithAttributes(AttrStreamID.String(streamID)))
}

// RecordStream records the outcome of a completed stream.
func (st *StreamTracker) RecordStream(ctx context.Context, opts StreamOptions) {
	if st == nil {
		return
	}

	commonAttrs := []attribute.KeyValue{
		AttrStreamID.String(opts.StreamID),
		AttrStatus.String(opts.Status),
	}

	st.streams.Add(ctx, 1, metric.WithAttributes(commonAttrs...))

	if plain := opts.Blocks - opts.ReasoningBlocks; plain > 0 {
		attrs := append(commonAttrs, AttrBlockKind.String("plain"))
		st.blocks.Add(ctx, int64(plain), metric.WithAttributes(attrs...))
	}
	if opts.ReasoningBlocks > 0 {
		attrs := append(commonAttrs, AttrBlockKind.String("reasoning"))
		st.blocks.Add(ctx, int64(opts.ReasoningBlocks), metric.WithAttributes(attrs...))
	}

	if opts.ThinkingSeconds > 0 {
		st.thinkingDuration.Record(ctx, float64(opts.ThinkingSeconds), metric.WithAttributes(commonAttrs...))
	}
}
