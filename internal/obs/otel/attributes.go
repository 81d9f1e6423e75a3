package otel

import "go.opentelemetry.io/otel/attribute"

// Attribute keys shared by all stream metrics.
const (
	AttrStreamID  = attribute.Key("stream.id")
	AttrBlockKind = attribute.Key("block.kind")
	AttrTagStart  = attribute.Key("block.tag_start")
	AttrStatus    = attribute.Key("stream.status")
)
