// Package source adapts OpenAI-style streaming chunks into the raw text
// fragments the segmenter consumes. Providers that expose reasoning through
// the side-band reasoning_content delta field get it folded back into
// tag-delimited text, so the segmenter sees one uniform stream.
package source

import (
	"bufio"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/reverie-dev/reverie/internal/reasoning"
)

const (
	// FieldReasoningContent is the OpenAI extra delta field carrying
	// hidden reasoning for models that separate it from content.
	FieldReasoningContent = "reasoning_content"

	pathDeltaContent   = "choices.0.delta.content"
	pathDeltaReasoning = "choices.0.delta.reasoning_content"

	sseDataPrefix = "data:"
	sseDoneMarker = "[DONE]"
)

// ChunkDecoder converts chat completion chunks into text fragments. It is
// stateful: while reasoning_content deltas are arriving it keeps the wrap
// pair's start tag open, and closes it when visible content resumes.
type ChunkDecoder struct {
	wrap        reasoning.TagPair
	inReasoning bool
}

// NewChunkDecoder creates a decoder that wraps reasoning_content deltas in
// the given tag pair (conventionally the first configured pair).
func NewChunkDecoder(wrap reasoning.TagPair) *ChunkDecoder {
	return &ChunkDecoder{wrap: wrap}
}

// Decode returns the text fragment carried by one chunk, possibly empty.
func (d *ChunkDecoder) Decode(chunk []byte) string {
	var b strings.Builder

	if r := gjson.GetBytes(chunk, pathDeltaReasoning); r.Exists() && r.String() != "" {
		if !d.inReasoning {
			b.WriteString(d.wrap.Start)
			d.inReasoning = true
		}
		b.WriteString(r.String())
	}

	if c := gjson.GetBytes(chunk, pathDeltaContent); c.String() != "" {
		if d.inReasoning {
			b.WriteString(d.wrap.End)
			d.inReasoning = false
		}
		b.WriteString(c.String())
	}

	return b.String()
}

// Flush closes a reasoning region left open by a stream that ended while
// still emitting reasoning_content.
func (d *ChunkDecoder) Flush() string {
	if !d.inReasoning {
		return ""
	}
	d.inReasoning = false
	return d.wrap.End
}

// SSEReader reads an OpenAI-style server-sent-event stream line by line and
// yields decoded text fragments.
type SSEReader struct {
	scanner *bufio.Scanner
	decoder *ChunkDecoder
	done    bool
}

// NewSSEReader wraps a raw SSE byte stream.
func NewSSEReader(r io.Reader, decoder *ChunkDecoder) *SSEReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &SSEReader{scanner: sc, decoder: decoder}
}

// Next returns the next non-empty fragment, or io.EOF when the stream is
// exhausted (including the [DONE] marker). Malformed data lines decode to
// nothing and are skipped: model output is untrusted and never fatal.
func (r *SSEReader) Next() (string, error) {
	if r.done {
		return "", io.EOF
	}
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if !strings.HasPrefix(line, sseDataPrefix) {
			continue
		}
		payload := strings.TrimSpace(line[len(sseDataPrefix):])
		if payload == "" {
			continue
		}
		if payload == sseDoneMarker {
			break
		}
		if frag := r.decoder.Decode([]byte(payload)); frag != "" {
			return frag, nil
		}
	}
	r.done = true
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	if tail := r.decoder.Flush(); tail != "" {
		return tail, nil
	}
	return "", io.EOF
}
