package reasoning

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Segmenter is the per-stream state machine. It consumes text fragments in
// arrival order, recognizes configured tag pairs even when a tag is split
// across fragment boundaries, and maintains the stream's BlockStore.
//
// A Segmenter is exclusively owned by one stream. Calls are not synchronized
// internally; the caller enforces a single-writer discipline (fragments for
// one stream arrive strictly in order).
type Segmenter struct {
	table   *TagTable
	store   *BlockStore
	now     func() time.Time
	active  *TagPair // open reasoning pair, nil while scanning plain
	pending string   // residual bytes that might begin a tag
	closed  bool
}

// SegmenterOption configures a Segmenter.
type SegmenterOption func(*Segmenter)

// WithClock overrides the monotonic clock source, mainly for tests.
func WithClock(now func() time.Time) SegmenterOption {
	return func(s *Segmenter) {
		s.now = now
	}
}

// NewSegmenter creates a segmenter over an immutable tag table. A nil or
// empty table disables reasoning detection: all content accumulates into a
// single growing plain block.
func NewSegmenter(table *TagTable, opts ...SegmenterOption) *Segmenter {
	s := &Segmenter{
		table: table,
		store: NewBlockStore(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the stream's block store. Reads are safe mid-stream as long
// as the caller excludes them against Feed/Finish for the same stream.
func (s *Segmenter) Store() *BlockStore {
	return s.store
}

// Blocks returns a snapshot of the blocks so far, including a still-open one.
func (s *Segmenter) Blocks() []*Block {
	return s.store.All()
}

// Closed reports whether the stream has ended.
func (s *Segmenter) Closed() bool {
	return s.closed
}

// Feed consumes the next fragment. Fragments carry no structure and their
// boundaries need not align with tag boundaries. Feeding a closed stream is
// a no-op: model output is untrusted and never raises errors here.
func (s *Segmenter) Feed(fragment string) {
	if s.closed || fragment == "" {
		return
	}
	s.pending += fragment
	s.drain()
}

// Finish signals end-of-stream (or cancellation, which is equivalent). Any
// residual bytes held back as a possible partial tag are flushed as literal
// content, and an open block is closed. An unterminated reasoning block is
// still surfaced with Done set: best-effort recovery, not an error.
func (s *Segmenter) Finish() {
	if s.closed {
		return
	}
	s.closed = true

	if s.pending != "" {
		s.appendContent(s.pending)
		s.pending = ""
	}
	if open := s.store.Open(); open != nil {
		open.EndedAt = s.now()
		open.Done = true
		if open.Kind == KindReasoning && s.active != nil {
			logrus.Debugf("closing unterminated reasoning block %s at end of stream", open.ID)
		}
	}
	s.active = nil
}

// drain classifies the pending buffer until it is empty or ends in an
// ambiguous tail that must wait for more bytes.
func (s *Segmenter) drain() {
	for s.pending != "" {
		if s.active == nil {
			if !s.drainPlain() {
				return
			}
		} else {
			if !s.drainReasoning() {
				return
			}
		}
	}
}

// drainPlain handles one step while scanning outside reasoning regions.
// Returns false when the remaining tail must be held back.
func (s *Segmenter) drainPlain() bool {
	m := s.table.Match(s.pending)
	switch m.Kind {
	case MatchFull:
		if m.Role == RoleStart {
			s.openReasoning(m.Pair)
		} else {
			// An end tag with no matching opener is ordinary content.
			s.appendContent(s.pending[:m.Length])
		}
		s.pending = s.pending[m.Length:]
		return true
	case MatchPartial:
		return false
	default:
		n := s.table.nextHead(s.pending)
		s.appendContent(s.pending[:n])
		s.pending = s.pending[n:]
		return true
	}
}

// drainReasoning handles one step inside a reasoning region. Only the active
// pair's end tag is structural; other pairs' tags (and mismatched end tags)
// are literal content — reasoning blocks do not nest.
func (s *Segmenter) drainReasoning() bool {
	m := s.table.MatchEnd(s.pending, *s.active)
	switch m.Kind {
	case MatchFull:
		s.closeReasoning()
		s.pending = s.pending[m.Length:]
		return true
	case MatchPartial:
		return false
	default:
		n := nextByte(s.pending, s.active.End[0])
		s.appendContent(s.pending[:n])
		s.pending = s.pending[n:]
		return true
	}
}

// appendContent adds unambiguous content to the open block, materializing a
// plain block lazily so an empty plain block is never emitted.
func (s *Segmenter) appendContent(text string) {
	if text == "" {
		return
	}
	open := s.store.Open()
	if open == nil {
		open = newBlock(KindPlain, TagPair{}, s.now())
		s.store.Append(open)
	}
	open.append(text)
}

func (s *Segmenter) openReasoning(pair TagPair) {
	now := s.now()
	if open := s.store.Open(); open != nil {
		open.EndedAt = now
		open.Done = true
	}
	b := newBlock(KindReasoning, pair, now)
	s.store.Append(b)
	s.active = &pair
	logrus.Tracef("opened reasoning block %s (%s)", b.ID, pair.Start)
}

func (s *Segmenter) closeReasoning() {
	if open := s.store.Open(); open != nil {
		open.EndedAt = s.now()
		open.Done = true
		logrus.Tracef("closed reasoning block %s after %s", open.ID, open.Duration())
	}
	s.active = nil
}
