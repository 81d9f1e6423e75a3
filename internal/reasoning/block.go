package reasoning

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlockKind distinguishes ordinary output from reasoning regions.
type BlockKind string

const (
	KindPlain     BlockKind = "plain"
	KindReasoning BlockKind = "reasoning"
)

// Block is one segmented region of a stream. A block stays open (Done false)
// while content is still being appended to it; at most one block per stream
// is open at any time.
type Block struct {
	ID        string
	Kind      BlockKind
	Pair      TagPair // set for reasoning blocks only
	StartedAt time.Time
	EndedAt   time.Time
	Done      bool

	content strings.Builder
}

func newBlock(kind BlockKind, pair TagPair, startedAt time.Time) *Block {
	return &Block{
		ID:        uuid.NewString(),
		Kind:      kind,
		Pair:      pair,
		StartedAt: startedAt,
	}
}

// RestoreBlock rebuilds a block from persisted fields so archived streams
// can be rendered again.
func RestoreBlock(id string, kind BlockKind, pair TagPair, content string, startedAt, endedAt time.Time, done bool) *Block {
	b := &Block{
		ID:        id,
		Kind:      kind,
		Pair:      pair,
		StartedAt: startedAt,
		EndedAt:   endedAt,
		Done:      done,
	}
	b.content.WriteString(content)
	return b
}

// Content returns the characters accumulated so far.
func (b *Block) Content() string {
	return b.content.String()
}

func (b *Block) append(s string) {
	b.content.WriteString(s)
}

// Duration is the elapsed time between open and close. Only meaningful once
// the block is done.
func (b *Block) Duration() time.Duration {
	if !b.Done {
		return 0
	}
	return b.EndedAt.Sub(b.StartedAt)
}

// DurationSeconds rounds Duration to whole seconds, never negative.
func (b *Block) DurationSeconds() int {
	secs := int(math.Round(b.Duration().Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}

// Elapsed reports wall-clock time since the block opened, for rendering
// still-open blocks. Non-decreasing in now.
func (b *Block) Elapsed(now time.Time) time.Duration {
	if b.Done {
		return b.Duration()
	}
	if d := now.Sub(b.StartedAt); d > 0 {
		return d
	}
	return 0
}

// BlockStore is the ordered, append-only sequence of blocks for one stream.
// Creation order is emission order.
type BlockStore struct {
	blocks []*Block
}

// NewBlockStore creates an empty store.
func NewBlockStore() *BlockStore {
	return &BlockStore{}
}

// Append adds a block at the end of the sequence.
func (s *BlockStore) Append(b *Block) {
	s.blocks = append(s.blocks, b)
}

// All returns a snapshot of the block sequence. The slice is a copy; the
// blocks themselves are shared and may still be growing.
func (s *BlockStore) All() []*Block {
	return append([]*Block(nil), s.blocks...)
}

// Len returns the number of blocks so far.
func (s *BlockStore) Len() int {
	return len(s.blocks)
}

// Last returns the most recently created block, or nil.
func (s *BlockStore) Last() *Block {
	if len(s.blocks) == 0 {
		return nil
	}
	return s.blocks[len(s.blocks)-1]
}

// Open returns the single open block, or nil when all blocks are done.
// Only the last block can ever be open.
func (s *BlockStore) Open() *Block {
	if b := s.Last(); b != nil && !b.Done {
		return b
	}
	return nil
}

// Reasoning returns the reasoning blocks in order.
func (s *BlockStore) Reasoning() []*Block {
	var out []*Block
	for _, b := range s.blocks {
		if b.Kind == KindReasoning {
			out = append(out, b)
		}
	}
	return out
}
