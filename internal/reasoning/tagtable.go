package reasoning

import (
	"fmt"
	"strings"
)

// TagPair is a start/end literal delimiting one reasoning region.
type TagPair struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// DefaultTagPairs are the reasoning delimiters emitted by common models.
// Matching is byte-exact; <thought> and <Thought> are distinct entries.
var DefaultTagPairs = []TagPair{
	{Start: "<think>", End: "</think>"},
	{Start: "<thinking>", End: "</thinking>"},
	{Start: "<reason>", End: "</reason>"},
	{Start: "<reasoning>", End: "</reasoning>"},
	{Start: "<thought>", End: "</thought>"},
	{Start: "<Thought>", End: "</Thought>"},
	{Start: "<|begin_of_thought|>", End: "<|end_of_thought|>"},
	{Start: "◁think▷", End: "◁/think▷"},
}

// MatchKind classifies the result of matching a buffer tail against the table.
type MatchKind int

const (
	// MatchNone means no tag literal shares a prefix with the tail.
	MatchNone MatchKind = iota
	// MatchPartial means the tail is a strict prefix of some literal and
	// cannot be classified until more bytes arrive.
	MatchPartial
	// MatchFull means a literal is fully contained at the head of the tail.
	MatchFull
)

// TagRole says whether the matched literal was a start or an end tag.
type TagRole int

const (
	RoleStart TagRole = iota
	RoleEnd
)

// Match is the result of querying the table against a buffer tail.
type Match struct {
	Kind   MatchKind
	Pair   TagPair
	Role   TagRole
	Length int
}

// TagTable is an ordered, immutable collection of tag pairs. Table order is
// part of the contract: when several literals could apply, the first
// configured pair wins.
type TagTable struct {
	pairs []TagPair
	heads []byte
}

// NewTagTable validates the pairs and builds a table. No partial table is
// ever returned: any invalid pair fails the whole construction.
func NewTagTable(pairs []TagPair) (*TagTable, error) {
	seen := make(map[string]int, len(pairs))
	for i, p := range pairs {
		if p.Start == "" || p.End == "" {
			return nil, fmt.Errorf("tag pair %d: start and end must be non-empty", i)
		}
		if p.Start == p.End {
			return nil, fmt.Errorf("tag pair %d: start and end are identical (%q)", i, p.Start)
		}
		if j, ok := seen[p.Start]; ok {
			return nil, fmt.Errorf("tag pair %d: duplicate start tag %q (already used by pair %d)", i, p.Start, j)
		}
		seen[p.Start] = i
	}
	for i, a := range pairs {
		for j, b := range pairs {
			if i == j {
				continue
			}
			if strings.HasPrefix(b.Start, a.Start) {
				return nil, fmt.Errorf("ambiguous start tags: %q is a prefix of %q", a.Start, b.Start)
			}
		}
	}

	t := &TagTable{pairs: append([]TagPair(nil), pairs...)}
	headSeen := make(map[byte]bool)
	for _, p := range t.pairs {
		for _, lit := range []string{p.Start, p.End} {
			if b := lit[0]; !headSeen[b] {
				headSeen[b] = true
				t.heads = append(t.heads, b)
			}
		}
	}
	return t, nil
}

// MustTagTable is a construction helper for tables known to be valid.
func MustTagTable(pairs []TagPair) *TagTable {
	t, err := NewTagTable(pairs)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTagTable returns a table over DefaultTagPairs.
func DefaultTagTable() *TagTable {
	return MustTagTable(DefaultTagPairs)
}

// Pairs returns a copy of the configured pairs in table order.
func (t *TagTable) Pairs() []TagPair {
	return append([]TagPair(nil), t.pairs...)
}

// Empty reports whether the table disables reasoning detection entirely.
func (t *TagTable) Empty() bool {
	return t == nil || len(t.pairs) == 0
}

// Match queries all start and end literals against the head of tail.
// Literals are scanned in table order, start before end within a pair, and
// the first non-NoMatch result wins.
func (t *TagTable) Match(tail string) Match {
	if t == nil {
		return Match{Kind: MatchNone}
	}
	for _, p := range t.pairs {
		if k := matchLiteral(tail, p.Start); k != MatchNone {
			return Match{Kind: k, Pair: p, Role: RoleStart, Length: len(p.Start)}
		}
		if k := matchLiteral(tail, p.End); k != MatchNone {
			return Match{Kind: k, Pair: p, Role: RoleEnd, Length: len(p.End)}
		}
	}
	return Match{Kind: MatchNone}
}

// MatchEnd queries only the end literal of the given pair. Used while a
// reasoning block is open: every other literal is ordinary content there.
func (t *TagTable) MatchEnd(tail string, pair TagPair) Match {
	if k := matchLiteral(tail, pair.End); k != MatchNone {
		return Match{Kind: k, Pair: pair, Role: RoleEnd, Length: len(pair.End)}
	}
	return Match{Kind: MatchNone}
}

// nextHead returns the smallest index >= 1 at which a byte could begin a
// configured literal, or len(s) when there is none. Bytes before that index
// are unambiguous content.
func (t *TagTable) nextHead(s string) int {
	if t == nil || len(t.heads) == 0 {
		return len(s)
	}
	best := len(s)
	for _, h := range t.heads {
		if i := strings.IndexByte(s[1:], h); i >= 0 && i+1 < best {
			best = i + 1
		}
	}
	return best
}

// nextByte is nextHead for a single literal's first byte.
func nextByte(s string, h byte) int {
	if i := strings.IndexByte(s[1:], h); i >= 0 {
		return i + 1
	}
	return len(s)
}

// matchLiteral compares the head of tail against one literal.
func matchLiteral(tail, lit string) MatchKind {
	if len(tail) >= len(lit) {
		if tail[:len(lit)] == lit {
			return MatchFull
		}
		return MatchNone
	}
	if strings.HasPrefix(lit, tail) {
		return MatchPartial
	}
	return MatchNone
}
