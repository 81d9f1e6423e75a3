package reasoning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTagTable_ValidPairs(t *testing.T) {
	table, err := NewTagTable([]TagPair{
		{Start: "<a>", End: "</a>"},
		{Start: "<b>", End: "</b>"},
	})

	require.NoError(t, err)
	assert.Len(t, table.Pairs(), 2)
	assert.False(t, table.Empty())
}

func TestNewTagTable_RejectsEmptyLiteral(t *testing.T) {
	_, err := NewTagTable([]TagPair{{Start: "", End: "</a>"}})
	assert.Error(t, err)

	_, err = NewTagTable([]TagPair{{Start: "<a>", End: ""}})
	assert.Error(t, err)
}

func TestNewTagTable_RejectsIdenticalStartEnd(t *testing.T) {
	_, err := NewTagTable([]TagPair{{Start: "||", End: "||"}})
	assert.Error(t, err)
}

func TestNewTagTable_RejectsDuplicateStart(t *testing.T) {
	_, err := NewTagTable([]TagPair{
		{Start: "<a>", End: "</a>"},
		{Start: "<a>", End: "</other>"},
	})
	assert.Error(t, err)
}

func TestNewTagTable_RejectsPrefixAmbiguity(t *testing.T) {
	_, err := NewTagTable([]TagPair{
		{Start: "<a>", End: "</a>"},
		{Start: "<a>x", End: "</ax>"},
	})
	assert.Error(t, err)
}

func TestNewTagTable_NoPartialTableOnError(t *testing.T) {
	table, err := NewTagTable([]TagPair{
		{Start: "<ok>", End: "</ok>"},
		{Start: "", End: "</bad>"},
	})
	require.Error(t, err)
	assert.Nil(t, table)
}

func TestDefaultTagTable_IsValid(t *testing.T) {
	table := DefaultTagTable()
	assert.Len(t, table.Pairs(), len(DefaultTagPairs))
}

func TestTagTable_MatchFullStart(t *testing.T) {
	table := DefaultTagTable()

	m := table.Match("<thinking>rest")
	assert.Equal(t, MatchFull, m.Kind)
	assert.Equal(t, RoleStart, m.Role)
	assert.Equal(t, "<thinking>", m.Pair.Start)
	assert.Equal(t, len("<thinking>"), m.Length)
}

func TestTagTable_MatchFullEnd(t *testing.T) {
	table := DefaultTagTable()

	m := table.Match("</think>tail")
	assert.Equal(t, MatchFull, m.Kind)
	assert.Equal(t, RoleEnd, m.Role)
	assert.Equal(t, "<think>", m.Pair.Start)
}

func TestTagTable_MatchPartial(t *testing.T) {
	table := DefaultTagTable()

	// "<thi" could still become <think> or <thinking>.
	m := table.Match("<thi")
	assert.Equal(t, MatchPartial, m.Kind)

	m = table.Match("<|begin_of_")
	assert.Equal(t, MatchPartial, m.Kind)
}

func TestTagTable_MatchNone(t *testing.T) {
	table := DefaultTagTable()

	assert.Equal(t, MatchNone, table.Match("plain text").Kind)
	assert.Equal(t, MatchNone, table.Match("<thx").Kind)
}

func TestTagTable_FirstConfiguredPairWins(t *testing.T) {
	table := MustTagTable([]TagPair{
		{Start: "<<", End: ">>"},
		{Start: "<x>", End: "</x>"},
	})

	// "<<" and "<x>" share the "<" head; table order decides the partial.
	m := table.Match("<x>data")
	assert.Equal(t, MatchFull, m.Kind)
	assert.Equal(t, "<x>", m.Pair.Start)

	m = table.Match("<<data")
	assert.Equal(t, MatchFull, m.Kind)
	assert.Equal(t, "<<", m.Pair.Start)
}

func TestTagTable_MatchEndOnlyMatchesActivePair(t *testing.T) {
	table := DefaultTagTable()
	think := table.Pairs()[0]

	assert.Equal(t, MatchFull, table.MatchEnd("</think>x", think).Kind)
	assert.Equal(t, MatchNone, table.MatchEnd("</reasoning>x", think).Kind)
	assert.Equal(t, MatchPartial, table.MatchEnd("</thi", think).Kind)
}

func TestTagTable_EmptyTable(t *testing.T) {
	table, err := NewTagTable(nil)
	require.NoError(t, err)
	assert.True(t, table.Empty())
	assert.Equal(t, MatchNone, table.Match("<think>x").Kind)
}
