package reasoning

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedReasoningBlock(t *testing.T, content string, secs int) *Block {
	t.Helper()
	clock := newFakeClock()
	b := newBlock(KindReasoning, DefaultTagPairs[0], clock.Now())
	b.append(content)
	clock.Advance(time.Duration(secs) * time.Second)
	b.EndedAt = clock.Now()
	b.Done = true
	return b
}

func TestSerialize_PlainVerbatim(t *testing.T) {
	b := newBlock(KindPlain, TagPair{}, time.Now())
	b.append("just the answer\nwith two lines")

	assert.Equal(t, "just the answer\nwith two lines", Serialize(b))
}

func TestSerialize_DoneReasoningBlock(t *testing.T) {
	b := closedReasoningBlock(t, "step one\nstep two", 3)

	want := `<details type="reasoning" done="true" duration="3">
<summary>Thought for 3 seconds</summary>
> step one
> step two
</details>`
	assert.Equal(t, want, Serialize(b))
}

func TestSerialize_SingularSecond(t *testing.T) {
	b := closedReasoningBlock(t, "quick", 1)

	assert.Contains(t, Serialize(b), "<summary>Thought for 1 second</summary>")
	assert.Contains(t, Serialize(b), `duration="1"`)
}

func TestSerialize_OpenBlockShowsProgressIndicator(t *testing.T) {
	b := newBlock(KindReasoning, DefaultTagPairs[0], time.Now())
	b.append("still going")

	out := Serialize(b)
	assert.Contains(t, out, `done="false"`)
	assert.Contains(t, out, "<summary>Thinking…</summary>")
	assert.NotContains(t, out, "duration=")
	assert.Contains(t, out, "> still going")
}

func TestSerialize_AlreadyQuotedLinesUntouched(t *testing.T) {
	b := closedReasoningBlock(t, "> a quote\nnormal line", 2)

	out := Serialize(b)
	assert.Contains(t, out, "\n> a quote\n")
	assert.Contains(t, out, "\n> normal line\n")
	assert.NotContains(t, out, "> > a quote")
}

func TestSerializeAll_AdjacentReasoningBlocksNeverMerged(t *testing.T) {
	a := closedReasoningBlock(t, "first", 1)
	b := closedReasoningBlock(t, "second", 2)

	out := SerializeAll([]*Block{a, b})
	assert.Equal(t, 2, strings.Count(out, "<details "))
	assert.Equal(t, 2, strings.Count(out, "</details>"))
	assert.Contains(t, out, "</details>\n\n<details ")
}

func TestSerializeAll_StreamOrderPreserved(t *testing.T) {
	seg := NewSegmenter(DefaultTagTable())
	seg.Feed("<think>why</think>because")
	seg.Finish()

	out := SerializeAll(seg.Blocks())
	require.Contains(t, out, "> why")
	idx := len(out) - len("because")
	assert.Equal(t, "because", out[idx:])
}
