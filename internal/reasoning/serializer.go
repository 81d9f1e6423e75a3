package reasoning

import (
	"fmt"
	"strings"
)

// Canonical wrapper grammar tokens. The extractor parses exactly what the
// serializer emits, so these are shared constants.
const (
	detailsOpenPrefix = `<details type="`
	detailsClose      = "</details>"

	// WrapperTypeReasoning is the declared type of reasoning wrappers.
	WrapperTypeReasoning = "reasoning"
)

// Serialize renders one block as markup. Plain blocks are their content
// verbatim. Reasoning blocks become a collapsible section carrying the
// declared type, a done flag and, once done, a duration annotation. Two
// reasoning blocks are never merged: each block is one wrapper.
func Serialize(b *Block) string {
	if b.Kind != KindReasoning {
		return b.Content()
	}

	var sb strings.Builder
	if b.Done {
		secs := b.DurationSeconds()
		fmt.Fprintf(&sb, "<details type=%q done=\"true\" duration=\"%d\">\n", WrapperTypeReasoning, secs)
		fmt.Fprintf(&sb, "<summary>%s</summary>\n", durationPhrase(secs))
	} else {
		fmt.Fprintf(&sb, "<details type=%q done=\"false\">\n", WrapperTypeReasoning)
		sb.WriteString("<summary>Thinking…</summary>\n")
	}
	sb.WriteString(quoteLines(b.Content()))
	sb.WriteString("\n")
	sb.WriteString(detailsClose)
	return sb.String()
}

// SerializeAll renders the block sequence, blocks separated by blank lines.
func SerializeAll(blocks []*Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if out := Serialize(b); out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, "\n\n")
}

// durationPhrase renders the human annotation, singular only at n == 1.
func durationPhrase(n int) string {
	if n == 1 {
		return "Thought for 1 second"
	}
	return fmt.Sprintf("Thought for %d seconds", n)
}

// quoteLines prefixes each content line with "> ", preserving line breaks.
// Lines already quoted are left alone so re-serialization stays stable.
func quoteLines(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, ">") {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}
