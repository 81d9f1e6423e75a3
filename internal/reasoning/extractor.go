package reasoning

import "strings"

// FilterMode selects what Filter does with wrappers of the given kinds.
type FilterMode int

const (
	// ModeRemove deletes matching wrappers and keeps everything else.
	ModeRemove FilterMode = iota
	// ModeKeepOnly keeps only matching wrappers and drops everything else.
	ModeKeepOnly
)

// Filter selects or removes collapsible wrappers by declared type. It scans
// the serializer's own line-oriented grammar rather than pattern-matching
// untrusted text: a wrapper is an opening line carrying a type attribute,
// followed by lines up to a bare closing line. A wrapper that never closes
// is not a wrapper and is left verbatim. Filter is pure and idempotent:
// filtering already-filtered output with the same arguments is a no-op.
func Filter(markup string, kinds []string, mode FilterMode) string {
	kindSet := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}

	lines := strings.Split(markup, "\n")
	var surviving []string // ModeRemove output lines
	var selected []string  // ModeKeepOnly wrapper texts

	i := 0
	for i < len(lines) {
		typ, ok := parseWrapperOpen(lines[i])
		if !ok {
			if mode == ModeRemove {
				surviving = append(surviving, lines[i])
			}
			i++
			continue
		}

		closeIdx := -1
		for j := i + 1; j < len(lines); j++ {
			if lines[j] == detailsClose {
				closeIdx = j
				break
			}
		}
		if closeIdx == -1 {
			// Truncated wrapper: best-effort, treat the line as content.
			if mode == ModeRemove {
				surviving = append(surviving, lines[i])
			}
			i++
			continue
		}

		matched := kindSet[typ]
		switch mode {
		case ModeRemove:
			if !matched {
				surviving = append(surviving, lines[i:closeIdx+1]...)
			}
		case ModeKeepOnly:
			if matched {
				selected = append(selected, strings.Join(lines[i:closeIdx+1], "\n"))
			}
		}
		i = closeIdx + 1
	}

	if mode == ModeKeepOnly {
		return strings.Join(selected, "\n\n")
	}
	return normalizeBlankLines(strings.Join(surviving, "\n"))
}

// parseWrapperOpen recognizes a canonical wrapper opening line and returns
// its declared type.
func parseWrapperOpen(line string) (string, bool) {
	if !strings.HasPrefix(line, detailsOpenPrefix) || !strings.HasSuffix(line, ">") {
		return "", false
	}
	rest := line[len(detailsOpenPrefix):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// normalizeBlankLines collapses runs of whitespace-only lines left behind by
// wrapper removal into a single blank line and trims the edges. Applying it
// twice changes nothing.
func normalizeBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blankRun := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankRun = true
			continue
		}
		if blankRun && len(out) > 0 {
			out = append(out, "")
		}
		blankRun = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
