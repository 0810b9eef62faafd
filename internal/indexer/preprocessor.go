package indexer

import (
	"strings"
	"unicode"
)

// CleanText tidies extracted resume text before it is stored. Control characters and
// U+FFFD left by PDF and DOCX extraction are dropped, runs of spaces and tabs become
// one space, and more than one blank line in a row collapses to a single blank line.
// Line structure is kept for snippets and explanations.
func CleanText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = cleanLine(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func cleanLine(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	wasSpace := false
	for _, r := range line {
		switch {
		case r == unicode.ReplacementChar:
			continue
		case unicode.IsSpace(r):
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		case unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}
