// Package sanitizer turns raw language model output into the answer text that
// is returned to callers.
package sanitizer

import (
	"regexp"
	"strings"
)

var (
	// ESC followed by a single Fe byte, or a CSI sequence.
	ansiEscape = regexp.MustCompile(`\x1B(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

	// echoed by verbose chains before the formatted prompt
	promptPreamble = regexp.MustCompile(`(?s)Prompt after formatting:.*?\n`)

	answerMarker = regexp.MustCompile(`(?s)Answer:\s*(.*)`)
)

// Clean strips terminal escape codes and echoed prompt scaffolding, keeps only
// the text after the first "Answer:" marker when there is one, and drops
// repeated lines. It is safe for concurrent use and never panics.
func Clean(text string) string {
	text = StripANSI(text)
	text = StripPromptPreamble(text)
	text = ExtractAnswer(text)
	return DedupLines(text)
}

// StripANSI removes escape codes and trims Unicode white space. The ASCII
// separators \x1c to \x1f are not white space and are kept.
func StripANSI(text string) string {
	return strings.TrimSpace(ansiEscape.ReplaceAllString(text, ""))
}

func StripPromptPreamble(text string) string {
	return promptPreamble.ReplaceAllString(text, "")
}

// ExtractAnswer returns everything after the first "Answer:" marker, or text
// unchanged when the marker is absent.
func ExtractAnswer(text string) string {
	m := answerMarker.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	return strings.TrimSpace(m[1])
}

// DedupLines keeps the first occurrence of every line, in order.
func DedupLines(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	seen := make(map[string]struct{}, len(lines))
	kept := lines[:0]
	for _, line := range lines {
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
