package sanitizer

import (
	"strings"
	"sync"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"dedup keeps first occurrence order", "A\nB\nA\nC\nB", "A\nB\nC"},
		{"marker extraction", "Prompt after formatting:\nsome preamble\nAnswer:\n  Hello\nHello", "Hello"},
		{"no marker fallback", "line1\nline1\nline2", "line1\nline2"},
		{"escape codes", "\x1b[31mRed\x1b[0m", "Red"},
		{"only escape codes", "\x1b[1m\x1b[0m", ""},
		{"single byte escape", "\x1bMtext", "text"},
		{"whitespace only", " \n\t ", ""},
		{"unicode spaces trimmed", "\u00a0\u2003Rash\u3000", "Rash"},
		{"ascii separators kept", "\x1cRash\x1f", "\x1cRash\x1f"},
		{"answer marker inline", "Question: rash?\nAnswer: Apply emollients.", "Apply emollients."},
		{"first answer marker wins", "Answer: one\nAnswer: two", "one\nAnswer: two"},
		{"marker is case sensitive", "answer: lower", "answer: lower"},
		{"preamble removed up to first newline", "Prompt after formatting: x\nkeep\nkeep", "keep"},
		{"every preamble removed", "Prompt after formatting:\nA\nPrompt after formatting:\nB", "A\nB"},
		{"preamble without newline kept", "Prompt after formatting: no newline", "Prompt after formatting: no newline"},
		{
			"verbose chain output",
			"\x1b[1m> Entering new chain...\x1b[0m\nPrompt after formatting:\n\x1b[32;1mContext...\x1b[0m\nAnswer: Use sunscreen daily.\nUse sunscreen daily.\nReapply every two hours.",
			"Use sunscreen daily.\nReapply every two hours.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean_NoEscapeBytes(t *testing.T) {
	got := Clean("before \x1b[31mRed\x1b[0m after")
	if !strings.Contains(got, "Red") {
		t.Errorf("expected Red in %q", got)
	}
	if strings.ContainsRune(got, '\x1b') {
		t.Errorf("escape byte left in %q", got)
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"A\nB\nA\nC\nB",
		"Prompt after formatting:\nsome preamble\nAnswer:\n  Hello\nHello",
		"\x1b[31mRed\x1b[0m\nRed\nGreen",
		"  padded\n\nblank lines\n\n",
	}
	for _, in := range inputs {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestClean_Concurrent(t *testing.T) {
	const in = "Answer: a\na\nb"
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Clean(in); got != "a\nb" {
				t.Errorf("Clean = %q", got)
			}
		}()
	}
	wg.Wait()
}

func TestDedupLines_KeepsOneBlankLine(t *testing.T) {
	if got := DedupLines("a\n\nb\n\nc"); got != "a\n\nb\nc" {
		t.Errorf("DedupLines = %q", got)
	}
}
