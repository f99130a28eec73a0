package tui

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapTextBasic(t *testing.T) {
	lines := wrapText("the quick brown fox jumps", 10)
	want := []string{"the quick", "brown fox", "jumps"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestWrapTextPreservesParagraphs(t *testing.T) {
	lines := wrapText("first\n\nsecond", 20)
	want := []string{"first", "", "second"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestWrapTextBreaksLongWords(t *testing.T) {
	lines := wrapText("abcdefghij", 4)
	if len(lines) != 3 {
		t.Fatalf("expected 3 chunks, got %v", lines)
	}
	for _, line := range lines {
		if runewidth.StringWidth(line) > 4 {
			t.Fatalf("chunk %q exceeds width", line)
		}
	}
}

func TestWrapTextWideRunes(t *testing.T) {
	// CJK runes are double-width; four of them need width 8.
	lines := wrapText("你好世界", 4)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lines)
	}
	for _, line := range lines {
		if runewidth.StringWidth(line) > 4 {
			t.Fatalf("line %q exceeds width", line)
		}
	}
}

func TestWrapTextMinimumWidth(t *testing.T) {
	lines := wrapText("ab", 0)
	if len(lines) != 2 {
		t.Fatalf("width 0 must clamp to 1, got %v", lines)
	}
}
