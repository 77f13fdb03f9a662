package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("That's hello, but we want goodbye. Try again!", 16)
	for _, line := range strings.Split(got, "\n") {
		if runewidth.StringWidth(line) > 16 {
			t.Fatalf("line %q wider than 16", line)
		}
		if strings.HasPrefix(line, " ") {
			t.Fatalf("line %q starts with a space", line)
		}
	}
	if strings.ReplaceAll(got, "\n", " ") != "That's hello, but we want goodbye. Try again!" {
		t.Fatalf("wrap lost text: %q", got)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	got := wrapText("abcdefgh", 3)
	if got != "abc\ndef\ngh" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextWideRunes(t *testing.T) {
	got := wrapText("手話 手話", 4)
	if got != "手話\n手話" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextKeepsShortText(t *testing.T) {
	if got := wrapText("Good!", 40); got != "Good!" {
		t.Fatalf("unexpected wrap: %q", got)
	}
	if got := wrapText("Good!", 0); got != "Good!" {
		t.Fatalf("zero width should not wrap: %q", got)
	}
}

func TestBar(t *testing.T) {
	if got := bar(0.5, 4); got != "██░░" {
		t.Fatalf("unexpected bar: %q", got)
	}
	if got := bar(2, 3); got != "███" {
		t.Fatalf("bar should clamp: %q", got)
	}
	if got := bar(-1, 2); got != "░░" {
		t.Fatalf("bar should clamp: %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("Hello", 8); got != "Hello   " {
		t.Fatalf("unexpected pad: %q", got)
	}
	if got := padRight("Good morning", 4); runewidth.StringWidth(got) != 4 {
		t.Fatalf("expected truncation to 4 cells, got %q", got)
	}
}
