package tui

import (
	"strings"
	"testing"

	"github.com/avolkv/headsup/internal/engine"
	"github.com/avolkv/headsup/internal/model"
)

func TestBuildStyledRunesStates(t *testing.T) {
	states := []engine.CharacterState{
		{Char: 'a', State: engine.StateCorrect},
		{Char: 'b', State: engine.StateIncorrect},
		{Char: 'c', State: engine.StateCurrent},
		{Char: 'd', State: engine.StatePending},
	}

	runes := buildStyledRunes(states)
	if len(runes) != 4 {
		t.Fatalf("expected 4 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style for second rune")
	}
	if runes[2].s != currentStyle.Render("c") {
		t.Fatalf("expected current style for third rune")
	}
	if runes[3].s != pendingStyle.Render("d") {
		t.Fatalf("expected pending style for fourth rune")
	}
}

func TestBuildStyledRunesMistypedSpaceShowsBullet(t *testing.T) {
	states := []engine.CharacterState{
		{Char: ' ', State: engine.StateIncorrect},
	}

	runes := buildStyledRunes(states)
	if runes[0].s != incorrectStyle.Render("•") {
		t.Fatalf("expected bullet for mistyped space")
	}
	if !runes[0].isSpace {
		t.Fatalf("expected mistyped space to remain a wrap point")
	}
}

func TestWrapStyledRunesBreaksAtSpace(t *testing.T) {
	states := make([]engine.CharacterState, 0)
	for _, r := range "one two three" {
		states = append(states, engine.CharacterState{Char: r, State: engine.StatePending})
	}

	wrapped := wrapStyledRunes(buildStyledRunes(states), 7)
	lines := strings.Split(wrapped, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), wrapped)
	}
}

func TestWrapStyledRunesHardBreakWithoutSpaces(t *testing.T) {
	states := make([]engine.CharacterState, 0)
	for _, r := range "abcdefgh" {
		states = append(states, engine.CharacterState{Char: r, State: engine.StatePending})
	}

	wrapped := wrapStyledRunes(buildStyledRunes(states), 4)
	lines := strings.Split(wrapped, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
}

func TestWrapStyledRunesZeroWidthDisablesWrap(t *testing.T) {
	states := []engine.CharacterState{
		{Char: 'a', State: engine.StatePending},
		{Char: 'b', State: engine.StatePending},
	}

	wrapped := wrapStyledRunes(buildStyledRunes(states), 0)
	if strings.Contains(wrapped, "\n") {
		t.Fatalf("expected no line breaks for zero width")
	}
}

func TestRenderKeyboardHighlightsNextKey(t *testing.T) {
	out := renderKeyboard('f')
	if !strings.Contains(out, keycapNext.Render("f")) {
		t.Fatalf("expected next key to be highlighted")
	}
	if !strings.Contains(out, keycapStyle.Render("[space]")) {
		t.Fatalf("expected space bar rendered unhighlighted")
	}
}

func TestRenderKeyboardHighlightsSpace(t *testing.T) {
	out := renderKeyboard(' ')
	if !strings.Contains(out, keycapNext.Render("[space]")) {
		t.Fatalf("expected space bar highlighted")
	}
}

func TestAchievementsViewMarksUnlocked(t *testing.T) {
	v := newAchievementsView()
	p := model.DefaultProgress()
	p.Unlocked = []string{"first-session"}

	v.load(p)
	rows := v.table.Rows()
	if len(rows) == 0 {
		t.Fatalf("expected achievement rows")
	}
	if rows[0][0] != "✓" {
		t.Fatalf("expected first-session marked unlocked, got %q", rows[0][0])
	}
	if rows[1][0] != " " {
		t.Fatalf("expected locked achievement unmarked, got %q", rows[1][0])
	}
}
