// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/avolkv/headsup/internal/engine"
)

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	flashStyle     = lipgloss.NewStyle().Background(lipgloss.Color("#8B0000")).Foreground(lipgloss.Color("#FFFFFF"))
	keycapStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	keycapNext     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes renders the engine's character states into styled cells.
// Mistyped spaces show a bullet so the error stays visible.
func buildStyledRunes(states []engine.CharacterState) []styledRune {
	out := make([]styledRune, 0, len(states))
	for _, cs := range states {
		displayed := cs.Char
		var style lipgloss.Style
		switch cs.State {
		case engine.StateCorrect:
			style = correctStyle
		case engine.StateIncorrect:
			style = incorrectStyle
			if cs.Char == ' ' {
				displayed = '•'
			}
		case engine.StateCurrent:
			style = currentStyle
		default:
			style = pendingStyle
		}
		out = append(out, styledRune{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: cs.Char == ' ',
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes word-wraps styled cells to the given display width.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}

var keyboardRows = []string{
	"q w e r t y u i o p",
	"a s d f g h j k l ;",
	"z x c v b n m , . /",
}

// renderKeyboard draws the on-screen keyboard with the expected key
// highlighted.
func renderKeyboard(next rune) string {
	target := strings.ToLower(string(next))
	var rows []string
	for _, row := range keyboardRows {
		var b strings.Builder
		for i, key := range strings.Split(row, " ") {
			if i > 0 {
				b.WriteString(" ")
			}
			if key == target {
				b.WriteString(keycapNext.Render(key))
			} else {
				b.WriteString(keycapStyle.Render(key))
			}
		}
		rows = append(rows, b.String())
	}
	if next == ' ' {
		rows = append(rows, keycapNext.Render("[space]"))
	} else {
		rows = append(rows, keycapStyle.Render("[space]"))
	}
	return strings.Join(rows, "\n")
}
