package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avolkv/headsup/internal/model"
	"github.com/avolkv/headsup/internal/progress"
)

// achievementsView is the scrollable achievements screen.
type achievementsView struct {
	table    table.Model
	progress model.Progress
	width    int
	height   int
}

func newAchievementsView() achievementsView {
	columns := []table.Column{
		{Title: "", Width: 2},
		{Title: "Achievement", Width: 20},
		{Title: "Description", Width: 50},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(12),
		table.WithFocused(true),
	)
	t.SetStyles(achievementsTableStyles())
	return achievementsView{table: t}
}

func achievementsTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (v *achievementsView) load(p model.Progress) {
	v.progress = p
	rows := make([]table.Row, 0, len(progress.DefaultAchievements()))
	for _, a := range progress.DefaultAchievements() {
		mark := " "
		if p.HasUnlocked(a.ID) {
			mark = "✓"
		}
		rows = append(rows, table.Row{mark, a.Name, a.Description})
	}
	v.table.SetRows(rows)
}

func (v *achievementsView) resize(width, height int) {
	v.width = width
	v.height = height
	if height > 6 {
		v.table.SetHeight(height - 6)
	}
	if width > 8 {
		v.table.SetWidth(width - 4)
	}
}

func (v *achievementsView) update(msg tea.KeyMsg) {
	v.table, _ = v.table.Update(msg)
}

func (v *achievementsView) view(width, height int) string {
	p := v.progress
	unlocked := len(p.Unlocked)
	total := len(progress.DefaultAchievements())
	header := fmt.Sprintf("Achievements  %d/%d unlocked  ·  Lv %d  ·  %d XP lifetime  ·  best %d WPM",
		unlocked, total, p.Level, p.TotalXP, p.BestWPM)
	content := footerStyle.Render(header) + "\n\n" + v.table.View() +
		"\n\n" + footerStyle.Render("esc back · ctrl+a close")
	if width == 0 || height == 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
