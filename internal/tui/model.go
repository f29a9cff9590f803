package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avolkv/headsup/internal/engine"
	"github.com/avolkv/headsup/internal/event"
	"github.com/avolkv/headsup/internal/gaze"
	"github.com/avolkv/headsup/internal/generator"
	"github.com/avolkv/headsup/internal/model"
	"github.com/avolkv/headsup/internal/penalty"
	"github.com/avolkv/headsup/internal/progress"
	"github.com/avolkv/headsup/internal/state"
	"github.com/avolkv/headsup/internal/store"
)

const flashDuration = 150 * time.Millisecond

// busMsg carries a bus event into the Bubble Tea loop.
type busMsg struct {
	topic   event.Topic
	payload any
}

// flashOffMsg clears the penalty flash overlay.
type flashOffMsg struct{}

// cameraMsg reports the outcome of an async camera enable.
type cameraMsg struct {
	ok  bool
	err error
}

type screen int

const (
	screenPractice screen = iota
	screenAchievements
)

// Deps bundles the owned instances the TUI consumes. Everything is injected;
// the model creates nothing global.
type Deps struct {
	Bus        *event.Bus
	States     *state.Store
	DB         *store.Store
	Engine     *engine.Engine
	Detector   *gaze.Detector
	Penalties  *penalty.Manager
	Reconciler *progress.Reconciler
	Gen        *generator.Generator
	Words      []string
	Practice   model.PracticeConfig
	Settings   model.Settings
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	deps     Deps
	events   chan tea.Msg
	unsubs   []func()
	input    []rune
	width    int
	height   int
	screen   screen
	flashing bool

	stats       engine.Stats
	lookingDown bool
	onCooldown  bool
	cameraOn    bool
	cameraErr   string
	notice      string

	achievements achievementsView
}

// NewModel constructs the practice TUI and wires it to the bus.
func NewModel(deps Deps) *Model {
	m := &Model{
		deps:         deps,
		events:       make(chan tea.Msg, 64),
		achievements: newAchievementsView(),
	}
	for _, topic := range []event.Topic{
		event.TopicPenaltyApplied,
		event.TopicPenaltyFlash,
		event.TopicPenaltySound,
		event.TopicCooldownEnded,
		event.TopicLookingDown,
		event.TopicLookingUp,
		event.TopicLevelUp,
		event.TopicAchievementUnlocked,
		event.TopicCameraState,
	} {
		m.unsubs = append(m.unsubs, deps.Bus.On(topic, m.forward(topic)))
	}
	m.cameraOn = deps.Detector.IsEnabled()
	m.newExercise()
	return m
}

// forward pushes a bus event into the Bubble Tea loop without blocking the
// emitter. Overflow drops the event; the UI only loses a repaint hint.
func (m *Model) forward(topic event.Topic) event.Handler {
	return func(payload any) {
		select {
		case m.events <- busMsg{topic: topic, payload: payload}:
		default:
		}
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.achievements.resize(msg.Width, msg.Height)
		return m, nil
	case busMsg:
		return m.handleBusMsg(msg)
	case flashOffMsg:
		m.flashing = false
		return m, nil
	case cameraMsg:
		m.cameraOn = msg.ok
		if msg.err != nil {
			m.cameraErr = msg.err.Error()
			m.notice = "camera unavailable; typing practice still works"
		} else {
			m.cameraErr = ""
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleBusMsg(msg busMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.waitForEvent()}
	switch msg.topic {
	case event.TopicPenaltyApplied:
		m.onCooldown = true
	case event.TopicCooldownEnded:
		m.onCooldown = false
	case event.TopicPenaltyFlash:
		if m.deps.Settings.FlashEnabled {
			m.flashing = true
			cmds = append(cmds, tea.Tick(flashDuration, func(time.Time) tea.Msg {
				return flashOffMsg{}
			}))
		}
	case event.TopicPenaltySound:
		if m.deps.Settings.SoundEnabled {
			bell()
		}
	case event.TopicLookingDown:
		m.lookingDown = true
	case event.TopicLookingUp:
		m.lookingDown = false
	case event.TopicLevelUp:
		if p, ok := msg.payload.(event.LevelUpPayload); ok {
			m.notice = fmt.Sprintf("Level up! Now level %d", p.Level)
			if m.deps.Settings.SoundEnabled {
				bell()
			}
		}
	case event.TopicAchievementUnlocked:
		if p, ok := msg.payload.(event.AchievementPayload); ok {
			m.notice = fmt.Sprintf("Achievement unlocked: %s", p.Name)
		}
	case event.TopicCameraState:
		if p, ok := msg.payload.(event.CameraStatePayload); ok {
			m.cameraOn = p.Enabled
			m.cameraErr = p.Err
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.shutdown()
		return m, tea.Quit
	case tea.KeyCtrlA:
		m.toggleAchievements()
		return m, nil
	case tea.KeyCtrlS:
		m.deps.Settings.SoundEnabled = !m.deps.Settings.SoundEnabled
		m.persistSettings()
		return m, nil
	case tea.KeyCtrlF:
		m.deps.Settings.FlashEnabled = !m.deps.Settings.FlashEnabled
		m.persistSettings()
		return m, nil
	case tea.KeyCtrlK:
		m.deps.Settings.KeyboardVisible = !m.deps.Settings.KeyboardVisible
		m.persistSettings()
		return m, nil
	case tea.KeyCtrlG:
		return m, m.toggleCamera()
	}

	if m.screen == screenAchievements {
		if msg.Type == tea.KeyEsc {
			m.screen = screenPractice
			return m, nil
		}
		m.achievements.update(msg)
		return m, nil
	}

	switch msg.Type {
	case tea.KeyTab:
		m.newExercise()
		return m, nil
	case tea.KeyEsc:
		m.input = nil
		m.notice = ""
		m.deps.Engine.Reset()
		m.stats = m.deps.Engine.Stats()
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		if len(m.input) > 0 && !m.deps.Engine.IsComplete() {
			m.input = m.input[:len(m.input)-1]
			m.processInput()
		}
		return m, nil
	case tea.KeySpace:
		m.handleRunes([]rune{' '})
		return m, nil
	case tea.KeyRunes:
		m.handleRunes(msg.Runes)
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleRunes(runes []rune) {
	if m.deps.Engine.IsComplete() {
		return
	}
	for _, r := range runes {
		if len(m.input) >= len([]rune(m.deps.Engine.Reference())) {
			break
		}
		m.input = append(m.input, r)
		res := m.processInput()
		if !res.Correct && res.Appended && m.deps.Settings.SoundEnabled {
			bell()
		}
		if m.deps.Engine.IsComplete() {
			m.notice = fmt.Sprintf("Done! %d WPM · %d%% accuracy · press Tab for next",
				m.stats.WPM, m.stats.Accuracy)
			break
		}
	}
}

func (m *Model) processInput() engine.Result {
	res := m.deps.Engine.ProcessInput(string(m.input))
	m.stats = res.Stats
	return res
}

func (m *Model) newExercise() {
	text := m.deps.Gen.Text(m.deps.Words, m.deps.Practice)
	m.input = nil
	m.notice = ""
	m.deps.Engine.SetText(text)
	m.stats = m.deps.Engine.Stats()
}

func (m *Model) toggleAchievements() {
	if m.screen == screenAchievements {
		m.screen = screenPractice
		return
	}
	m.achievements.load(m.deps.Reconciler.Progress())
	m.screen = screenAchievements
}

func (m *Model) toggleCamera() tea.Cmd {
	if m.cameraOn {
		m.deps.Detector.Disable()
		m.cameraOn = false
		m.deps.Settings.CameraEnabled = false
		m.persistSettings()
		return nil
	}
	m.deps.Settings.CameraEnabled = true
	m.persistSettings()
	return func() tea.Msg {
		ok, err := m.deps.Detector.Enable(context.Background())
		return cameraMsg{ok: ok, err: err}
	}
}

// persistSettings writes settings immediately on every change, mirroring
// them into the state store for observers.
func (m *Model) persistSettings() {
	s := m.deps.Settings
	if err := m.deps.DB.SaveSettings(context.Background(), s); err != nil {
		logErrf("failed to save settings: %v\n", err)
	}
	m.deps.States.Update(map[string]any{
		"settings.soundEnabled":    s.SoundEnabled,
		"settings.flashEnabled":    s.FlashEnabled,
		"settings.keyboardVisible": s.KeyboardVisible,
		"settings.cameraEnabled":   s.CameraEnabled,
		"settings.currentMode":     s.CurrentMode,
	})
}

func (m *Model) shutdown() {
	if m.cameraOn {
		m.deps.Detector.Disable()
	}
	for _, off := range m.unsubs {
		off()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.screen == screenAchievements {
		return m.achievements.view(m.width, m.height)
	}

	states := m.deps.Engine.CharacterStates()
	if len(states) == 0 {
		return ""
	}
	styled := buildStyledRunes(states)
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(styled)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapStyledRunes(styled, contentWidth)
	if m.flashing {
		wrapped = flashStyle.Render("LOOK UP!") + "\n\n" + wrapped
	}
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)

	if m.deps.Settings.KeyboardVisible {
		content += "\n\n" + renderKeyboard(m.nextChar())
	}

	footer := m.renderFooter()
	if footer == "" || m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 2
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	noticeLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footerStyle.Render(m.notice))
	return body + "\n" + noticeLine + "\n" + footerLine
}

func (m *Model) nextChar() rune {
	for _, cs := range m.deps.Engine.CharacterStates() {
		if cs.State == engine.StateCurrent {
			return cs.Char
		}
	}
	return 0
}

func (m *Model) renderFooter() string {
	p := m.deps.Reconciler.Progress()
	segments := []string{
		fmt.Sprintf("%d WPM · %d%%", m.stats.WPM, m.stats.Accuracy),
		fmt.Sprintf("Progress %d%%", m.stats.ProgressPercent),
		fmt.Sprintf("Lv %d · %d/%d XP", p.Level, p.XP, p.Level*100),
	}
	if m.cameraOn {
		look := "eyes up"
		if m.lookingDown {
			look = "LOOKING DOWN"
		}
		seg := fmt.Sprintf("cam on · %s · %d penalties", look, m.deps.Penalties.Count())
		if m.onCooldown {
			seg += " · cooldown"
		}
		segments = append(segments, seg)
	} else if m.cameraErr != "" {
		segments = append(segments, "cam error")
	} else {
		segments = append(segments, "cam off")
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.lookingDown {
		footer = warnStyle.Render("▼ ") + footer
	}
	return footer
}

// bell rings the terminal bell; the audio collaborator is fire-and-forget.
func bell() {
	if _, err := fmt.Fprint(os.Stderr, "\a"); err != nil {
		// Best-effort audio.
		_ = err
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
