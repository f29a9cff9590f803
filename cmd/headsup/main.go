// Package main provides the CLI entrypoint for headsup.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/avolkv/headsup/internal/config"
	"github.com/avolkv/headsup/internal/engine"
	"github.com/avolkv/headsup/internal/event"
	"github.com/avolkv/headsup/internal/gaze"
	"github.com/avolkv/headsup/internal/generator"
	"github.com/avolkv/headsup/internal/model"
	"github.com/avolkv/headsup/internal/penalty"
	"github.com/avolkv/headsup/internal/progress"
	"github.com/avolkv/headsup/internal/state"
	"github.com/avolkv/headsup/internal/stats"
	"github.com/avolkv/headsup/internal/store"
	"github.com/avolkv/headsup/internal/tui"
	"github.com/avolkv/headsup/internal/wordlist"
)

const (
	defaultLang        = "en"
	defaultWords       = 25
	defaultCaps        = 0.2
	defaultPunct       = 0.2
	defaultCooldownMs  = 2000
	defaultCurveWindow = 20
)

const defaultPunctSet = ".,!?;:\"'()-"

var (
	practiceLang     string
	practiceWords    int
	practiceCaps     float64
	practicePunct    float64
	practicePunctSet string

	trackingEnabled    bool
	trackingReplayFile string
	pitchThreshold     float64
	gazeThreshold      float64
	smoothingFactor    float64
	cooldownMs         int

	statsLast        int
	statsCurveWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "headsup",
		Short:         "Typing trainer that keeps your eyes on the screen",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "language code (default: en)")
	rootCmd.Flags().IntVar(&practiceWords, "words", defaultWords, "words per text")
	rootCmd.Flags().Float64Var(&practiceCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	rootCmd.Flags().Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	rootCmd.Flags().StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	rootCmd.Flags().BoolVar(&trackingEnabled, "camera", false, "enable look-down tracking at startup")
	rootCmd.Flags().StringVar(&trackingReplayFile, "replay-file", "", "play gaze samples from a JSONL file instead of a camera")
	rootCmd.Flags().Float64Var(&pitchThreshold, "look-down-threshold", gaze.DefaultThresholds().Pitch, "head pitch threshold in degrees")
	rootCmd.Flags().Float64Var(&gazeThreshold, "gaze-threshold", gaze.DefaultThresholds().Gaze, "vertical gaze threshold (0-1)")
	rootCmd.Flags().Float64Var(&smoothingFactor, "smoothing", gaze.DefaultConfig().SmoothingFactor, "EMA weight of the newest sample (0-1]")
	rootCmd.Flags().IntVar(&cooldownMs, "cooldown-ms", defaultCooldownMs, "penalty cooldown in milliseconds")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyFloatConfig(cmd, "caps", &practiceCaps, fileCfg.Practice.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, fileCfg.Practice.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, fileCfg.Practice.PunctSet)
	applyBoolConfig(cmd, "camera", &trackingEnabled, fileCfg.Tracking.Enabled)
	applyStringConfig(cmd, "replay-file", &trackingReplayFile, fileCfg.Tracking.ReplayFile)
	applyFloatConfig(cmd, "look-down-threshold", &pitchThreshold, fileCfg.Tracking.PitchThreshold)
	applyFloatConfig(cmd, "gaze-threshold", &gazeThreshold, fileCfg.Tracking.GazeThreshold)
	applyFloatConfig(cmd, "smoothing", &smoothingFactor, fileCfg.Tracking.SmoothingFactor)
	applyIntConfig(cmd, "cooldown-ms", &cooldownMs, fileCfg.Tracking.CooldownMs)

	practiceCfg := model.PracticeConfig{
		Lang:     practiceLang,
		Words:    practiceWords,
		CapsPct:  practiceCaps,
		PunctPct: practicePunct,
		PunctSet: practicePunctSet,
	}
	if err := validatePractice(practiceCfg); err != nil {
		return err
	}

	words, err := wordlist.LoadWordsOrDefault(config.DefaultWordListPath(practiceCfg.Lang))
	if err != nil {
		return fmt.Errorf("failed to load word list: %w", err)
	}

	db, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	settings := db.LoadSettings(context.Background())

	bus := event.NewBus()
	states := state.New(map[string]any{
		"settings.soundEnabled":    settings.SoundEnabled,
		"settings.flashEnabled":    settings.FlashEnabled,
		"settings.keyboardVisible": settings.KeyboardVisible,
		"settings.cameraEnabled":   settings.CameraEnabled,
		"settings.currentMode":     settings.CurrentMode,
	})

	eng := engine.New(bus)

	detectorCfg := gaze.Config{
		Thresholds:      gaze.Thresholds{Pitch: pitchThreshold, Gaze: gazeThreshold},
		SmoothingFactor: smoothingFactor,
	}
	var sensor gaze.Sensor
	if trackingReplayFile != "" {
		sensor = gaze.NewReplaySensor(trackingReplayFile)
	}
	detector := gaze.NewDetector(bus, sensor, detectorCfg)

	penaltyCfg := penalty.DefaultConfig()
	penaltyCfg.Cooldown = time.Duration(cooldownMs) * time.Millisecond
	penaltyCfg.ShowFlash = boolOr(fileCfg.Tracking.ShowFlash, penaltyCfg.ShowFlash)
	penaltyCfg.PlaySound = boolOr(fileCfg.Tracking.PlaySound, penaltyCfg.PlaySound)
	penalties := penalty.New(bus, penaltyCfg)

	reconciler := progress.New(bus, states, db)

	if trackingEnabled || settings.CameraEnabled {
		if sensor == nil {
			logErrf("look tracking requested but no sensor configured; use --replay-file\n")
		} else if ok, err := detector.Enable(context.Background()); !ok && err != nil {
			logErrf("look tracking unavailable: %v\n", err)
		}
	}

	deps := tui.Deps{
		Bus:        bus,
		States:     states,
		DB:         db,
		Engine:     eng,
		Detector:   detector,
		Penalties:  penalties,
		Reconciler: reconciler,
		Gen:        generator.New(),
		Words:      words,
		Practice:   practiceCfg,
		Settings:   settings,
	}
	program := tea.NewProgram(tui.NewModel(deps), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show lifetime progress and recent sessions",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	db, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	p := db.LoadProgress(ctx)
	entries, err := db.ListHistory(ctx, statsLast)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if err := stats.RenderSummary(cmd.OutOrStdout(), p, entries, statsCurveWindow); err != nil {
		return fmt.Errorf("failed to render stats: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# headsup configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# lang = "en"                 # Language code (default %q)
# words = %d                  # Words per text
# caps = %.2f                 # Probability of capitalized first letter (0-1)
# punct = %.2f                # Punctuation probability per word (0-1)
# punct-set = %q    # Punctuation set

[tracking]
# enabled = false             # Enable look-down tracking at startup
# replay-file = ""            # Play gaze samples from a JSONL file
# look-down-threshold = %.1f  # Head pitch threshold in degrees
# gaze-threshold = %.2f       # Vertical gaze threshold (0-1)
# smoothing = %.1f            # EMA weight of the newest sample (0-1]
# cooldown-ms = %d            # Penalty cooldown in milliseconds
# flash = true                # Flash the screen on a penalty
# sound = true                # Ring the terminal bell on a penalty
`,
		defaultLang,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		gaze.DefaultThresholds().Pitch,
		gaze.DefaultThresholds().Gaze,
		gaze.DefaultConfig().SmoothingFactor,
		defaultCooldownMs,
	)
}

func validatePractice(cfg model.PracticeConfig) error {
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
