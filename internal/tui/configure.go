package tui

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/leonardotrapani/voicelink/internal/config"
	"github.com/leonardotrapani/voicelink/internal/language"
	"github.com/muesli/termenv"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// AllProviders is the list of providers that take an API key
var AllProviders = []string{"deepgram", "openai", "groq"}

// providerDisplayNames maps provider IDs to human-readable names
var providerDisplayNames = map[string]string{
	"deepgram": "Deepgram",
	"openai":   "OpenAI",
	"groq":     "Groq",
}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionEngine        ConfigSection = "engine"
	SectionTranslation   ConfigSection = "translation"
	SectionProviders     ConfigSection = "providers"
	SectionKeywords      ConfigSection = "keywords"
	SectionNotifications ConfigSection = "notifications"
	SectionSession       ConfigSection = "session"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run starts the TUI configuration menu on a copy of existingConfig.
func Run(existingConfig *config.Config) (*ConfigureResult, error) {
	if existingConfig == nil {
		existingConfig = config.DefaultConfig()
	}
	cfg := cloneConfig(existingConfig)

	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(cfg)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case SectionSaveExit:
			fmt.Println(Summary(lipgloss.DefaultRenderer(), cfg))
			confirmed, err := confirmSave()
			if err != nil {
				return &ConfigureResult{Cancelled: true}, nil
			}
			if confirmed {
				return &ConfigureResult{Config: cfg, Cancelled: false}, nil
			}

		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil

		case SectionEngine:
			_ = editEngine(cfg)
		case SectionTranslation:
			_ = editTranslation(cfg)
		case SectionProviders:
			_ = editProviders(cfg)
		case SectionKeywords:
			if keywords, err := inputKeywords(cfg.Keywords); err == nil {
				cfg.Keywords = keywords
			}
		case SectionNotifications:
			_ = editNotifications(cfg)
		case SectionSession:
			_ = editSession(cfg)
		}
	}
}

// cloneConfig copies cfg deeply enough that edits never reach the caller's
// map or slice.
func cloneConfig(cfg *config.Config) *config.Config {
	c := *cfg
	c.Providers = make(map[string]config.ProviderConfig, len(cfg.Providers))
	for k, v := range cfg.Providers {
		c.Providers[k] = v
	}
	c.Keywords = slices.Clone(cfg.Keywords)
	return &c
}

func sectionOptions(cfg *config.Config) []huh.Option[ConfigSection] {
	return []huh.Option[ConfigSection]{
		huh.NewOption(fmt.Sprintf("Speech Engine (%s, %s)", cfg.Engine.Provider, orAuto(cfg.Engine.Language)), SectionEngine),
		huh.NewOption(fmt.Sprintf("Translation (%s)", targetName(cfg.Translation.Target)), SectionTranslation),
		huh.NewOption(fmt.Sprintf("Providers (%d configured)", len(getConfiguredProviders(cfg))), SectionProviders),
		huh.NewOption(fmt.Sprintf("Keywords (%d)", len(cfg.Keywords)), SectionKeywords),
		huh.NewOption(fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type), SectionNotifications),
		huh.NewOption("Session Timing", SectionSession),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(sectionOptions(cfg)...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}

	return selected, nil
}

func editEngine(cfg *config.Config) error {
	lang := cfg.Engine.Language
	continuous := cfg.Engine.Continuous
	interim := cfg.Engine.InterimResults
	model := cfg.Engine.Model

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Recognition language").
				Description("BCP 47 tag like en-US or es-ES; empty lets the engine detect it").
				Validate(func(s string) error {
					if s = strings.TrimSpace(s); s != "" && !language.ValidTag(s) {
						return fmt.Errorf("unknown language tag %q", s)
					}
					return nil
				}).
				Value(&lang),
			huh.NewInput().
				Title("Model").
				Value(&model),
			huh.NewConfirm().
				Title("Continuous listening?").
				Description("Keep the engine running across pauses").
				Value(&continuous),
			huh.NewConfirm().
				Title("Show interim results?").
				Description("Display provisional text while you speak").
				Value(&interim),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Engine.Language = strings.TrimSpace(lang)
	cfg.Engine.Model = strings.TrimSpace(model)
	cfg.Engine.Continuous = continuous
	cfg.Engine.InterimResults = interim
	return nil
}

func editTranslation(cfg *config.Config) error {
	target := cfg.Translation.Target
	provider := cfg.Translation.Provider
	if provider == "" {
		provider = "none"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Translate transcript into").
				Options(languageOptions(target)...).
				Value(&target),
			huh.NewSelect[string]().
				Title("Translation provider").
				Options(
					huh.NewOption("None", "none"),
					huh.NewOption("OpenAI", "openai"),
					huh.NewOption("Groq", "groq"),
				).
				Value(&provider),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Translation.Target = target
	cfg.Translation.Provider = provider
	return nil
}

// languageOptions lists "None" followed by every translation target,
// marking the current one.
func languageOptions(current string) []huh.Option[string] {
	label := "None"
	if current == "" {
		label += " (current)"
	}
	options := []huh.Option[string]{huh.NewOption(label, "")}
	for _, lang := range language.List() {
		label := fmt.Sprintf("%s - %s", lang.Name, lang.NativeName)
		if lang.Code == current {
			label += " (current)"
		}
		options = append(options, huh.NewOption(label, lang.Code))
	}
	return options
}

// getProviderDisplayName returns the display name for a provider
func getProviderDisplayName(providerName string) string {
	if name, ok := providerDisplayNames[providerName]; ok {
		return name
	}
	return providerName
}

// maskAPIKey returns a masked version of an API key for display
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// getConfiguredProviders returns the sorted providers with API keys
func getConfiguredProviders(cfg *config.Config) []string {
	var providers []string
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			providers = append(providers, name)
		}
	}
	sort.Strings(providers)
	return providers
}

func formatProviderOption(cfg *config.Config, name string) string {
	status := "(not configured)"
	if pc, ok := cfg.Providers[name]; ok && pc.APIKey != "" {
		status = fmt.Sprintf("(%s)", maskAPIKey(pc.APIKey))
	} else if env := config.EnvVarForProvider(name); env != "" && os.Getenv(env) != "" {
		status = fmt.Sprintf("(from %s)", env)
	}
	return fmt.Sprintf("%s %s", getProviderDisplayName(name), status)
}

func editProviders(cfg *config.Config) error {
	for {
		var options []huh.Option[string]
		for _, name := range AllProviders {
			options = append(options, huh.NewOption(formatProviderOption(cfg, name), name))
		}
		options = append(options, huh.NewOption("Done", "back"))

		var selected string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Provider Settings").
					Description("Select a provider to configure API key").
					Options(options...).
					Value(&selected),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			return err
		}
		if selected == "back" {
			return nil
		}

		var apiKey string
		keyForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("%s API key", getProviderDisplayName(selected))).
					Description("Leave empty to keep the current key").
					EchoMode(huh.EchoModePassword).
					Value(&apiKey),
			),
		).WithTheme(getTheme())
		if err := keyForm.Run(); err != nil {
			continue
		}

		if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
			cfg.Providers[selected] = config.ProviderConfig{APIKey: apiKey}
		}
	}
}

// parseKeywords splits a comma separated list, dropping blanks.
func parseKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func inputKeywords(current []string) ([]string, error) {
	value := strings.Join(current, ", ")
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Keywords").
				Description("Comma separated terms the engine should favour (names, jargon)").
				Value(&value),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return nil, err
	}
	return parseKeywords(value), nil
}

func editNotifications(cfg *config.Config) error {
	notifType := cfg.Notifications.Type
	duration := cfg.Notifications.Duration.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notification Type").
				Description("How should errors and session changes be shown?").
				Options(
					huh.NewOption("Desktop notifications (notify-send)", "desktop"),
					huh.NewOption("Log to console only", "log"),
					huh.NewOption("None (silent)", "none"),
				).
				Value(&notifType),
			huh.NewInput().
				Title("Notice duration").
				Description("How long an error notice stays in the status, e.g. 3s").
				Validate(validateDuration).
				Value(&duration),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Type = notifType
	cfg.Notifications.Duration, _ = time.ParseDuration(duration)
	return nil
}

func editSession(cfg *config.Config) error {
	restart := cfg.Session.RestartDelay.String()
	stopCooldown := cfg.Session.ToggleStopCooldown.String()
	startCooldown := cfg.Session.ToggleStartCooldown.String()
	debounce := cfg.Translation.Debounce.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Restart delay").Validate(validateDuration).Value(&restart),
			huh.NewInput().Title("Toggle cooldown after stop").Validate(validateDuration).Value(&stopCooldown),
			huh.NewInput().Title("Toggle cooldown after start").Validate(validateDuration).Value(&startCooldown),
			huh.NewInput().Title("Translation debounce").Validate(validateDuration).Value(&debounce),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Session.RestartDelay, _ = time.ParseDuration(restart)
	cfg.Session.ToggleStopCooldown, _ = time.ParseDuration(stopCooldown)
	cfg.Session.ToggleStartCooldown, _ = time.ParseDuration(startCooldown)
	cfg.Translation.Debounce, _ = time.ParseDuration(debounce)
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("use a duration like 300ms or 2s")
	}
	if d < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}

func confirmSave() (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

func orAuto(tag string) string {
	if tag == "" {
		return "auto-detect"
	}
	return language.TagLabel(tag)
}

func targetName(code string) string {
	if code == "" {
		return "off"
	}
	return language.FromCode(code).Name
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}
