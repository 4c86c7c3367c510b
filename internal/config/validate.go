package config

import (
	"fmt"
	"strings"

	"github.com/leonardotrapani/voicelink/internal/language"
)

func (c *Config) Validate() error {
	if err := c.ToRecordingConfig().Validate(); err != nil {
		return fmt.Errorf("invalid recording: %w", err)
	}

	switch c.Engine.Provider {
	case "deepgram":
		if c.ResolveAPIKey("deepgram") == "" {
			return fmt.Errorf("Deepgram API key required: not found in config (providers.deepgram.api_key) or environment variable (DEEPGRAM_API_KEY)")
		}
	case "":
		return fmt.Errorf("invalid engine.provider: empty")
	default:
		return fmt.Errorf("unsupported engine.provider: %s (must be deepgram)", c.Engine.Provider)
	}
	if c.Engine.Language != "" && !language.ValidTag(c.Engine.Language) {
		return fmt.Errorf("invalid engine.language: %s (use a BCP 47 tag like 'en-US' or 'es')", c.Engine.Language)
	}

	if c.Session.RestartDelay < 0 {
		return fmt.Errorf("invalid session.restart_delay: %v", c.Session.RestartDelay)
	}
	if c.Session.ToggleStopCooldown < 0 {
		return fmt.Errorf("invalid session.toggle_stop_cooldown: %v", c.Session.ToggleStopCooldown)
	}
	if c.Session.ToggleStartCooldown < 0 {
		return fmt.Errorf("invalid session.toggle_start_cooldown: %v", c.Session.ToggleStartCooldown)
	}
	if c.Session.CopiedDuration <= 0 {
		return fmt.Errorf("invalid session.copied_duration: %v", c.Session.CopiedDuration)
	}
	if c.Session.SeenLimit <= 0 {
		return fmt.Errorf("invalid session.seen_limit: %d", c.Session.SeenLimit)
	}

	if err := c.validateTranslation(); err != nil {
		return err
	}

	switch c.Notifications.Type {
	case "desktop", "log", "none":
	default:
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}
	if c.Notifications.Duration <= 0 {
		return fmt.Errorf("invalid notifications.duration: %v", c.Notifications.Duration)
	}

	if c.Clipboard.Timeout <= 0 {
		return fmt.Errorf("invalid clipboard.timeout: %v", c.Clipboard.Timeout)
	}
	return nil
}

func (c *Config) validateTranslation() error {
	t := c.Translation
	if _, ok := language.ParseTarget(t.Target); !ok && t.Target != "" {
		return fmt.Errorf("invalid translation.target: %s (supported: %s)", t.Target, strings.Join(language.Codes(), ", "))
	}
	switch t.Provider {
	case "", "none":
	case "openai", "groq":
		if c.ResolveAPIKey(t.Provider) == "" {
			return fmt.Errorf("%s API key required for translation: not found in config (providers.%s.api_key) or environment variable (%s)",
				t.Provider, t.Provider, EnvVarForProvider(t.Provider))
		}
	default:
		return fmt.Errorf("unsupported translation.provider: %s (must be openai, groq, or none)", t.Provider)
	}
	if t.Debounce < 0 {
		return fmt.Errorf("invalid translation.debounce: %v", t.Debounce)
	}
	if t.Timeout <= 0 {
		return fmt.Errorf("invalid translation.timeout: %v", t.Timeout)
	}
	return nil
}
