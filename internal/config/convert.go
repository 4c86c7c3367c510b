package config

import (
	"os"

	"github.com/leonardotrapani/voicelink/internal/engine"
	"github.com/leonardotrapani/voicelink/internal/recording"
	"github.com/leonardotrapani/voicelink/internal/session"
	"github.com/leonardotrapani/voicelink/internal/translation"
)

// providerEnvVars maps provider names to the environment variable consulted
// when no key is configured.
var providerEnvVars = map[string]string{
	"deepgram": "DEEPGRAM_API_KEY",
	"openai":   "OPENAI_API_KEY",
	"groq":     "GROQ_API_KEY",
}

func EnvVarForProvider(name string) string {
	return providerEnvVars[name]
}

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		SampleRate:        c.Recording.SampleRate,
		Channels:          c.Recording.Channels,
		Format:            c.Recording.Format,
		BufferSize:        c.Recording.BufferSize,
		Device:            c.Recording.Device,
		ChannelBufferSize: c.Recording.ChannelBufferSize,
	}
}

func (c *Config) ToEngineOptions() engine.Options {
	return engine.Options{
		Continuous:     c.Engine.Continuous,
		InterimResults: c.Engine.InterimResults,
		Language:       c.Engine.Language,
	}
}

func (c *Config) ToDeepgramConfig() engine.DeepgramConfig {
	return engine.DeepgramConfig{
		URL:        c.Engine.Endpoint,
		APIKey:     c.ResolveAPIKey(c.Engine.Provider),
		Model:      c.Engine.Model,
		Keywords:   c.Keywords,
		SampleRate: c.Recording.SampleRate,
		Channels:   c.Recording.Channels,
	}
}

func (c *Config) ToSessionConfig() session.Config {
	return session.Config{
		Engine:              c.ToEngineOptions(),
		RestartDelay:        c.Session.RestartDelay,
		ToggleStopCooldown:  c.Session.ToggleStopCooldown,
		ToggleStartCooldown: c.Session.ToggleStartCooldown,
		NoticeDuration:      c.Notifications.Duration,
		CopiedDuration:      c.Session.CopiedDuration,
		SeenLimit:           c.Session.SeenLimit,
		Target:              c.Translation.Target,
		TranslationDebounce: c.Translation.Debounce,
		TranslationTimeout:  c.Translation.Timeout,
	}
}

func (c *Config) ToTranslatorConfig() translation.Config {
	return translation.Config{
		Provider: c.Translation.Provider,
		APIKey:   c.ResolveAPIKey(c.Translation.Provider),
		Model:    c.Translation.Model,
		Source:   c.Engine.Language,
	}
}

// ResolveAPIKey returns the key for a provider from [providers.<name>] or,
// failing that, the provider's environment variable.
func (c *Config) ResolveAPIKey(providerName string) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[providerName]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}
	if envVar := EnvVarForProvider(providerName); envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}
