package config

import "time"

type Config struct {
	Engine        EngineConfig              `toml:"engine"`
	Recording     RecordingConfig           `toml:"recording"`
	Session       SessionConfig             `toml:"session"`
	Translation   TranslationConfig         `toml:"translation"`
	Notifications NotificationsConfig       `toml:"notifications"`
	Clipboard     ClipboardConfig           `toml:"clipboard"`
	Metrics       MetricsConfig             `toml:"metrics"`
	Providers     map[string]ProviderConfig `toml:"providers"`
	Keywords      []string                  `toml:"keywords"`
}

// ProviderConfig holds API key for a provider
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

// EngineConfig selects the speech engine and the options of each run
type EngineConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	Language       string `toml:"language"` // BCP 47 tag, e.g. "en-US"
	Continuous     bool   `toml:"continuous"`
	InterimResults bool   `toml:"interim_results"`
	Endpoint       string `toml:"endpoint"` // websocket URL override
}

type RecordingConfig struct {
	SampleRate        int    `toml:"sample_rate"`
	Channels          int    `toml:"channels"`
	Format            string `toml:"format"`
	BufferSize        int    `toml:"buffer_size"`
	Device            string `toml:"device"`
	ChannelBufferSize int    `toml:"channel_buffer_size"`
}

type SessionConfig struct {
	RestartDelay        time.Duration `toml:"restart_delay"`
	ToggleStopCooldown  time.Duration `toml:"toggle_stop_cooldown"`
	ToggleStartCooldown time.Duration `toml:"toggle_start_cooldown"`
	CopiedDuration      time.Duration `toml:"copied_duration"`
	SeenLimit           int           `toml:"seen_limit"`
}

type TranslationConfig struct {
	Target   string        `toml:"target"` // language code, "" or "none" disables
	Provider string        `toml:"provider"`
	Model    string        `toml:"model"`
	Debounce time.Duration `toml:"debounce"`
	Timeout  time.Duration `toml:"timeout"`
}

type NotificationsConfig struct {
	Type     string        `toml:"type"` // "desktop", "log", "none"
	Duration time.Duration `toml:"duration"`
}

type ClipboardConfig struct {
	Timeout time.Duration `toml:"timeout"`
}

type MetricsConfig struct {
	Listen string `toml:"listen"` // empty disables the endpoint
}
