package config

import "time"

const DefaultMetricsListen = "127.0.0.1:9477"

// DefaultConfig returns the configuration used when no file exists yet.
// Load decodes on top of it, so omitted keys keep these values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Provider:       "deepgram",
			Model:          "nova-3",
			Language:       "en-US",
			Continuous:     true,
			InterimResults: true,
		},
		Recording: RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16le",
			BufferSize:        3200,
			Device:            "",
			ChannelBufferSize: 50,
		},
		Session: SessionConfig{
			RestartDelay:        300 * time.Millisecond,
			ToggleStopCooldown:  300 * time.Millisecond,
			ToggleStartCooldown: 500 * time.Millisecond,
			CopiedDuration:      2 * time.Second,
			SeenLimit:           4096,
		},
		Translation: TranslationConfig{
			Target:   "",
			Provider: "none",
			Debounce: 500 * time.Millisecond,
			Timeout:  10 * time.Second,
		},
		Notifications: NotificationsConfig{
			Type:     "desktop",
			Duration: 3 * time.Second,
		},
		Clipboard: ClipboardConfig{
			Timeout: 3 * time.Second,
		},
		Metrics: MetricsConfig{
			Listen: DefaultMetricsListen,
		},
		Providers: make(map[string]ProviderConfig),
		Keywords:  nil,
	}
}
