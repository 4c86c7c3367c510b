package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

func render(c *Config) string {
	var b strings.Builder
	p := func(format string, args ...any) { fmt.Fprintf(&b, format, args...) }

	b.WriteString(`# Voicelink Configuration
# Edit values as needed - the running daemon picks up the translation
# target and notification settings without a restart.

`)
	if len(c.Keywords) > 0 {
		quoted := make([]string, len(c.Keywords))
		for i, k := range c.Keywords {
			quoted[i] = quote(k)
		}
		p("# Terms the engine should favour\n")
		p("keywords = [%s]\n\n", strings.Join(quoted, ", "))
	}

	p("# Speech Engine\n")
	p("[engine]\n")
	p("  provider = %s         # Speech engine (\"deepgram\")\n", quote(c.Engine.Provider))
	p("  model = %s              # Engine model\n", quote(c.Engine.Model))
	p("  language = %s           # Recognition language, BCP 47 tag (\"en-US\", \"es-ES\", ...)\n", quote(c.Engine.Language))
	p("  continuous = %t             # Keep the engine listening across utterances\n", c.Engine.Continuous)
	p("  interim_results = %t        # Stream provisional text while speaking\n", c.Engine.InterimResults)
	p("  endpoint = %s                 # Websocket URL override (empty = provider default)\n", quote(c.Engine.Endpoint))
	p("\n")

	p("# Audio Recording\n")
	p("[recording]\n")
	p("  sample_rate = %d          # Audio sample rate in Hz\n", c.Recording.SampleRate)
	p("  channels = %d                 # 1 = mono, 2 = stereo\n", c.Recording.Channels)
	p("  format = %s             # pw-record sample format\n", quote(c.Recording.Format))
	p("  buffer_size = %d           # Bytes per audio frame\n", c.Recording.BufferSize)
	p("  device = %s                   # PipeWire target (empty = default microphone)\n", quote(c.Recording.Device))
	p("  channel_buffer_size = %d     # Frames buffered before dropping\n", c.Recording.ChannelBufferSize)
	p("\n")

	p("# Session Timing\n")
	p("[session]\n")
	p("  restart_delay = %s         # Pause before restarting an ended engine run\n", duration(c.Session.RestartDelay))
	p("  toggle_stop_cooldown = %s  # Ignore toggles this long after stopping\n", duration(c.Session.ToggleStopCooldown))
	p("  toggle_start_cooldown = %s # Ignore toggles this long after starting\n", duration(c.Session.ToggleStartCooldown))
	p("  copied_duration = %s        # How long the copied flag stays set\n", duration(c.Session.CopiedDuration))
	p("  seen_limit = %d              # Finals remembered for duplicate suppression\n", c.Session.SeenLimit)
	p("\n")

	p("# Live Translation\n")
	p("[translation]\n")
	p("  target = %s                   # Target language code (empty = off)\n", quote(c.Translation.Target))
	p("  provider = %s             # \"openai\", \"groq\" or \"none\"\n", quote(c.Translation.Provider))
	p("  model = %s                    # Model override (empty = provider default)\n", quote(c.Translation.Model))
	p("  debounce = %s              # Quiet time before a request is sent\n", duration(c.Translation.Debounce))
	p("  timeout = %s                # Per-request timeout\n", duration(c.Translation.Timeout))
	p("\n")

	p("# Notifications\n")
	p("[notifications]\n")
	p("  type = %s             # \"desktop\", \"log\" or \"none\"\n", quote(c.Notifications.Type))
	p("  duration = %s                # How long an error notice stays visible\n", duration(c.Notifications.Duration))
	p("\n")

	p("[clipboard]\n")
	p("  timeout = %s                 # Timeout for clipboard writes\n", duration(c.Clipboard.Timeout))
	p("\n")

	p("# Prometheus endpoint (empty = disabled)\n")
	p("[metrics]\n")
	p("  listen = %s\n", quote(c.Metrics.Listen))
	p("\n")

	renderProviders(&b, c)
	return b.String()
}

func renderProviders(b *strings.Builder, c *Config) {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("# Provider API keys (environment variables are used when empty)\n")
	for _, name := range names {
		fmt.Fprintf(b, "[providers.%s]\n", name)
		fmt.Fprintf(b, "  api_key = %s\n\n", quote(c.Providers[name].APIKey))
	}
}

func quote(s string) string {
	return strconv.Quote(s)
}

func duration(d time.Duration) string {
	return strconv.Quote(d.String())
}
