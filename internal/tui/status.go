package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/leonardotrapani/voicelink/internal/config"
	"github.com/leonardotrapani/voicelink/internal/language"
	"github.com/muesli/termenv"
)

// NewRenderer returns a renderer for w. Plain forces the ASCII profile, for
// pipes and tests.
func NewRenderer(w io.Writer, plain bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if plain {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// ParseStatus splits a "STATUS key=value ..." line. Quoted values are
// unquoted.
func ParseStatus(line string) (map[string]string, error) {
	line = strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(line, "STATUS")
	if !ok {
		return nil, fmt.Errorf("not a status line: %q", line)
	}

	fields := make(map[string]string)
	rest = strings.TrimSpace(rest)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("malformed status field: %q", rest)
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			q, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return nil, fmt.Errorf("malformed %s value: %w", key, err)
			}
			value, _ = strconv.Unquote(q)
			rest = rest[len(q):]
		} else if sp := strings.IndexByte(rest, ' '); sp >= 0 {
			value, rest = rest[:sp], rest[sp:]
		} else {
			value, rest = rest, ""
		}
		fields[key] = value
		rest = strings.TrimSpace(rest)
	}
	return fields, nil
}

// RenderStatus draws parsed status fields as a small box.
func RenderStatus(r *lipgloss.Renderer, fields map[string]string) string {
	st := newStyles(r)
	label := st.label.Width(11)

	state := r.NewStyle().Bold(true).Foreground(stateColor(fields["state"])).Render(fields["state"])
	if fields["restarting"] == "true" {
		state += st.muted.Render(" (restarting)")
	}

	target := fields["target"]
	if target != "" && target != "none" {
		target = fmt.Sprintf("%s (%s)", language.FromCode(target).Name, target)
	}

	lines := []string{
		label.Render("State") + state,
		label.Render("Latency") + fields["latency"],
		label.Render("Translate") + target,
		label.Render("Segments") + fields["segments"] + st.muted.Render(fmt.Sprintf("  restarts %s", fields["restarts"])),
	}
	if fields["copied"] == "true" {
		lines = append(lines, label.Render("Clipboard")+st.success.Render("copied"))
	}
	if fields["reduced"] == "true" {
		lines = append(lines, label.Render("Engine")+st.warning.Render("reduced capabilities"))
	}
	if notice := fields["notice"]; notice != "" {
		line := label.Render("Notice") + st.errText.Render(notice)
		if left := fields["notice_left"]; left != "" {
			line += st.muted.Render(" (" + left + ")")
		}
		lines = append(lines, line)
	}
	return st.box.Render(strings.Join(lines, "\n"))
}

// Summary describes cfg for the save confirmation.
func Summary(r *lipgloss.Renderer, cfg *config.Config) string {
	st := newStyles(r)

	var b strings.Builder
	b.WriteString(st.header.Render("Configuration Summary"))
	b.WriteString("\n\n")
	row := func(name, value string) {
		fmt.Fprintf(&b, "  %s %s\n", st.label.Render(name+":"), value)
	}

	row("Engine", fmt.Sprintf("%s %s", cfg.Engine.Provider, cfg.Engine.Model))
	row("Language", orAuto(cfg.Engine.Language))
	mode := "single utterance"
	if cfg.Engine.Continuous {
		mode = "continuous"
	}
	if cfg.Engine.InterimResults {
		mode += ", interim results"
	}
	row("Mode", mode)

	if cfg.Translation.Target != "" {
		row("Translation", fmt.Sprintf("%s via %s", targetName(cfg.Translation.Target), cfg.Translation.Provider))
	} else {
		row("Translation", "off")
	}

	providers := getConfiguredProviders(cfg)
	if len(providers) == 0 {
		row("Providers", "none (environment variables)")
	} else {
		row("Providers", strings.Join(providers, ", "))
	}
	if len(cfg.Keywords) > 0 {
		row("Keywords", strings.Join(cfg.Keywords, ", "))
	}
	row("Notifications", fmt.Sprintf("%s, notices for %s", cfg.Notifications.Type, cfg.Notifications.Duration))
	return b.String()
}
