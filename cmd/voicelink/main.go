package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/leonardotrapani/voicelink/internal/bus"
	"github.com/leonardotrapani/voicelink/internal/clipboard"
	"github.com/leonardotrapani/voicelink/internal/config"
	"github.com/leonardotrapani/voicelink/internal/daemon"
	"github.com/leonardotrapani/voicelink/internal/deps"
	"github.com/leonardotrapani/voicelink/internal/language"
	"github.com/leonardotrapani/voicelink/internal/recording"
	"github.com/leonardotrapani/voicelink/internal/tui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "voicelink",
	Short:         "Continuous speech transcription with live translation",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		toggleCmd(),
		statusCmd(),
		transcriptCmd(),
		copyCmd(),
		translateCmd(),
		dismissCmd(),
		languagesCmd(),
		configureCmd(),
		doctorCmd(),
		versionCmd(),
		stopCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			d, err := daemon.New(mgr.GetConfig(), daemon.Options{Manager: mgr, Version: version})
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run()
		},
	}
}

// simpleCmd sends one command and prints the response line.
func simpleCmd(use, short string, cmdByte byte, what string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.Request(cmdByte)
			if err != nil {
				return fmt.Errorf("failed to %s: %w", what, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func toggleCmd() *cobra.Command {
	return simpleCmd("toggle", "Start or stop listening", bus.CmdToggle, "toggle listening")
}

func copyCmd() *cobra.Command {
	return simpleCmd("copy", "Copy the transcript to the clipboard", bus.CmdCopy, "copy transcript")
}

func dismissCmd() *cobra.Command {
	return simpleCmd("dismiss", "Dismiss the current error notice", bus.CmdDismiss, "dismiss notice")
}

func stopCmd() *cobra.Command {
	return simpleCmd("stop", "Stop the daemon", bus.CmdQuit, "stop daemon")
}

func statusCmd() *cobra.Command {
	var raw, plain bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.Request(bus.CmdStatus)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			return printStatus(cmd.OutOrStdout(), resp, raw, plain || !isTerminal(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the status line as sent by the daemon")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")
	return cmd
}

func printStatus(w io.Writer, resp string, raw, plain bool) error {
	if raw {
		fmt.Fprintln(w, resp)
		return nil
	}
	fields, err := tui.ParseStatus(resp)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, tui.RenderStatus(tui.NewRenderer(w, plain), fields))
	return nil
}

func transcriptCmd() *cobra.Command {
	var asJSON, translation bool

	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Print the current transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.Request(bus.CmdTranscript)
			if err != nil {
				return fmt.Errorf("failed to get transcript: %w", err)
			}
			reply, err := decodeTranscript(resp)
			if err != nil {
				return err
			}
			return printTranscript(cmd.OutOrStdout(), reply, asJSON, translation)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full reply as JSON")
	cmd.Flags().BoolVar(&translation, "translation", false, "print the translation instead of the transcript")
	return cmd
}

func decodeTranscript(resp string) (daemon.TranscriptReply, error) {
	var reply daemon.TranscriptReply
	payload, ok := strings.CutPrefix(resp, "OK ")
	if !ok {
		return reply, fmt.Errorf("unexpected response: %q", resp)
	}
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		return reply, fmt.Errorf("decode transcript: %w", err)
	}
	return reply, nil
}

func printTranscript(w io.Writer, reply daemon.TranscriptReply, asJSON, translation bool) error {
	switch {
	case asJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reply)
	case translation:
		if reply.Target == "" {
			return errors.New("translation is off (voicelink translate <code>)")
		}
		fmt.Fprintln(w, reply.Translation)
	default:
		fmt.Fprintln(w, strings.TrimSpace(reply.Transcript+reply.Interim))
	}
	return nil
}

func translateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <code|none>",
		Short: "Set the live translation target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := language.ParseTarget(args[0]); !ok {
				return fmt.Errorf("unknown language %q (see voicelink languages)", args[0])
			}
			resp, err := bus.Request(bus.CmdLanguage, args[0])
			if err != nil {
				return fmt.Errorf("failed to set translation target: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List translation targets",
		Run: func(cmd *cobra.Command, args []string) {
			printLanguages(cmd.OutOrStdout())
		},
	}
}

func printLanguages(w io.Writer) {
	fmt.Fprintf(w, "  %-4s %s\n", "none", "translation off")
	for _, lang := range language.List() {
		fmt.Fprintf(w, "  %-4s %s (%s)\n", lang.Code, lang.Name, lang.NativeName)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and daemon versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "voicelink %s (proto %s)\n", version, bus.ProtoVer)
			resp, err := bus.Request(bus.CmdVersion)
			if errors.Is(err, bus.ErrNotRunning) {
				fmt.Fprintln(out, "daemon: not running")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			fmt.Fprintf(out, "daemon: %s\n", resp)
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration for voicelink.
This will guide you through setting up:
- Provider API keys (Deepgram, OpenAI, Groq)
- Speech engine language and mode
- Live translation target
- Notifications and session timing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrConfigNotFound) {
		cfg = config.DefaultConfig()
	} else if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}

	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Println()

	showNextSteps()
	return nil
}

func showNextSteps() {
	serviceRunning := false
	if _, err := exec.Command("systemctl", "--user", "is-active", "--quiet", "voicelink.service").CombinedOutput(); err == nil {
		serviceRunning = true
	}

	fmt.Println("Next Steps:")
	if !serviceRunning {
		fmt.Println("1. Start the daemon: voicelink serve (or systemctl --user start voicelink.service)")
	} else {
		fmt.Println("1. Translation target and notifications are applied live; restart the service for engine changes")
	}
	fmt.Println("2. Start listening: voicelink toggle")
	fmt.Println()

	configPath, _ := config.GetConfigPath()
	fmt.Printf("Config file location: %s\n", configPath)
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runDoctor(ctx context.Context, w io.Writer) error {
	reports := deps.CheckAll()
	for _, r := range reports {
		mark := "[x]"
		detail := r.Path
		if !r.Installed {
			mark = "[ ]"
			detail = "not found"
		}
		if r.Version != "" {
			detail += " (" + r.Version + ")"
		}
		fmt.Fprintf(w, "%s %-12s %-30s %s\n", mark, r.Name, r.Purpose, detail)
	}

	if err := recording.CheckPipeWireAvailable(ctx); err != nil {
		fmt.Fprintf(w, "[ ] pipewire     %v\n", err)
	} else {
		fmt.Fprintln(w, "[x] pipewire     running")
	}
	if err := clipboard.CheckAvailable(); err != nil {
		fmt.Fprintf(w, "[ ] clipboard    %v\n", err)
	} else {
		fmt.Fprintln(w, "[x] clipboard    available")
	}

	cfg, err := config.Load()
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		fmt.Fprintln(w, "[ ] config       not found (run voicelink configure)")
	case err != nil:
		fmt.Fprintf(w, "[ ] config       %v\n", err)
	default:
		if verr := cfg.Validate(); verr != nil {
			fmt.Fprintf(w, "[ ] config       %v\n", verr)
		} else {
			fmt.Fprintln(w, "[x] config       valid")
		}
	}

	if missing := deps.Missing(reports); len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
