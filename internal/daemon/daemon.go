package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/leonardotrapani/voicelink/internal/bus"
	"github.com/leonardotrapani/voicelink/internal/clipboard"
	"github.com/leonardotrapani/voicelink/internal/config"
	"github.com/leonardotrapani/voicelink/internal/engine"
	"github.com/leonardotrapani/voicelink/internal/language"
	"github.com/leonardotrapani/voicelink/internal/metrics"
	"github.com/leonardotrapani/voicelink/internal/notify"
	"github.com/leonardotrapani/voicelink/internal/recording"
	"github.com/leonardotrapani/voicelink/internal/session"
	"github.com/leonardotrapani/voicelink/internal/translation"
)

const connDeadline = 15 * time.Second

// Options overrides the components New would otherwise build from the
// configuration.
type Options struct {
	Engine     engine.Engine
	Translator translation.Translator
	Notifier   notify.Notifier
	Clipboard  clipboard.Writer
	Metrics    *metrics.Metrics
	Manager    *config.Manager // enables hot reload
	Version    string
}

// TranscriptReply is the payload of a transcript request.
type TranscriptReply struct {
	Transcript  string `json:"transcript"`
	Interim     string `json:"interim,omitempty"`
	Translation string `json:"translation,omitempty"`
	Target      string `json:"target,omitempty"`
}

type Daemon struct {
	mu  sync.RWMutex
	cfg *config.Config

	notifier *notify.Switch
	metrics  *metrics.Metrics
	manager  *config.Manager
	ctrl     *session.Controller
	version  string

	ctx    context.Context
	cancel context.CancelFunc
}

func New(cfg *config.Config, opts Options) (*Daemon, error) {
	if opts.Notifier == nil {
		opts.Notifier = notify.New(cfg.Notifications.Type)
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.New(cfg.Clipboard.Timeout)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Engine == nil {
		recCfg := cfg.ToRecordingConfig()
		opts.Engine = engine.NewDeepgram(cfg.ToDeepgramConfig(), func() engine.AudioSource {
			return recording.NewRecorder(recCfg)
		})
	}
	if opts.Translator == nil {
		tr, err := translation.NewTranslator(cfg.ToTranslatorConfig())
		if err != nil {
			return nil, fmt.Errorf("translator: %w", err)
		}
		if tr != nil {
			opts.Translator = tr
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{
		cfg:      cfg,
		notifier: notify.NewSwitch(opts.Notifier),
		metrics:  opts.Metrics,
		manager:  opts.Manager,
		version:  opts.Version,
		ctx:      ctx,
		cancel:   cancel,
	}
	d.ctrl = session.New(opts.Engine, cfg.ToSessionConfig(), session.Deps{
		Translator: opts.Translator,
		Notifier:   d.notifier,
		Clipboard:  opts.Clipboard,
		Metrics:    opts.Metrics,
	})
	if d.manager != nil {
		d.manager.OnChange(d.applyConfig)
	}
	return d, nil
}

// Controller exposes the session, for tests and embedding.
func (d *Daemon) Controller() *session.Controller {
	return d.ctrl
}

// Stop asks Run to return.
func (d *Daemon) Stop() {
	d.cancel()
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal %v, shutting down gracefully", sig)
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	go d.ctrl.Run(d.ctx)
	defer func() {
		d.cancel()
		<-d.ctrl.Done()
	}()

	if addr := d.config().Metrics.Listen; addr != "" {
		srv := metrics.NewServer(addr, d.metrics)
		if err := srv.Start(); err != nil {
			log.Printf("Metrics endpoint disabled: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
		}
	}

	if d.manager != nil {
		if err := d.manager.StartWatching(d.ctx); err != nil {
			log.Printf("Config hot reload disabled: %v", err)
		} else {
			defer d.manager.Stop()
		}
	}

	log.Printf("Daemon started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("Shutdown requested")
				return nil
			}
			log.Printf("Accept error: %v", err)
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()
	c.SetDeadline(time.Now().Add(connDeadline))

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("Client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	cmd, arg, err := bus.ParseRequest(line)
	if err != nil {
		fmt.Fprint(c, "ERR empty\n")
		return
	}

	reply, err := d.dispatch(cmd, arg)
	if err != nil {
		log.Printf("Command %c failed: %v", cmd, err)
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}
	fmt.Fprintf(c, "%s\n", reply)
}

func (d *Daemon) dispatch(cmd byte, arg string) (string, error) {
	switch cmd {
	case bus.CmdToggle:
		action, err := d.ctrl.Toggle()
		if err != nil {
			return "", err
		}
		return "OK " + string(action), nil

	case bus.CmdStatus:
		s, err := d.ctrl.Status()
		if err != nil {
			return "", err
		}
		return s.String(), nil

	case bus.CmdCopy:
		ctx, cancel := context.WithTimeout(d.ctx, connDeadline)
		defer cancel()
		if err := d.ctrl.Copy(ctx); err != nil {
			return "", err
		}
		return "OK copied", nil

	case bus.CmdLanguage:
		if err := d.ctrl.SetTargetLanguage(arg); err != nil {
			return "", err
		}
		s, err := d.ctrl.Status()
		if err != nil {
			return "", err
		}
		return "OK target=" + language.Label(s.Target), nil

	case bus.CmdTranscript:
		snap, err := d.ctrl.Snapshot()
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(TranscriptReply(snap))
		if err != nil {
			return "", err
		}
		return "OK " + string(data), nil

	case bus.CmdDismiss:
		if err := d.ctrl.Dismiss(); err != nil {
			return "", err
		}
		return "OK dismissed", nil

	case bus.CmdVersion:
		return fmt.Sprintf("STATUS proto=%s version=%s", bus.ProtoVer, d.version), nil

	case bus.CmdQuit:
		d.cancel()
		return "OK quitting", nil

	default:
		log.Printf("Unknown command: %c", cmd)
		return "", fmt.Errorf("unknown=%q", cmd)
	}
}

// applyConfig pushes reloadable settings into the running session.
func (d *Daemon) applyConfig(next *config.Config) {
	d.mu.Lock()
	prev := d.cfg
	d.cfg = next
	d.mu.Unlock()

	if next.Translation.Target != prev.Translation.Target {
		err := d.ctrl.SetTargetLanguage(next.Translation.Target)
		switch {
		case errors.Is(err, session.ErrClosed):
		case err != nil:
			log.Printf("Config reload: target language not applied: %v", err)
		default:
			log.Printf("Config reload: target language set to %s", language.Label(next.Translation.Target))
		}
	}
	if next.Notifications.Type != prev.Notifications.Type {
		d.notifier.Set(notify.New(next.Notifications.Type))
		log.Printf("Config reload: notifications set to %s", next.Notifications.Type)
	}
	if opts := next.ToEngineOptions(); opts != prev.ToEngineOptions() {
		if err := d.ctrl.SetEngineOptions(opts); err == nil {
			log.Printf("Config reload: engine options apply from the next engine start: %+v", opts)
		}
	}
	if next.Engine.Provider != prev.Engine.Provider || next.Engine.Model != prev.Engine.Model ||
		next.Engine.Endpoint != prev.Engine.Endpoint || next.Translation.Provider != prev.Translation.Provider {
		log.Printf("Config reload: engine provider, model and translation provider changes apply after a daemon restart")
	}
}
